package main

import "github.com/fritkotgp/raceapi/internal/cli"

func main() {
	cli.Execute()
}
