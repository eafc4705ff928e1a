package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritkotgp/raceapi/internal/api"
	"github.com/fritkotgp/raceapi/internal/factory"
	"github.com/fritkotgp/raceapi/internal/services/simulator"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "fritkot-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/fritkot")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "FRITKOT_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server backed by a SQLite file
type testServer struct {
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{
		Logger:      logger,
		StorageType: factory.StorageTypeSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "e2e.db"),
		SeedCatalog: true,
	})
	require.NoError(t, err)

	server := api.NewServer(api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		CatalogService: app.CatalogService,
		RaceService:    app.RaceService,
	}), api.DefaultServerConfig(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Serve(ctx, listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/health")

	return &testServer{
		addr: serverURL,
		shutdown: func() {
			cancel()
			<-done
			_ = app.Storage.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type catalogEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type lapResponse struct {
	SpeedKmh   float64 `json:"speedKmh"`
	PitStopSec float64 `json:"pitStopSec"`
	LapTimeMs  int64   `json:"lapTimeMs"`
}

type resultResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	LapTimeMs int64  `json:"lapTimeMs"`
}

type simulateResponse struct {
	Status string          `json:"status"`
	ID     string          `json:"id"`
	Result lapResponse     `json:"result"`
	Best   *resultResponse `json:"best"`
}

type resultsPage struct {
	Results []resultResponse `json:"results"`
	SortBy  string           `json:"sortBy"`
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

func findByName(t *testing.T, entries []catalogEntry, name string) string {
	t.Helper()
	for _, e := range entries {
		if e.Name == name {
			return e.ID
		}
	}
	t.Fatalf("%s not in catalog", name)
	return ""
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := decode[map[string]string](t, output)
	assert.Equal(t, "ok", resp["status"])
}

func TestCLI_BestLapFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("auth", "register", "--user", "Jan", "--email", "jan@example.be", "--pass", "frietjes")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("auth", "login", "--email", "jan@example.be", "--pass", "frietjes")
	require.NoError(t, err, "output: %s", output)
	login := decode[loginResponse](t, output)
	assert.Equal(t, "Jan", login.User.Username)

	output, err = cli.run("teams")
	require.NoError(t, err, "output: %s", output)
	team := findByName(t, decode[[]catalogEntry](t, output), "Frietkot Racing")

	output, err = cli.run("tracks")
	require.NoError(t, err, "output: %s", output)
	track := findByName(t, decode[[]catalogEntry](t, output), "Spa-Francorchamps")

	// First saved lap creates the record
	output, err = cli.run("race", "simulate", "--team", team, "--track", track, "--save")
	require.NoError(t, err, "output: %s", output)
	first := decode[simulateResponse](t, output)
	assert.Equal(t, "created", first.Status)
	assert.GreaterOrEqual(t, first.Result.SpeedKmh, simulator.MinSpeedKmh)
	assert.LessOrEqual(t, first.Result.SpeedKmh, simulator.MaxSpeedKmh)
	assert.GreaterOrEqual(t, first.Result.PitStopSec, simulator.MinPitStopSec)
	assert.LessOrEqual(t, first.Result.PitStopSec, simulator.MaxPitStopSec)

	// Later laps keep the id and never make the stored lap slower
	best := first.Best.LapTimeMs
	for range 5 {
		output, err = cli.run("race", "simulate", "--team", team, "--track", track, "--save")
		require.NoError(t, err, "output: %s", output)
		run := decode[simulateResponse](t, output)
		assert.Equal(t, first.ID, run.ID)
		assert.Contains(t, []string{"updated", "ignored"}, run.Status)
		assert.Equal(t, min(best, run.Result.LapTimeMs), run.Best.LapTimeMs)
		best = run.Best.LapTimeMs
	}

	output, err = cli.run("race", "list", "--sort", "fastest")
	require.NoError(t, err, "output: %s", output)
	page := decode[resultsPage](t, output)
	assert.Equal(t, "fastest", page.SortBy)
	require.Len(t, page.Results, 1)
	assert.Equal(t, best, page.Results[0].LapTimeMs)
	assert.Equal(t, login.User.ID, page.Results[0].UserID)

	output, err = cli.run("race", "delete", first.ID)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("race", "list")
	require.NoError(t, err, "output: %s", output)
	assert.Empty(t, decode[resultsPage](t, output).Results)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// No token
	output, err := cli.run("race", "list")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	// Bad token
	output, err = cli.runWithToken("not-a-token", "auth", "me")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "invalid token")

	// Unknown result
	_, err = cli.run("auth", "register", "--user", "Mieke", "--email", "mieke@example.be", "--pass", "x")
	require.NoError(t, err)
	_, err = cli.run("auth", "login", "--email", "mieke@example.be", "--pass", "x")
	require.NoError(t, err)
	output, err = cli.run("race", "get", "00000000-0000-4000-8000-000000000000")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")
}
