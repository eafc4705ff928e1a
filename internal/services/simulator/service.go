package simulator

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/fritkotgp/raceapi/internal/dependencies/random"
	"github.com/fritkotgp/raceapi/internal/model"
)

// Ranges of the drawn lap figures
const (
	MinSpeedKmh   = 250.0
	MaxSpeedKmh   = 300.0
	MinPitStopSec = 20.0
	MaxPitStopSec = 25.0
)

// Service produces lap outcomes for a track
type Service struct {
	random random.Random
}

// New creates a new simulator Service
func New(random random.Random) *Service {
	return &Service{
		random: random,
	}
}

// Simulate draws a speed and a pit stop and derives the lap time for a track of lengthKm.
// The returned LapTimeMs is computed from the rounded speed and pit stop.
func (s *Service) Simulate(lengthKm float64) (model.LapOutcome, error) {
	if !(lengthKm > 0) || math.IsInf(lengthKm, 0) {
		return model.LapOutcome{}, model.ErrInvalidTrackLength
	}

	speed := round2(random.Uniform(s.random, MinSpeedKmh, MaxSpeedKmh))
	pitStop := round2(random.Uniform(s.random, MinPitStopSec, MaxPitStopSec))

	travel := lengthKm / speed * 3600
	total := travel + pitStop

	return model.LapOutcome{
		SpeedKmh:      speed,
		PitStopSec:    pitStop,
		TravelTimeSec: round2(travel),
		LapTimeMs:     int64(math.Round(total * 1000)),
	}, nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
