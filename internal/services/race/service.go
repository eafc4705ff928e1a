package race

import (
	"context"
	"log/slog"

	"github.com/fritkotgp/raceapi/internal/dependencies/clock"
	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/services/catalog"
	"github.com/fritkotgp/raceapi/internal/services/simulator"
	"github.com/fritkotgp/raceapi/internal/storage"
)

// Status reports what a simulate call did
type Status string

const (
	StatusSimulated Status = "simulated" // not saved
	StatusCreated   Status = Status(model.OutcomeCreated)
	StatusUpdated   Status = Status(model.OutcomeUpdated)
	StatusIgnored   Status = Status(model.OutcomeIgnored)
)

// SimulateRequest selects the team and track of a run
type SimulateRequest struct {
	TeamID  string
	TrackID string
	Save    bool
}

// SimulateResult is the outcome of a simulate call.
// Lap is always the run just simulated; Best is the stored record after a save.
type SimulateResult struct {
	Status   Status
	ResultID model.ResultID
	Lap      model.LapOutcome
	Team     *model.Team
	Track    *model.Track
	Best     *model.RaceResult
}

// Service runs laps and manages each caller's best results
type Service struct {
	storage   storage.Storage
	catalog   *catalog.Service
	simulator *simulator.Service
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a new race Service
func New(
	storage storage.Storage,
	catalog *catalog.Service,
	simulator *simulator.Service,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:   storage,
		catalog:   catalog,
		simulator: simulator,
		clock:     clock,
		logger:    logger,
	}
}

// Simulate runs a lap for the caller and, when requested, keeps it if it is their best
func (s *Service) Simulate(ctx context.Context, caller model.Identity, req SimulateRequest) (*SimulateResult, error) {
	team, err := s.catalog.GetTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	track, err := s.catalog.GetTrack(ctx, req.TrackID)
	if err != nil {
		return nil, err
	}

	lap, err := s.simulator.Simulate(track.LengthKm)
	if err != nil {
		return nil, err
	}

	if !req.Save {
		return &SimulateResult{
			Status: StatusSimulated,
			Lap:    lap,
			Team:   team,
			Track:  track,
		}, nil
	}

	candidate := &model.RaceResult{
		ID:            model.ResultID(model.NewID()),
		UserID:        caller.ID,
		Username:      caller.Username,
		TeamID:        team.ID,
		TeamName:      team.Name,
		TrackID:       track.ID,
		City:          track.City,
		SpeedKmh:      lap.SpeedKmh,
		PitStopSec:    lap.PitStopSec,
		TravelTimeSec: lap.TravelTimeSec,
		LapTimeMs:     lap.LapTimeMs,
		UpdatedAt:     s.clock.Now(),
	}

	outcome, stored, err := s.storage.UpsertBestResult(ctx, candidate)
	if err != nil {
		s.logger.Error("failed to save race result",
			slog.String("user_id", string(caller.ID)),
			slog.String("team_id", string(team.ID)),
			slog.String("track_id", string(track.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("race result saved",
		slog.String("outcome", string(outcome)),
		slog.String("result_id", string(stored.ID)),
		slog.String("user_id", string(caller.ID)),
		slog.Int64("lap_time_ms", lap.LapTimeMs),
		slog.Int64("best_lap_time_ms", stored.LapTimeMs),
	)

	return &SimulateResult{
		Status:   Status(outcome),
		ResultID: stored.ID,
		Lap:      lap,
		Team:     team,
		Track:    track,
		Best:     stored,
	}, nil
}

// ListResults returns a page of the caller's results
func (s *Service) ListResults(ctx context.Context, caller model.Identity, query model.ResultQuery) ([]*model.RaceResult, error) {
	results, err := s.storage.ListResultsForUser(ctx, caller.ID, query)
	if err != nil {
		s.logger.Error("failed to list race results",
			slog.String("user_id", string(caller.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return results, nil
}

// GetResult returns one of the caller's results
func (s *Service) GetResult(ctx context.Context, caller model.Identity, rawID string) (*model.RaceResult, error) {
	return s.ownedResult(ctx, caller, rawID)
}

// DeleteResult removes one of the caller's results
func (s *Service) DeleteResult(ctx context.Context, caller model.Identity, rawID string) (model.ResultID, error) {
	result, err := s.ownedResult(ctx, caller, rawID)
	if err != nil {
		return "", err
	}

	if err := s.storage.DeleteResult(ctx, result.ID); err != nil {
		return "", err
	}

	s.logger.Info("race result deleted",
		slog.String("result_id", string(result.ID)),
		slog.String("user_id", string(caller.ID)),
	)
	return result.ID, nil
}

func (s *Service) ownedResult(ctx context.Context, caller model.Identity, rawID string) (*model.RaceResult, error) {
	id, err := model.NormalizeID(rawID)
	if err != nil {
		return nil, err
	}

	result, err := s.storage.GetResult(ctx, model.ResultID(id))
	if err != nil {
		return nil, err
	}
	if result.UserID != caller.ID {
		return nil, model.ErrNotOwner
	}
	return result, nil
}
