package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage"
)

// Service serves the team and track reference data
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new catalog Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Seed stores the default teams and tracks that are missing, returning how many were added
func (s *Service) Seed(ctx context.Context) (int, error) {
	added := 0

	for _, t := range DefaultTeams() {
		_, err := s.storage.GetTeam(ctx, t.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrTeamNotFound) {
			return added, err
		}
		if err := s.storage.SaveTeam(ctx, &t); err != nil {
			return added, err
		}
		added++
	}

	for _, t := range DefaultTracks() {
		_, err := s.storage.GetTrack(ctx, t.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrTrackNotFound) {
			return added, err
		}
		if err := s.storage.SaveTrack(ctx, &t); err != nil {
			return added, err
		}
		added++
	}

	if added > 0 {
		s.logger.Info("catalog seeded", "added", added)
	}
	return added, nil
}

func (s *Service) ListTeams(ctx context.Context) ([]*model.Team, error) {
	return s.storage.ListTeams(ctx)
}

func (s *Service) ListTracks(ctx context.Context) ([]*model.Track, error) {
	return s.storage.ListTracks(ctx)
}

// GetTeam looks up a team by a raw id, rejecting malformed ids
func (s *Service) GetTeam(ctx context.Context, rawID string) (*model.Team, error) {
	id, err := model.NormalizeID(rawID)
	if err != nil {
		return nil, err
	}
	return s.storage.GetTeam(ctx, model.TeamID(id))
}

// GetTrack looks up a track by a raw id, rejecting malformed ids
func (s *Service) GetTrack(ctx context.Context, rawID string) (*model.Track, error) {
	id, err := model.NormalizeID(rawID)
	if err != nil {
		return nil, err
	}
	return s.storage.GetTrack(ctx, model.TrackID(id))
}
