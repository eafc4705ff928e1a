package storage

import (
	"context"

	"github.com/fritkotgp/raceapi/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Catalog operations
	SaveTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error)
	ListTeams(ctx context.Context) ([]*model.Team, error)
	SaveTrack(ctx context.Context, track *model.Track) error
	GetTrack(ctx context.Context, id model.TrackID) (*model.Track, error)
	ListTracks(ctx context.Context) ([]*model.Track, error)

	// Race result operations
	FindResult(ctx context.Context, key model.ResultKey) (*model.RaceResult, error)
	// UpsertBestResult stores candidate if no result exists for its key, replaces the
	// existing one if candidate is strictly faster, and otherwise leaves it alone.
	// Lookup and write are atomic with respect to concurrent calls for the same key.
	UpsertBestResult(ctx context.Context, candidate *model.RaceResult) (model.UpsertOutcome, *model.RaceResult, error)
	ListResultsForUser(ctx context.Context, userID model.UserID, query model.ResultQuery) ([]*model.RaceResult, error)
	GetResult(ctx context.Context, id model.ResultID) (*model.RaceResult, error)
	DeleteResult(ctx context.Context, id model.ResultID) error

	// Close releases backend connections
	Close() error
}
