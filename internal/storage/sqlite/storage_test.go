package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage"
	"github.com/fritkotgp/raceapi/internal/storage/storagetest"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "race.db"))
	require.NoError(t, err)
	return store
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage { return openTestStorage(t) },
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

func TestReopenKeepsDataAndSkipsAppliedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.db")
	ctx := t.Context()

	store, err := Open(path)
	require.NoError(t, err)
	_, stored, err := store.UpsertBestResult(ctx, storagetest.Candidate("u1", 90000, storagetest.BaseTime))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.FindResult(ctx, model.ResultKey{UserID: "u1", TeamID: stored.TeamID, TrackID: stored.TrackID})
	require.NoError(t, err)
	require.Equal(t, stored.ID, got.ID)
	require.True(t, storagetest.BaseTime.Equal(got.UpdatedAt))
}
