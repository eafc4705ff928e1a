package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fritkotgp/raceapi/internal/storage"
	"github.com/fritkotgp/raceapi/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage { return New() },
	})
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	store := New()
	ctx := t.Context()
	candidate := storagetest.Candidate("u1", 90000, storagetest.BaseTime)
	_, stored, err := store.UpsertBestResult(ctx, candidate)
	require.NoError(t, err)

	stored.LapTimeMs = 1
	candidate.LapTimeMs = 2

	got, err := store.GetResult(ctx, stored.ID)
	require.NoError(t, err)
	require.Equal(t, int64(90000), got.LapTimeMs)
}
