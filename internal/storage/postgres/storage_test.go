package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fritkotgp/raceapi/internal/storage"
	"github.com/fritkotgp/raceapi/internal/storage/storagetest"
)

// startPostgres runs a throwaway postgres:15 container and returns its url
func startPostgres(t *testing.T) string {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15",
			ExposedPorts: []string{"5432/tcp"},
			Cmd:          []string{"postgres", "-c", "fsync=off"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "fritkotgp",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postgres:password@%s:%s/fritkotgp?sslmode=disable", host, port.Port())
}

func TestStorageSuite(t *testing.T) {
	dbURL := startPostgres(t)

	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			ctx := t.Context()
			store, err := Open(ctx, dbURL)
			require.NoError(t, err)
			_, err = store.pool.Exec(ctx, `TRUNCATE users, teams, tracks, race_results`)
			require.NoError(t, err)
			return store
		},
	})
}

func TestNewWithPoolSharesSchema(t *testing.T) {
	dbURL := startPostgres(t)
	ctx := t.Context()

	require.NoError(t, Migrate(dbURL))
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	store := NewWithPool(pool)
	defer store.Close()

	outcome, stored, err := store.UpsertBestResult(ctx, storagetest.Candidate("u1", 90000, storagetest.BaseTime))
	require.NoError(t, err)
	require.Equal(t, "created", string(outcome))
	require.True(t, storagetest.BaseTime.Equal(stored.UpdatedAt))
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@h:5432/db", migrateURL("postgres://u:p@h:5432/db"))
	require.Equal(t, "pgx5://u:p@h:5432/db", migrateURL("postgresql://u:p@h:5432/db"))
	require.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}
