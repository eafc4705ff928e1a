package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fritkotgp/raceapi/internal/dependencies/clock"
	"github.com/fritkotgp/raceapi/internal/dependencies/random"
	"github.com/fritkotgp/raceapi/internal/services/auth"
	"github.com/fritkotgp/raceapi/internal/services/catalog"
	"github.com/fritkotgp/raceapi/internal/services/race"
	"github.com/fritkotgp/raceapi/internal/services/simulator"
	"github.com/fritkotgp/raceapi/internal/storage"
	"github.com/fritkotgp/raceapi/internal/storage/memory"
	"github.com/fritkotgp/raceapi/internal/storage/postgres"
	redisstorage "github.com/fritkotgp/raceapi/internal/storage/redis"
	"github.com/fritkotgp/raceapi/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService      *auth.Service
	CatalogService   *catalog.Service
	SimulatorService *simulator.Service
	RaceService      *race.Service
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis", "sqlite" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// DatabaseURL is the PostgreSQL connection url (required if StorageType is "postgres")
	DatabaseURL string
	// SeedCatalog stores the default teams and tracks on startup
	SeedCatalog bool
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	defaults := auth.DefaultConfig()
	if authCfg.Secret == "" {
		authCfg.Secret = defaults.Secret
	}
	if authCfg.TokenExpiresIn == 0 {
		authCfg.TokenExpiresIn = defaults.TokenExpiresIn
	}

	app := newWithDependencies(store, clock.New(), random.New(), authCfg, logger)

	if cfg.SeedCatalog {
		if _, err := app.CatalogService.Seed(context.Background()); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	return app, nil
}

// openStorage creates the storage backend selected by cfg
func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		return sqlite.Open(cfg.SQLitePath)
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		return postgres.Open(context.Background(), cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis, sqlite or postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, authCfg auth.Config, logger *slog.Logger) *App {
	// Create services
	verifier := auth.NewVerifier(authCfg.Secret, authCfg.TokenExpiresIn, clk)
	authService := auth.New(store, clk, verifier, logger, authCfg)
	catalogService := catalog.New(store, logger)
	simulatorService := simulator.New(rnd)
	raceService := race.New(store, catalogService, simulatorService, clk, logger)

	return &App{
		Storage:          store,
		Clock:            clk,
		Random:           rnd,
		AuthService:      authService,
		CatalogService:   catalogService,
		SimulatorService: simulatorService,
		RaceService:      raceService,
	}
}
