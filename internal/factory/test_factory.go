package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fritkotgp/raceapi/internal/dependencies/mocks"
	"github.com/fritkotgp/raceapi/internal/services/auth"
	"github.com/fritkotgp/raceapi/internal/storage/memory"
	"github.com/fritkotgp/raceapi/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App with in-memory storage, mocked dependencies and a seeded catalog
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost

	app := newWithDependencies(store, mockClock, mockRandom, authCfg, testutil.NopLogger())
	if _, err := app.CatalogService.Seed(context.Background()); err != nil {
		panic(err) // memory storage does not fail
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
