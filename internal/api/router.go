package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fritkotgp/raceapi/internal/api/apierr"
	"github.com/fritkotgp/raceapi/internal/api/handler"
	"github.com/fritkotgp/raceapi/internal/api/middleware"
	"github.com/fritkotgp/raceapi/internal/api/response"
	"github.com/fritkotgp/raceapi/internal/services/auth"
	"github.com/fritkotgp/raceapi/internal/services/catalog"
	"github.com/fritkotgp/raceapi/internal/services/race"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	CatalogService *catalog.Service
	RaceService    *race.Service
	CORSOrigins    []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	catalogHandler := handler.NewCatalogHandler(cfg.CatalogService)
	raceHandler := handler.NewRaceHandler(cfg.RaceService)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService.Verifier())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Public routes
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/teams", catalogHandler.ListTeams).Methods(http.MethodGet)
	r.HandleFunc("/tracks", catalogHandler.ListTracks).Methods(http.MethodGet)

	// Protected routes
	me := r.PathPrefix("/auth/me").Subrouter()
	me.Use(authMiddleware)
	me.HandleFunc("", authHandler.Me).Methods(http.MethodGet)

	races := r.PathPrefix("/races").Subrouter()
	races.Use(authMiddleware)
	races.HandleFunc("", raceHandler.List).Methods(http.MethodGet)
	races.HandleFunc("/simulate", raceHandler.Simulate).Methods(http.MethodPost)
	races.HandleFunc("/{id}", raceHandler.Get).Methods(http.MethodGet)
	races.HandleFunc("/{id}", raceHandler.Delete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{
		Status:  "ok",
		Message: "Fritkot GP API running",
	})
}
