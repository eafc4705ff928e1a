package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fritkotgp/raceapi/internal/api"
	"github.com/fritkotgp/raceapi/internal/config"
	"github.com/fritkotgp/raceapi/internal/factory"
	"github.com/fritkotgp/raceapi/internal/services/auth"
	redisstorage "github.com/fritkotgp/raceapi/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	authCfg := auth.DefaultConfig()
	authCfg.Secret = cfg.JWTSecret
	authCfg.TokenExpiresIn = cfg.JWTExpiresIn

	factoryCfg := factory.Config{
		AuthConfig:  authCfg,
		Logger:      logger,
		StorageType: cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		SeedCatalog: cfg.SeedCatalog,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Storage.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		CatalogService: app.CatalogService,
		RaceService:    app.RaceService,
		CORSOrigins:    cfg.CORSOrigins,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	// Serve until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
	)
	return server.Run(ctx)
}
