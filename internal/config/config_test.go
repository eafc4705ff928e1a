package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "fritkotgp.db", cfg.SQLitePath)
	assert.Equal(t, "fritkot_secret", cfg.JWTSecret)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.SeedCatalog)
}

func TestOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PORT":           "8080",
		"HOST":           "127.0.0.1",
		"LOG_LEVEL":      "debug",
		"STORAGE_TYPE":   "redis",
		"REDIS_URL":      "redis://cache:6379/1",
		"JWT_EXPIRES_IN": "1h",
		"CORS_ORIGINS":   "http://a.test,http://b.test",
		"SEED_CATALOG":   "false",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.False(t, cfg.SeedCatalog)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{"redis without url", map[string]string{"STORAGE_TYPE": "redis"}},
		{"postgres without url", map[string]string{"STORAGE_TYPE": "postgres"}},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "mongo"}},
		{"bad port", map[string]string{"PORT": "0"}},
		{"non-numeric port", map[string]string{"PORT": "abc"}},
		{"bad duration", map[string]string{"JWT_EXPIRES_IN": "7d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			assert.Error(t, err)
		})
	}
}
