package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_EXPIRES_HOURS", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("PROMETHEUS_ENABLED", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.PrometheusEnabled)
	assert.Contains(t, cfg.DatabaseURL, "host=localhost")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/pos")
	t.Setenv("JWT_EXPIRES_HOURS", "2")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("PROMETHEUS_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://u:p@db:5432/pos", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.OtelEnabled)
	assert.True(t, cfg.PrometheusEnabled)
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
}
