package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("PROXIMITY_COOLDOWN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.Origins)
	assert.Equal(t, 6*time.Hour, cfg.Proximity.Cooldown)
	assert.Equal(t, 10.0, cfg.Proximity.DefaultRadiusKm)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" https://a.example/ ,, https://b.example ")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, got)
}

func TestGetEnvFloat_InvalidFallsBack(t *testing.T) {
	t.Setenv("PROXIMITY_MAX_RADIUS_KM", "far")
	assert.Equal(t, 200.0, getEnvFloat("PROXIMITY_MAX_RADIUS_KM", 200))
}
