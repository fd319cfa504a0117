package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "neo4j", cfg.Store.Backend)
	assert.Equal(t, 5, cfg.Detection.MinClaims)
	assert.Equal(t, 15000.0, cfg.Detection.MinAvgAmount)
	assert.Equal(t, 30*time.Minute, cfg.Detection.LockTTL)
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.Schedule)
	assert.True(t, cfg.Scheduler.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("DETECT_MIN_AVG_AMOUNT", "9000.5")
	t.Setenv("DETECT_MIN_CLAIMS", "not-a-number")
	t.Setenv("DETECTION_SCHEDULE_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 9000.5, cfg.Detection.MinAvgAmount)
	assert.Equal(t, 5, cfg.Detection.MinClaims, "invalid values fall back to the default")
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_BACKEND")

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("API_KEY", "")
	_, err = Load()
	assert.ErrorContains(t, err, "API_KEY")

	t.Setenv("API_KEY", "k")
	t.Setenv("RATE_LIMIT_BURST", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "RATE_LIMIT")
}
