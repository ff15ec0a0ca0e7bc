package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 2*time.Second, cfg.PaymentDelay)
	assert.Equal(t, 10*time.Minute, cfg.UploadTimeout)
	assert.InDelta(t, 0.9, cfg.PaymentSuccessRate, 1e-9)
	assert.False(t, cfg.ReplaceActiveSubscription)
	assert.Equal(t, "streaming-media", cfg.MinIOConfig.Bucket)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "postgres")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, time.Minute, cfg.RefillInterval)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
}
