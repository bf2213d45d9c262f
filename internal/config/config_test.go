package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_USER", "strike")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_NAME", "strikeit")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PASS", "")
	t.Setenv("DB_PASSWORD", "fallback")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, "fallback", cfg.DBPass)
	assert.Equal(t, 8, cfg.OperatingHourStart)
	assert.Equal(t, 18, cfg.OperatingHourEnd)
	assert.Equal(t, 5*time.Second, cfg.NotifyInterval)
	assert.Equal(t, 10*time.Second, cfg.CheckoutTimeout)
}

func TestLoad_DBPassWins(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PASS", "primary")
	t.Setenv("DB_PASSWORD", "fallback")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.DBPass)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "x")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.NotContains(t, err.Error(), "DB_NAME")
}

func TestLoad_InvalidOperatingHours(t *testing.T) {
	setRequired(t)
	t.Setenv("OPERATING_HOUR_START", "18")
	t.Setenv("OPERATING_HOUR_END", "8")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ClampsNonPositiveDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFY_RELAY_INTERVAL", "0s")
	t.Setenv("CHECKOUT_TIMEOUT", "-3s")
	t.Setenv("NOTIFY_MAX_ATTEMPTS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.NotifyInterval)
	assert.Equal(t, 10*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, 1, cfg.NotifyMaxAttempts)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfig_Methods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}
