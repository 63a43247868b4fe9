package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.WSAuthRequired)
	assert.Equal(t, 64, cfg.WSSendBuffer)
	assert.Equal(t, 2*time.Minute, cfg.SessionLinger)
	assert.Equal(t, 30*time.Second, cfg.CleanupInterval)
	assert.Equal(t, "tictac.outcomes", cfg.NATSOutcomeSubject)
	assert.Equal(t, 120, cfg.APIRateLimit)
	assert.Equal(t, time.Minute, cfg.APIRateWindow)
	assert.Equal(t, 10, cfg.LeaderboardLimit)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET":               "s3cret",
		"APP_PORT":                 "9000",
		"DATABASE_URL":             "postgres://localhost/tictac",
		"WS_AUTH_REQUIRED":         "false",
		"WS_SEND_BUFFER":           "8",
		"SESSION_LINGER":           "5s",
		"REDIS_DB":                 "2",
		"AUTH_RATE_LIMIT":          "3",
		"AUTH_RATE_WINDOW_SECONDS": "30",
		"LOG_JSON":                 "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "postgres://localhost/tictac", cfg.DatabaseURL)
	assert.False(t, cfg.WSAuthRequired)
	assert.Equal(t, 8, cfg.WSSendBuffer)
	assert.Equal(t, 5*time.Second, cfg.SessionLinger)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 3, cfg.AuthRateLimit)
	assert.Equal(t, 30*time.Second, cfg.AuthRateWindow)
	assert.True(t, cfg.LogJSON)
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET":     "s3cret",
		"WS_SEND_BUFFER": "-1",
		"SESSION_LINGER": "soon",
		"API_RATE_LIMIT": "many",
	}))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.WSSendBuffer)
	assert.Equal(t, 2*time.Minute, cfg.SessionLinger)
	assert.Equal(t, 120, cfg.APIRateLimit)
}

func TestFromEnv_MissingSecret(t *testing.T) {
	_, err := FromEnv(env(nil))
	assert.ErrorIs(t, err, ErrMissing)
}

func TestFromEnv_NonPositiveCleanup(t *testing.T) {
	_, err := FromEnv(env(map[string]string{"JWT_SECRET": "x", "CLEANUP_INTERVAL": "0s"}))
	assert.Error(t, err)
}
