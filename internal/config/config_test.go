package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/drawguess")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 60*time.Second, cfg.SingleplayerTimeLimit)
	assert.Equal(t, 1, cfg.SingleplayerScore)
	assert.Equal(t, 120*time.Second, cfg.MultiplayerTimeLimit)
	assert.Equal(t, 3, cfg.MultiplayerScore)
	assert.Equal(t, 2, cfg.MultiplayerMinPlayers)
	assert.Equal(t, 6, cfg.MultiplayerMaxPlayers)
	assert.True(t, cfg.RunMigrations)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/drawguess")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SP_TIME_LIMIT_SECONDS", "30")
	t.Setenv("MP_MAX_PLAYERS", "4")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SP_SCORE", "oops")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.SingleplayerTimeLimit)
	assert.Equal(t, 4, cfg.MultiplayerMaxPlayers)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 1, cfg.SingleplayerScore)
}

func TestFromEnvRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/drawguess")
	t.Setenv("JWT_SECRET", "")

	_, err = FromEnv()
	assert.Error(t, err)
}

func TestFromEnvPlayerLimits(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/drawguess")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MP_MIN_PLAYERS", "5")
	t.Setenv("MP_MAX_PLAYERS", "3")

	_, err := FromEnv()
	assert.Error(t, err)
}
