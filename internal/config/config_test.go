package config

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"CHESS_ADDR", "CHESS_ALLOWED_ORIGINS", "CHESS_DATA_DIR",
		"CHESS_IN_MEMORY", "CHESS_MATCHMAKING_INTERVAL", "CHESS_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Origins())
	assert.Equal(t, "data", cfg.DataDir)
	assert.False(t, cfg.InMemory)
	assert.Equal(t, time.Second, cfg.MatchmakingInterval)
	assert.Equal(t, log.LevelInfo, cfg.LogLevel)
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHESS_ADDR", ":8080")
	t.Setenv("CHESS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("CHESS_IN_MEMORY", "yes")
	t.Setenv("CHESS_MATCHMAKING_INTERVAL", "250ms")
	t.Setenv("CHESS_LOG_LEVEL", "DEBUG")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
	assert.True(t, cfg.InMemory)
	assert.Equal(t, 250*time.Millisecond, cfg.MatchmakingInterval)
	assert.Equal(t, log.LevelDebug, cfg.LogLevel)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHESS_ADDR", ":8080")
	t.Setenv("CHESS_IN_MEMORY", "true")

	cfg, err := Load([]string{"-addr", ":9090", "-in-memory=false", "-data-dir", "/tmp/games"})
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.False(t, cfg.InMemory)
	assert.Equal(t, "/tmp/games", cfg.DataDir)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"bad interval", []string{"-matchmaking-interval", "soon"}},
		{"zero interval", []string{"-matchmaking-interval", "0s"}},
		{"bad level", []string{"-log-level", "loud"}},
		{"empty addr", []string{"-addr", ""}},
		{"no data dir", []string{"-data-dir", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(tt.args)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestUnparseableBoolFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHESS_IN_MEMORY", "maybe")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.False(t, cfg.InMemory)
}
