package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg := New()
	require.Equal(t, ":8080", cfg.BindAddr)
	require.Equal(t, 1000, cfg.LobbyCapacity)
	require.Len(t, cfg.CeremonySizes, 4)
}

func TestNewAppliesOverrideArgs(t *testing.T) {
	cfg := New("--bind", ":9090", "--lobby-capacity", "5", "--min-checkin-delay", "2s")
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 5, cfg.LobbyCapacity)
	require.Equal(t, 2*time.Second, cfg.MinCheckinDelay)
}

func TestNewPanicsOnDanglingFlag(t *testing.T) {
	require.Panics(t, func() {
		New("--bind")
	})
}

func TestGetEnvUintFallsBackOnGarbage(t *testing.T) {
	t.Setenv("MINIMUM_NONCE", "not-a-number")
	cfg := New()
	require.Equal(t, uint64(0), cfg.MinimumNonce)
}
