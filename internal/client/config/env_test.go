package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("SHELFSYNC_CLI_SERVER_URL", "https://sync.example.org")
	t.Setenv("SHELFSYNC_CLI_POLL_INTERVAL", "5s")

	cfg := &Config{Marketplace: "fr", PollInterval: time.Second}
	parseEnv(cfg)

	assert.Equal(t, "https://sync.example.org", cfg.ServerURL)
	assert.Equal(t, "fr", cfg.Marketplace, "unset variables keep the current value")
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
}

func TestParseEnv_BadDuration(t *testing.T) {
	t.Setenv("SHELFSYNC_CLI_POLL_INTERVAL", "soon")
	require.Panics(t, func() { parseEnv(&Config{}) })
}
