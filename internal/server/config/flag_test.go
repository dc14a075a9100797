package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-d", "postgres://db", "-s", "secret", "-m", "master",
				"-x", "fetch --fast", "-b", "http://bridge", "-t", "2h", "-l", "debug", "-f", "console", "-secure",
			},
			expected: &Config{
				HTTPAddr:     "127.0.0.1:9090",
				DatabaseDSN:  "postgres://db",
				JWTSecret:    "secret",
				MasterKey:    "master",
				SyncCommand:  "fetch --fast",
				BridgeURL:    "http://bridge",
				SessionTTL:   2 * time.Hour,
				LogLevel:     "debug",
				LogFormat:    "console",
				CookieSecure: true,
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-a", ":1"},
			expected: &Config{HTTPAddr: ":1"},
		},
		{
			name:        "bad duration panics",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
