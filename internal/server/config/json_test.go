package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":             "www.example:9000",
		"database_dsn":          "postgres://vault",
		"master_key":            "mk",
		"jwt_secret":            "my_secret_key",
		"session_ttl":           "12h",
		"challenge_ttl":         "10m",
		"sync_timeout":          60000000000,
		"sync_command":          "python3 fetch.py",
		"bridge_url":            "http://bridge",
		"oauth_client_id":       "client",
		"cookie_secure":         true,
		"login_rate_per_minute": 0,
		"s3_root_user":          "user",
		"s3_root_password":      "password",
		"s3_bucket":             "bucket",
		"s3_region":             "region",
		"s3_base_endpoint":      "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
		assert.Equal(t, "postgres://vault", cfg.DatabaseDSN)
		assert.Equal(t, "mk", cfg.MasterKey)
		assert.Equal(t, "my_secret_key", cfg.JWTSecret)
		assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
		assert.Equal(t, 10*time.Minute, cfg.ChallengeTTL)
		assert.Equal(t, time.Minute, cfg.SyncTimeout)
		assert.Equal(t, "python3 fetch.py", cfg.SyncCommand)
		assert.Equal(t, "http://bridge", cfg.BridgeURL)
		assert.Equal(t, "client", cfg.OAuthClientID)
		assert.True(t, cfg.CookieSecure)
		assert.Equal(t, 0, cfg.LoginRatePerMinute, "explicit zero disables limiting")
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
		assert.Equal(t, "json", cfg.LogFormat, "absent keys keep defaults")
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{HTTPAddr: "defaults:1234", SessionTTL: 2 * time.Minute}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, 2*time.Minute, cfg.SessionTTL)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "absent.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
