// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/common"
)

// Config holds runtime settings for the shelfsync server.
//
// Secrets (MasterKey, JWTSecret) have no defaults and must be provided;
// see Validate.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR"`
	DatabaseDSN string `env:"DATABASE_DSN"`

	MasterKey string `env:"MASTER_KEY"`
	JWTSecret string `env:"JWT_SECRET"`

	SessionTTL   time.Duration `env:"SESSION_TTL"`
	ChallengeTTL time.Duration `env:"CHALLENGE_TTL"`
	SyncTimeout  time.Duration `env:"SYNC_TIMEOUT"`

	// SyncCommand is split on whitespace; "--user-id <id>" is appended.
	SyncCommand string `env:"SYNC_COMMAND"`
	SyncWorkDir string `env:"SYNC_WORKDIR"`

	BridgeURL     string `env:"BRIDGE_URL"`
	OAuthClientID string `env:"OAUTH_CLIENT_ID"`

	CookieSecure       bool `env:"COOKIE_SECURE"`
	LoginRatePerMinute int  `env:"LOGIN_RATE_PER_MINUTE"`

	LogFormat string `env:"LOG_FORMAT"`
	LogLevel  string `env:"LOG_LEVEL"`

	// Sync output is archived to S3 only when S3Bucket is set.
	S3RootUser     string `env:"S3_ROOT_USER"`
	S3RootPassword string `env:"S3_ROOT_PASSWORD"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8000"
	c.DatabaseDSN = "sqlite://shelfsync.db"
	c.SessionTTL = common.SessionValidity
	c.ChallengeTTL = common.ChallengeValidity
	c.SyncTimeout = common.SyncTimeout
	c.SyncCommand = "shelfsync-fetch"
	c.BridgeURL = "http://127.0.0.1:8765"
	c.LoginRatePerMinute = 10
	c.LogFormat = "json"
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.MasterKey == "" {
		errs = append(errs, common.ErrMissingMasterKey)
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is not configured"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is not configured"))
	}
	if c.SyncCommand == "" {
		errs = append(errs, errors.New("sync command is not configured"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
