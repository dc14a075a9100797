package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/client/api"
	"github.com/dmitrijs2005/shelfsync/internal/common"
)

// Config holds runtime settings for the shelfsync CLI.
type Config struct {
	ServerURL    string        `env:"SERVER_URL"`
	Marketplace  string        `env:"MARKETPLACE"`
	SessionFile  string        `env:"SESSION_FILE"`
	PollInterval time.Duration `env:"POLL_INTERVAL"`
}

// LoadDefaults populates c with the values used when nothing is configured.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.Marketplace = common.DefaultMarketplace
	c.SessionFile = api.DefaultSessionPath()
	c.PollInterval = 2 * time.Second
}

// Validate reports settings the CLI cannot start with.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server url is not configured")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server url %q: want http(s)://host[:port]", c.ServerURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// LoadConfig applies defaults, then the JSON file, environment and flags.
// Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
