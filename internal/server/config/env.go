package config

import (
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by the server.
const EnvPrefix = "SHELFSYNC_"

// parseEnv overlays Config fields from SHELFSYNC_* environment variables.
// Unset variables leave the current value untouched. Malformed values
// (e.g. a bad duration) panic, like the other config sources.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
