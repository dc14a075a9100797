package config

import "github.com/caarlos0/env/v11"

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "SHELFSYNC_CLI_"

// parseEnv overlays Config from SHELFSYNC_CLI_* variables and panics on a
// malformed value.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
