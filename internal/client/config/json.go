package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shelfsync/internal/flagx"
	"github.com/dmitrijs2005/shelfsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "2s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL    string         `json:"server_url"`
	Marketplace  string         `json:"marketplace"`
	SessionFile  string         `json:"session_file"`
	PollInterval timex.Duration `json:"poll_interval"`
}

// parseJson overlays Config with the JSON file named by -c/-config or
// SHELFSYNC_CLI_CONFIG. Keys absent from the file keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFile(EnvPrefix + "CONFIG")
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.Marketplace != "" {
		cfg.Marketplace = jc.Marketplace
	}
	if jc.SessionFile != "" {
		cfg.SessionFile = jc.SessionFile
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = jc.PollInterval.Duration
	}
}
