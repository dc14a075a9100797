package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/shelfsync/internal/flagx"
	"github.com/dmitrijs2005/shelfsync/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Duration fields accept
// strings such as "15m" or integer nanoseconds. Pointer fields distinguish
// "absent" from "false"/"0".
type JsonConfig struct {
	HTTPAddr           string         `json:"http_addr"`
	DatabaseDSN        string         `json:"database_dsn"`
	MasterKey          string         `json:"master_key"`
	JWTSecret          string         `json:"jwt_secret"`
	SessionTTL         timex.Duration `json:"session_ttl"`
	ChallengeTTL       timex.Duration `json:"challenge_ttl"`
	SyncTimeout        timex.Duration `json:"sync_timeout"`
	SyncCommand        string         `json:"sync_command"`
	SyncWorkDir        string         `json:"sync_workdir"`
	BridgeURL          string         `json:"bridge_url"`
	OAuthClientID      string         `json:"oauth_client_id"`
	CookieSecure       *bool          `json:"cookie_secure"`
	LoginRatePerMinute *int           `json:"login_rate_per_minute"`
	LogFormat          string         `json:"log_format"`
	LogLevel           string         `json:"log_level"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config (or SHELFSYNC_CONFIG), if any, and copies every
// field it sets into config. Unreadable or invalid files panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(EnvPrefix + "CONFIG")
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MasterKey, c.MasterKey)
	setString(&config.JWTSecret, c.JWTSecret)
	setDuration(&config.SessionTTL, c.SessionTTL)
	setDuration(&config.ChallengeTTL, c.ChallengeTTL)
	setDuration(&config.SyncTimeout, c.SyncTimeout)
	setString(&config.SyncCommand, c.SyncCommand)
	setString(&config.SyncWorkDir, c.SyncWorkDir)
	setString(&config.BridgeURL, c.BridgeURL)
	setString(&config.OAuthClientID, c.OAuthClientID)
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.LoginRatePerMinute != nil {
		config.LoginRatePerMinute = *c.LoginRatePerMinute
	}
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
