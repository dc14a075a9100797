package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/shelfsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8000")
//	-d string     database DSN (postgres://... or sqlite://...)
//	-s string     JWT HMAC secret
//	-m string     credential master key
//	-x string     sync command
//	-b string     auth bridge URL
//	-t duration   session lifetime (e.g., "24h")
//	-l string     log level (debug, info, warn, error)
//	-f string     log format (json, console)
//	-secure       mark the session cookie Secure
//
// The arguments are first filtered with flagx.FilterArgs so flags owned by
// other components (e.g. -c) do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-m", "-x", "-b", "-t", "-l", "-f", "-secure"}, "-secure")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "session token secret")
	fs.StringVar(&config.MasterKey, "m", config.MasterKey, "credential master key")
	fs.StringVar(&config.SyncCommand, "x", config.SyncCommand, "library sync command")
	fs.StringVar(&config.BridgeURL, "b", config.BridgeURL, "auth bridge URL")
	fs.DurationVar(&config.SessionTTL, "t", config.SessionTTL, "session lifetime")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json|console)")
	fs.BoolVar(&config.CookieSecure, "secure", config.CookieSecure, "set Secure on the session cookie")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
