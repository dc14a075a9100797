// Package config loads runtime configuration for the shelfsync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c/-config, or the
//     SHELFSYNC_CLI_CONFIG environment variable when neither flag is given.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the shelfsync server
//	-m string   default marketplace for login
//	-s string   path of the saved session file
//	-i int      sync status poll interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "2s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "marketplace": "uk",
//	  "session_file": "/home/me/.shelfsync/session.json",
//	  "poll_interval": "2s"
//	}
package config
