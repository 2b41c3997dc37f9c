// Package config loads runtime configuration for the devconnector CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     base URL of the server (default http://localhost:5000)
//	-d string     local SQLite database path
//	-t duration   per-request timeout
//	-e duration   alert expiry, 0 disables
//	-i int        online status check interval (seconds)
//	-l string     log level
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:5000",
//	  "database_path": "devconnector.db",
//	  "request_timeout": "10s",
//	  "alert_timeout": "5s",
//	  "online_check_interval": "3s",
//	  "log_level": "warn"
//	}
package config
