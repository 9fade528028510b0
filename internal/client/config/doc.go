// Package config loads runtime configuration for the MediGuard terminal
// client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: an env file (-e/-env, or ./.env when present) loaded with
//     godotenv, then MEDIGUARD_* variables (see parseEnv).
//  3. Optional JSON file selected with -c or -config (see parseJson).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-s string   session storage file
//	-f string   log format
//	-l string   log level
//	-m string   metrics listen address
//	-i int      online check interval (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so "15s" and integer nanoseconds both work:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api/v1",
//	  "request_timeout": "15s",
//	  "storage_path": "/tmp/mediguard.db",
//	  "validate_on_start": true,
//	  "log_format": "json",
//	  "log_level": "debug",
//	  "metrics_addr": "127.0.0.1:9100",
//	  "online_check_interval": "30s"
//	}
package config
