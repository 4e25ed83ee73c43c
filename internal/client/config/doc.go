// Package config loads runtime configuration for the authctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with --config (see (*Config).LoadJSON).
//  3. AUTHCTL_* environment variables (see (*Config).LoadEnv).
//  4. Command-line flags, bound by the cli package, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "timeout": "10s",
//	  "token_file": "/home/alice/.config/authctl/token"
//	}
package config
