// Package config loads runtime configuration for the brandforge CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or TOML file passed to Load.
//  3. The BRANDFORGE_TOKEN environment variable.
//
// Command-line flags are applied afterwards by the cli package.
//
// # File schema
//
// Durations may be strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "access_token": "eyJ...",
//	  "request_timeout": "90s"
//	}
package config
