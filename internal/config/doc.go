// Package config provides centralized configuration management for the
// EnergyMix system. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration
// values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ENERGYMIX_* for namespacing:
//
//	ENERGYMIX_SERVER_PORT=8080
//	ENERGYMIX_DATABASE_PATH=Energy.db
//	ENERGYMIX_INGEST_INPUT_PATH=Mix.xlsx
//	ENERGYMIX_LOGGING_LEVEL=info
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Values are within acceptable ranges
//	- The store and input paths are non-empty
//	- The watcher interval is positive when enabled
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Nothing in this package runs at import time; both binaries construct
// their configuration explicitly from main.
package config
