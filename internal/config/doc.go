// Package config loads the lead console settings.
//
// # Overview
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults
//  2. The TOML file (explicit path, or ~/.config/leadconsole/config.toml)
//  3. LEADCONSOLE_* environment variables, optionally seeded from a .env file
//     through LoadEnvFile
//
// A missing config file is not an error. A malformed one is.
//
// # Defaults
//
//   - seed_path: "" (the embedded dataset)
//   - target: 100
//   - load_delay_ms / save_delay_ms: 600
//   - load_failure_rate: 0.15
//   - save_failure_rate: 0.18
//   - prefs_path: ~/.config/leadconsole/prefs.toml
//   - log_file: ~/.local/state/leadconsole/leadconsole.log
//   - log_level: info
//
// # TOML Format
//
//	seed_path = "~/leads.json"
//	target = 250
//	save_failure_rate = 0.5
//	log_level = "debug"
//
// Every field is optional. Tilde expansion is applied to seed_path,
// prefs_path and log_file.
//
// # Environment
//
//	LEADCONSOLE_SEED               seed_path
//	LEADCONSOLE_TARGET             target
//	LEADCONSOLE_LOAD_DELAY_MS      load_delay_ms
//	LEADCONSOLE_SAVE_DELAY_MS      save_delay_ms
//	LEADCONSOLE_LOAD_FAILURE_RATE  load_failure_rate
//	LEADCONSOLE_SAVE_FAILURE_RATE  save_failure_rate
//	LEADCONSOLE_LOG_FILE           log_file
//	LEADCONSOLE_LOG_LEVEL          log_level
//
// Blank variables are ignored.
//
// # Validation
//
// Failure rates must lie in [0,1). Target and delays must not be negative.
// log_level must be one of debug, info, warn or error.
package config
