// Package app is the composition root of the lead console.
//
// # Overview
//
// Build turns configuration into a running Store: it reads the .env file and
// config.toml, opens the log file and the preference slot, expands the seed
// dataset to the configured size and puts a latency simulator in front of
// both the load and the save path. Run hands that Store to the TUI.
//
// # Startup
//
//  1. Apply .env, then config.toml, then LEADCONSOLE_* variables
//  2. Open the slog log file (append mode, parent directories created)
//  3. Open the preference slot (~/.config/leadconsole/prefs.toml)
//  4. Load the seed (embedded unless seed_path is set) and expand it
//  5. Build the load and save simulators from the configured delays and rates
//  6. Create the Store with a log observer and start the UI
//
// The Store is not loaded here. The UI starts the first load itself so the
// loading state is visible.
//
// # Commands
//
//   - leadconsole: the TUI on a terminal, the list output otherwise
//   - leadconsole list: loads once and prints the visible leads. --search,
//     --status and --asc override the stored view for that run only
//   - leadconsole prefs: prints the stored preferences
//   - leadconsole prefs reset: restores the default view
//
// # Errors
//
// Configuration, seed and log file problems are fatal and returned from Build.
// Simulated server failures are not errors at this level: the Store records
// them as LastError and the UI offers a manual retry. The list command reports
// a failed load and exits non-zero.
package app
