// Package app is the composition root for technician.
//
// Run loads the configuration, opens the log file, builds the ESPM client,
// the offline cache and the provider on top of them, and hands the provider
// to the UI. Nothing below this package looks anything up globally.
//
// # Startup
//
//  1. config.Load reads ~/.config/technician/config.toml (defaults if missing)
//  2. openLogger sends zerolog output to the configured log file
//  3. espm.NewClient and offline.OpenCache/NewProvider build the data container
//  4. Provider.Sync replays queued edits and warms the cache in the background
//  5. StartPoller keeps the sales order KPI in a state.Store
//  6. ui.Run blocks until the user quits or the context is cancelled
//
// # KPI Poller
//
// The poller fetches sales order headers on an interval (30 seconds by
// default) and publishes completed/total to the store. Failures are
// recorded in the store and back off exponentially, capped at four times
// the interval (never below 30 seconds).
// The UI reads store snapshots on its own tick, so a slow service never
// blocks rendering.
//
// # Errors
//
// Only configuration, log file, client and cache setup errors are fatal.
// Load and save failures surface in the UI; poll failures are logged.
package app
