// Package cli implements the mapforge command-line interface.
//
// This package provides commands for generating street network maps from
// place names, managing the response cache, and running the HTTP API.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Resolve a place, fetch its street networks, render a map
//   - cache: Manage the response cache
//   - serve: Run the HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli
