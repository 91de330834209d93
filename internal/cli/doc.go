// Package cli implements the command-line interface for eventsync.
//
// The cli package provides the Cobra-based CLI with the sync, cleanup, and
// analyze subcommands, output formatting (text/JSON), and the process exit
// codes cron wrappers depend on. It wires the config, gancio, state, venue,
// and runner packages together for one process lifetime.
package cli
