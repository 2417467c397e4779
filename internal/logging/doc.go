// Package logging provides structured logging for lanscan.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used by the scanner: state transitions, probe outcomes, latency
// regressions and external command runs.
//
// # Log Levels
//
//   - Debug: per-host probe results, command invocations, state transitions
//   - Info: scan summaries, server lifecycle
//   - Warn: latency regressions, non-fatal setup problems
//   - Error: failures that abort a scan or the server
//
// # Configuration
//
// Logging is silent unless a level is given, either explicitly or through
// the LANSCAN_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format so it never mixes with the device
// table or JSON written to stdout.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has
// returned.
package logging
