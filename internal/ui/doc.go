// Package ui provides terminal UI components for the lanscan CLI.
//
// This package uses Lipgloss and the Bubbles progress bar to render polished
// terminal output for one-shot scans. Unlike the interactive dashboard, these
// components follow a "run once and exit" pattern.
//
// # Architecture
//
// The UI package provides these component types:
//
//   - Header: Command banner showing operation name and parameters
//   - Progress: Step list tracking the scan coordinator's phases and a sweep bar
//   - Table: Device table with latency-aware cell colouring
//   - Result: Success/failure/warning boxes with styled information
//
// These components are orchestrated by the ScanRunner, which manages the
// header → progress → table → result flow. The runner's OnStateChange,
// OnProgress and OnRegression methods are passed to the scanner as hooks.
//
// Example:
//
//	runner := ui.NewScanRunner(ui.ScanRunnerConfig{
//	    Title:   "LAN Scan",
//	    Command: "lanscan scan",
//	    Live:    ui.IsTerminal(),
//	})
//
//	scanner, _ := discovery.New(components, discovery.Config{
//	    OnStateChange: runner.OnStateChange,
//	    OnProgress:    runner.OnProgress,
//	    OnRegression:  runner.OnRegression,
//	}, logger)
//
//	result, err := runner.Run(ctx, scanner.Scan)
//
// # Logging Integration
//
// Logging is controlled via the LANSCAN_LOG_LEVEL environment variable or
// --log-level. When unset, zap logging is silent so the curated UI output is
// displayed cleanly.
package ui
