// Package tui implements the live watch screen for lanscan.
//
// The screen is a Bubble Tea program following the Model-Update-View
// pattern. It rescans the subnet on a fixed interval (and whenever r is
// pressed), shows the latest devices in a bubbles/table and lists latency
// regressions reported by the scanner's history.
//
// # Scanner Integration
//
// Scanner callbacks run on the scanner's collector goroutine. A Feed turns
// them into Bubble Tea messages:
//
//	feed := tui.NewFeed()
//	scanner, _ := discovery.New(components, discovery.Config{
//	    OnStateChange: feed.OnStateChange,
//	    OnProgress:    feed.OnProgress,
//	    OnRegression:  feed.OnRegression,
//	}, logger)
//
//	model := tui.New(ctx, scanner.Scan, feed, 6*time.Second)
//	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
//
// A timer tick or key press that arrives while a scan is running is
// ignored. The next tick starts a fresh scan.
//
// # Key Bindings
//
//   - ↑/↓ move through the device table
//   - r rescan now
//   - ? toggle full help
//   - q quit (cancels a running scan)
package tui
