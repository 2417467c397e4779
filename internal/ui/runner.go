package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muurk/lanscan/internal/discovery"
)

// ScanRunnerConfig holds configuration for a one-shot scan display
type ScanRunnerConfig struct {
	Title   string    // e.g., "LAN Scan"
	Command string    // e.g., "lanscan scan"
	Params  []Param   // Parameters to display in header
	Live    bool      // Redraw the running step in place (terminals only)
	Output  io.Writer // Output writer (default: os.Stdout)
}

// ScanRunner orchestrates the UI for a single scan.
// It manages the header → progress → table → result flow and provides
// hooks for the scanner's state and progress callbacks.
type ScanRunner struct {
	config   ScanRunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int

	mu          sync.Mutex
	regressions []discovery.Regression
}

// NewScanRunner creates a new runner
func NewScanRunner(config ScanRunnerConfig) *ScanRunner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params...)
	header.SetWidth(width)

	progress := NewProgress("")
	progress.SetWidth(width)

	return &ScanRunner{
		config:   config,
		header:   header,
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// SetWidth overrides the detected terminal width
func (r *ScanRunner) SetWidth(width int) *ScanRunner {
	r.width = width
	r.header.SetWidth(width)
	r.progress.SetWidth(width)
	return r
}

// OnStateChange is a discovery.Config.OnStateChange hook
func (r *ScanRunner) OnStateChange(from, to discovery.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.progress.Transition(from, to) {
		step := r.progress.Steps[n-1]
		switch step.Status {
		case StepRunning:
			if r.config.Live {
				_, _ = fmt.Fprint(r.output, r.progress.RenderStep(n)+"\r")
			}
		default:
			// Completed or failed steps are printed once and stay
			_, _ = fmt.Fprintln(r.output, r.progress.RenderStep(n)+clearEOL(r.config.Live))
		}
	}
}

// OnProgress is a discovery.Config.OnProgress hook
func (r *ScanRunner) OnProgress(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress.SetSweep(done, total)
	if r.config.Live {
		n := stepFor(discovery.StateSweepingRemainder)
		_, _ = fmt.Fprint(r.output, r.progress.RenderStep(n)+"\r")
	}
}

// OnRegression is a discovery.Config.OnRegression hook
func (r *ScanRunner) OnRegression(reg discovery.Regression) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regressions = append(r.regressions, reg)
}

// Regressions returns the regressions seen so far
func (r *ScanRunner) Regressions() []discovery.Regression {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]discovery.Regression(nil), r.regressions...)
}

// ScanFunc runs one scan
type ScanFunc func(ctx context.Context) (*discovery.ScanResult, error)

// Run prints the header, runs the scan, then prints the device table and a
// summary, or a failure box with troubleshooting tips.
func (r *ScanRunner) Run(ctx context.Context, scan ScanFunc) (*discovery.ScanResult, error) {
	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	result, err := scan(ctx)
	_, _ = fmt.Fprintln(r.output)

	if result == nil {
		_, _ = fmt.Fprintln(r.output, NewFailureResult("Scan failed", err, TroubleshootingFor(err)).SetWidth(r.width).Render())
		return nil, err
	}

	_, _ = fmt.Fprintln(r.output, RenderDeviceTable(result, r.width))
	_, _ = fmt.Fprintln(r.output)

	if regs := r.Regressions(); len(regs) > 0 {
		_, _ = fmt.Fprintln(r.output, RenderRegressions(regs, r.width))
		_, _ = fmt.Fprintln(r.output)
	}

	_, _ = fmt.Fprintln(r.output, RenderScanSummary(result, r.width))
	return result, err
}

func clearEOL(live bool) string {
	if live {
		return "\033[K"
	}
	return ""
}

// TroubleshootingFor returns tips for a scan error
func TroubleshootingFor(err error) []string {
	switch {
	case errors.Is(err, discovery.ErrNoGateway):
		return []string{
			"Check that this machine is connected to a network",
			"Verify a default route exists (ip route / route print)",
			"VPN clients can replace the default gateway; disconnect and retry",
		}
	case errors.Is(err, discovery.ErrNoLocalAddress):
		return []string{
			"Check that an interface is up and has an IPv4 address",
			"DHCP may still be negotiating; wait a few seconds and retry",
		}
	case errors.Is(err, discovery.ErrNoSubnet):
		return []string{
			"The default gateway is not an IPv4 address",
			"Only IPv4 /24 networks can be scanned",
		}
	case errors.Is(err, discovery.ErrScanInProgress):
		return []string{"Wait for the running scan to finish"}
	default:
		return []string{
			"Run with --log-level debug for details",
			"ICMP may need --privileged (raw sockets) on this platform",
			"On Linux, unprivileged ping requires net.ipv4.ping_group_range to include your group",
		}
	}
}
