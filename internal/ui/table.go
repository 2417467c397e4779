package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/probe"
)

// Device table columns
const (
	colAddress = iota
	colName
	colLatency
	colHardware
	colRole
)

// DeviceColumns are the device table headings, in column order.
var DeviceColumns = []string{"ADDRESS", "NAME", "LATENCY", "HARDWARE ADDRESS", "ROLE"}

// LatencyStyle picks the cell style for a latency value
func LatencyStyle(l probe.Latency) lipgloss.Style {
	switch l.State {
	case probe.Measured:
		return LatencyMeasuredStyle
	case probe.TimedOut:
		return LatencyTimedOutStyle
	default:
		return LatencyErrorStyle
	}
}

// DeviceRow returns the table cells for one device
func DeviceRow(d discovery.Device) []string {
	return []string{d.Address, d.Name, d.Latency.String(), d.HardwareAddress, d.Role.Label()}
}

// RenderDeviceTable renders the devices of a scan as a bordered table
func RenderDeviceTable(result *discovery.ScanResult, width int) string {
	if result == nil {
		return ""
	}

	rows := make([][]string, 0, len(result.Devices))
	for _, d := range result.Devices {
		rows = append(rows, DeviceRow(d))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Headers(DeviceColumns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if row < 0 || row >= len(result.Devices) {
				return TableCellStyle
			}
			switch col {
			case colLatency:
				return LatencyStyle(result.Devices[row].Latency)
			case colRole:
				return TableRoleStyle
			default:
				return TableCellStyle
			}
		})

	if width >= MinTerminalWidth {
		t = t.Width(width)
	}

	return t.Render()
}

// RenderScanSummary renders the success (or, for a cancelled scan, warning)
// box shown after the device table
func RenderScanSummary(result *discovery.ScanResult, width int) string {
	details := []Param{
		{Key: "Subnet", Value: result.Subnet},
		{Key: "Devices", Value: fmt.Sprintf("%d", len(result.Devices))},
		{Key: "Duration", Value: result.Duration.Round(time.Millisecond).String()},
	}

	if result.Partial {
		return NewWarningResult("Scan cancelled, results are partial", details...).SetWidth(width).Render()
	}
	return NewSuccessResult("Scan complete", details...).SetWidth(width).Render()
}

// FormatRegression renders a regression as a single plain line
func FormatRegression(r discovery.Regression) string {
	return fmt.Sprintf("%s  %s → %s", r.Address, r.Previous, r.Current)
}

// RenderRegressions renders latency regressions in a warning box
func RenderRegressions(regs []discovery.Regression, width int) string {
	if len(regs) == 0 {
		return ""
	}

	lines := []string{
		StepRunningStyle.Bold(true).Render(fmt.Sprintf("%s  Latency increased", WarningMarker)),
		"",
	}
	for _, r := range regs {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+FormatRegression(r)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(WarningColor).
		Width(width-4).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}
