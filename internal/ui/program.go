package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muurk/lanscan/internal/discovery"
)

// Printer provides methods for printing UI components to a writer.
// This is the primary way non-interactive commands output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
}

// PrintDevices prints the device table for a scan
func (p *Printer) PrintDevices(result *discovery.ScanResult) {
	p.Println(RenderDeviceTable(result, p.width))
}

// PrintSummary prints the scan summary box
func (p *Printer) PrintSummary(result *discovery.ScanResult) {
	p.Println(RenderScanSummary(result, p.width))
}

// PrintRegressions prints latency regressions, if any
func (p *Printer) PrintRegressions(regs []discovery.Regression) {
	if len(regs) == 0 {
		return
	}
	p.Println(RenderRegressions(regs, p.width))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintJSON writes v as indented JSON
func (p *Printer) PrintJSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
