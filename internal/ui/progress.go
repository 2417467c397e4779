package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/lanscan/internal/discovery"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
)

// Step represents a single phase of a scan
type Step struct {
	Number  int        // Step number (1-based)
	Name    string     // Step description
	Status  StepStatus // Current status
	Message string     // Optional status message (e.g., "12/252 addresses")
}

// scanSteps maps the coordinator states that do visible work to steps.
var scanSteps = []struct {
	state discovery.State
	name  string
}{
	{discovery.StateEnumerating, "Reading interfaces and gateway"},
	{discovery.StateProbingPrimary, "Profiling gateway and this device"},
	{discovery.StateSweepingRemainder, "Sweeping subnet"},
	{discovery.StateMerged, "Merging results"},
}

// Progress represents a progress display with bar and step list
type Progress struct {
	Label     string  // e.g., "Scanning..."
	Steps     []Step  // List of steps
	Current   int     // Current step (1-based)
	Total     int     // Total steps
	Percent   float64 // Sweep progress (0.0 - 1.0)
	Done      int     // Addresses swept so far
	Swept     int     // Addresses to sweep
	Width     int     // Terminal width
	ShowBar   bool    // Whether to show progress bar
	ShowSteps bool    // Whether to show step list
	bar       progress.Model
}

// NewProgress creates a progress display with one step per scan phase
func NewProgress(label string) *Progress {
	steps := make([]Step, len(scanSteps))
	for i, s := range scanSteps {
		steps[i] = Step{Number: i + 1, Name: s.name, Status: StepPending}
	}

	p := &Progress{
		Label:     label,
		Steps:     steps,
		Total:     len(steps),
		ShowBar:   true,
		ShowSteps: true,
	}
	p.SetWidth(GetTerminalWidth())
	return p
}

// SetWidth sets the terminal width for responsive rendering
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 30 // Leave room for percentage and address count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
	)
	return p
}

// stepFor returns the 1-based step number for a coordinator state, or 0.
func stepFor(state discovery.State) int {
	for i, s := range scanSteps {
		if s.state == state {
			return i + 1
		}
	}
	return 0
}

// Transition records a coordinator state change. It returns the step
// numbers that changed so callers can print them.
func (p *Progress) Transition(from, to discovery.State) []int {
	var changed []int

	if n := stepFor(from); n > 0 {
		status := StepComplete
		if to == discovery.StateFailed {
			status = StepFailed
		}
		p.UpdateStep(n, status, "")
		changed = append(changed, n)
	}
	if n := stepFor(to); n > 0 {
		p.UpdateStep(n, StepRunning, "")
		changed = append(changed, n)
	}
	return changed
}

// SetSweep records how many addresses of the sweep have been probed.
func (p *Progress) SetSweep(done, total int) {
	p.Done, p.Swept = done, total
	if total > 0 {
		p.Percent = float64(done) / float64(total)
	}
	if n := stepFor(discovery.StateSweepingRemainder); n > 0 {
		p.Steps[n-1].Message = fmt.Sprintf("%d/%d addresses", done, total)
	}
}

// UpdateStep updates a specific step's status and optional message
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	idx := stepNumber - 1
	p.Steps[idx].Status = status
	if message != "" {
		p.Steps[idx].Message = message
	}
	if status == StepRunning {
		p.Current = stepNumber
	}
}

// Render returns the styled progress display as a string
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}

	if p.ShowBar {
		b.WriteString(p.RenderBar())
		b.WriteString("\n\n")
	}

	if p.ShowSteps {
		lines := make([]string, 0, len(p.Steps))
		for _, step := range p.Steps {
			lines = append(lines, p.RenderStep(step.Number))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}

	return b.String()
}

// RenderBar renders the sweep progress bar line
func (p *Progress) RenderBar() string {
	barView := p.bar.ViewAs(p.Percent)
	percentStr := fmt.Sprintf("%3.0f%%", p.Percent*100)
	countStr := fmt.Sprintf("[%d/%d]", p.Done, p.Swept)

	return lipgloss.NewStyle().
		PaddingLeft(2).
		Render(fmt.Sprintf("%s  %s  %s", barView, percentStr, countStr))
}

// RenderStep renders a single step line
func (p *Progress) RenderStep(stepNumber int) string {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return ""
	}
	step := p.Steps[stepNumber-1]

	prefix := fmt.Sprintf("  [%d/%d]", step.Number, p.Total)

	var (
		marker    string
		nameStyle lipgloss.Style
	)
	switch step.Status {
	case StepComplete:
		marker, nameStyle = StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		marker, nameStyle = StepMarkerRunning, StepRunningStyle
	case StepFailed:
		marker, nameStyle = FailureMarker, ErrorTitleStyle
	default:
		marker, nameStyle = StepMarkerPending, StepPendingStyle
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(nameStyle.Render(step.Name))

	// Keep the marker at a consistent column
	padding := 40 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(nameStyle.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}

	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}
