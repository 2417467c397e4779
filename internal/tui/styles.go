package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lanscan/internal/version"
)

// Application branding constants
const (
	AppName   = "LANSCAN"
	GitHubURL = "github.com/muurk/lanscan"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72  // Minimum supported terminal width
	MaxContentWidth  = 160 // Maximum content width before capping
	SidePanelWidth   = 38  // Regressions panel width when shown beside the table
	MaxRegressions   = 20  // Regressions kept for display
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor   = lipgloss.Color("#FFFFFF") // White
	SubtleColor = lipgloss.Color("#626262") // Gray
	BorderColor = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

// Common styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor)

	// Regressions side panel
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(WarningColor).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	PanelItemStyle = lipgloss.NewStyle().
			Foreground(TextColor)
)

// RenderError renders an error message
func RenderError(text string) string {
	return ErrorStyle.Render("✗ " + text)
}

// BuildHeaderContent creates header content with app name and GitHub URL
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(GitHubURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

// BuildFooterContent creates footer content with help text
func BuildFooterContent(helpText string) string {
	return lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(helpText)
}

// RenderApplicationContainer wraps a screen in the full-screen panel with
// the application header and a context-sensitive footer.
//
//	func (m Model) View() string {
//	    return RenderApplicationContainer(m.content(), m.Help.View(m.Keys), m.Width, m.Height)
//	}
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4). // Leave room for outer border
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 4)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent()),
		contentStyle.Render(content),
		footerStyle.Render(BuildFooterContent(footerText)),
	)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		AlignVertical(lipgloss.Top)
	if terminalHeight > 2 {
		borderStyle = borderStyle.Height(terminalHeight - 2)
	}

	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Left,
		lipgloss.Top,
		borderStyle.Render(inner),
	)
}
