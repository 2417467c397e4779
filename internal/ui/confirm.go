package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm displays a warning box and prompts the user to type answer to
// proceed. Returns true if the user confirmed, false otherwise.
func Confirm(in io.Reader, out io.Writer, title string, warnings []string, answer string) bool {
	width := GetTerminalWidth()
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := []string{
		"",
		lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Render(fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, title)),
		"",
	}

	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	_, _ = fmt.Fprintln(out, box)
	_, _ = fmt.Fprintln(out)

	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	_, _ = fmt.Fprint(out, promptStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", answer)))

	input, err := bufio.NewReader(in).ReadString('\n')
	_, _ = fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	if strings.EqualFold(strings.TrimSpace(input), answer) {
		return true
	}

	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	_, _ = fmt.Fprintln(out)
	return false
}

// ConfirmOverwrite asks before replacing an existing configuration file
func ConfirmOverwrite(in io.Reader, out io.Writer, path string) bool {
	return Confirm(in, out,
		"OVERWRITE CONFIGURATION",
		[]string{
			"A configuration file already exists at " + path,
			"It will be replaced with the default configuration",
			"Any customised settings in that file will be lost",
		},
		"yes",
	)
}
