package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/ui"
)

// DefaultInterval is the time between automatic rescans
const DefaultInterval = 6 * time.Second

// ScanFunc runs one scan
type ScanFunc func(ctx context.Context) (*discovery.ScanResult, error)

// Messages for async operations
type tickMsg time.Time

type scanCompleteMsg struct {
	result *discovery.ScanResult
	err    error
}

// watchKeyMap defines key bindings for the watch screen
type watchKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Rescan key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Rescan, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Rescan, k.Help, k.Quit},
	}
}

// Model is the live watch screen. It rescans on a fixed interval and on
// demand, keeps the latest device table and lists latency regressions.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	scan     ScanFunc
	feed     *Feed
	interval time.Duration

	// Scan state
	Scanning    bool
	Scans       int // Scans started
	State       discovery.State
	Done        int
	Total       int
	Result      *discovery.ScanResult
	Err         error
	LastScan    time.Time
	Regressions []discovery.Regression

	// UI state
	Width       int
	Height      int
	Table       table.Model
	Spinner     spinner.Model
	ProgressBar progress.Model
	Help        help.Model
	Keys        watchKeyMap
}

// New creates a watch model. feed may be nil when the scanner was built
// without the feed's hooks.
func New(ctx context.Context, scan ScanFunc, feed *Feed, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	t := table.New(
		table.WithColumns(columns(MinTerminalWidth)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(TextColor).
		Background(PrimaryColor)
	t.SetStyles(styles)

	keys := watchKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}

	return Model{
		ctx:         ctx,
		cancel:      cancel,
		scan:        scan,
		feed:        feed,
		interval:    interval,
		Table:       t,
		Spinner:     s,
		ProgressBar: bar,
		Help:        help.New(),
		Keys:        keys,
	}
}

// columns sizes the device table for the available width
func columns(width int) []table.Column {
	// ADDRESS, LATENCY, HARDWARE ADDRESS and ROLE are fixed; NAME takes the rest
	fixed := []int{15, 0, 18, 17, 11}
	name := width - (15 + 18 + 17 + 11) - 12
	if name < 12 {
		name = 12
	}
	fixed[1] = name

	cols := make([]table.Column, len(ui.DeviceColumns))
	for i, title := range ui.DeviceColumns {
		cols[i] = table.Column{Title: title, Width: fixed[i]}
	}
	return cols
}

// Init starts the first scan and the rescan timer
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		func() tea.Msg { return tickMsg(time.Now()) },
		m.Spinner.Tick,
	}
	if m.feed != nil {
		cmds = append(cmds, m.feed.wait())
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// startScan launches a scan unless one is already running
func (m Model) startScan() (Model, tea.Cmd) {
	if m.Scanning {
		return m, nil
	}
	m.Scanning = true
	m.Scans++
	m.Done, m.Total = 0, 0

	ctx, scan := m.ctx, m.scan
	return m, func() tea.Msg {
		result, err := scan(ctx)
		return scanCompleteMsg{result: result, err: err}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Rescan):
			return m.startScan()
		case key.Matches(msg, m.Keys.Help):
			m.Help.ShowAll = !m.Help.ShowAll
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.resize()
		return m, nil

	case tickMsg:
		// Overlapping triggers are ignored; the timer keeps running
		m, cmd = m.startScan()
		return m, tea.Batch(cmd, m.tick())

	case scanCompleteMsg:
		m.Scanning = false
		m.LastScan = time.Now()
		m.Err = msg.err
		if errors.Is(msg.err, context.Canceled) {
			m.Err = nil
		}
		if msg.result != nil {
			m.Result = msg.result
			rows := make([]table.Row, 0, len(msg.result.Devices))
			for _, d := range msg.result.Devices {
				rows = append(rows, table.Row(ui.DeviceRow(d)))
			}
			m.Table.SetRows(rows)
		}
		return m, nil

	case stateMsg:
		m.State = msg.to
		return m, m.feed.wait()

	case progressMsg:
		m.Done, m.Total = msg.done, msg.total
		return m, m.feed.wait()

	case regressionMsg:
		m.Regressions = append([]discovery.Regression{msg.regression}, m.Regressions...)
		if len(m.Regressions) > MaxRegressions {
			m.Regressions = m.Regressions[:MaxRegressions]
		}
		return m, m.feed.wait()

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

// resize fits the table into the current terminal
func (m *Model) resize() {
	width := m.contentWidth()
	if m.sidePanel() {
		width -= SidePanelWidth + 1
	}
	m.Table.SetColumns(columns(width))
	m.Table.SetWidth(width)

	// header, status line, table header, footer and borders
	height := m.Height - 12
	if height < 3 {
		height = 3
	}
	m.Table.SetHeight(height)
}

func (m Model) contentWidth() int {
	width := m.Width - 4
	if width < MinTerminalWidth-4 {
		width = MinTerminalWidth - 4
	}
	if width > MaxContentWidth {
		width = MaxContentWidth
	}
	return width
}

// sidePanel reports whether regressions fit beside the table
func (m Model) sidePanel() bool {
	return m.Width >= 120
}

// View renders the watch screen
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n")
		for _, tip := range ui.TroubleshootingFor(m.Err) {
			b.WriteString(SubtitleStyle.Render("  • " + tip))
			b.WriteString("\n")
		}
	}

	body := m.Table.View()
	if panel := m.renderRegressions(); panel != "" {
		if m.sidePanel() {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", panel)
		} else {
			body = lipgloss.JoinVertical(lipgloss.Left, body, panel)
		}
	}
	b.WriteString(body)

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}

// renderStatus renders the line above the table
func (m Model) renderStatus() string {
	subnet := "local subnet"
	if m.Result != nil && m.Result.Subnet != "" {
		subnet = m.Result.Subnet
	}

	if m.Scanning {
		line := fmt.Sprintf("%s Scanning %s", m.Spinner.View(), subnet)
		if m.State != discovery.StateIdle {
			line += "  " + SubtitleStyle.Render(m.State.String())
		}
		if m.Total > 0 {
			line += "  " + m.ProgressBar.ViewAs(float64(m.Done)/float64(m.Total)) +
				fmt.Sprintf(" %d/%d", m.Done, m.Total)
		}
		return StatusStyle.Render(line)
	}

	if m.LastScan.IsZero() {
		return StatusStyle.Render("Waiting for first scan")
	}

	devices := 0
	if m.Result != nil {
		devices = len(m.Result.Devices)
	}
	return StatusStyle.Render(fmt.Sprintf("%s  %s  %s",
		TitleStyle.Render(subnet),
		fmt.Sprintf("%d devices", devices),
		SubtitleStyle.Render(fmt.Sprintf("last scan %s, every %s", m.LastScan.Format("15:04:05"), m.interval)),
	))
}

// renderRegressions renders the recent latency regressions panel
func (m Model) renderRegressions() string {
	if len(m.Regressions) == 0 {
		return ""
	}

	lines := []string{PanelTitleStyle.Render("⚠ Latency increased"), ""}
	for _, r := range m.Regressions {
		lines = append(lines, PanelItemStyle.Render(ui.FormatRegression(r)))
	}

	style := PanelStyle
	if m.sidePanel() {
		style = style.Width(SidePanelWidth - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}
