package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/lanscan/internal/discovery"
)

// Messages forwarded from the scanner's callbacks
type stateMsg struct {
	from, to discovery.State
}

type progressMsg struct {
	done, total int
}

type regressionMsg struct {
	regression discovery.Regression
}

// feedBuffer holds enough events for a full sweep's regressions
const feedBuffer = 512

// Feed carries scanner callbacks into the Bubble Tea event loop. Pass its
// methods as the discovery.Config hooks.
type Feed struct {
	ch chan tea.Msg
}

// NewFeed creates a feed
func NewFeed() *Feed {
	return &Feed{ch: make(chan tea.Msg, feedBuffer)}
}

// OnStateChange is a discovery.Config.OnStateChange hook
func (f *Feed) OnStateChange(from, to discovery.State) {
	f.send(stateMsg{from: from, to: to})
}

// OnProgress is a discovery.Config.OnProgress hook
func (f *Feed) OnProgress(done, total int) {
	f.send(progressMsg{done: done, total: total})
}

// OnRegression is a discovery.Config.OnRegression hook
func (f *Feed) OnRegression(r discovery.Regression) {
	f.send(regressionMsg{regression: r})
}

// send never blocks the scanner; events are dropped once the program has
// stopped draining the feed.
func (f *Feed) send(msg tea.Msg) {
	select {
	case f.ch <- msg:
	default:
	}
}

// wait returns a command that delivers the next feed event
func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		return <-f.ch
	}
}
