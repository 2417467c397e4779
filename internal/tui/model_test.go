package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/probe"
)

func testResult() *discovery.ScanResult {
	return &discovery.ScanResult{
		Subnet: "192.168.1.0/24",
		Devices: []discovery.Device{
			{Address: "192.168.1.1", Name: "router.lan", Latency: probe.MeasuredLatency(2 * time.Millisecond), HardwareAddress: "AABBCCDDEEFF", Role: discovery.RoleGateway},
			{Address: "192.168.1.20", Name: "laptop", Latency: probe.MeasuredLatency(0), HardwareAddress: "112233445566", Role: discovery.RoleLocal},
			{Address: "192.168.1.30", Name: "Unknown", Latency: probe.TimedOutLatency(), HardwareAddress: "not found", Role: discovery.RoleHost},
		},
	}
}

func newTestModel(scan ScanFunc) Model {
	if scan == nil {
		scan = func(ctx context.Context) (*discovery.ScanResult, error) { return testResult(), nil }
	}
	return New(context.Background(), scan, NewFeed(), time.Second)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return nm, cmd
}

func TestModel_TickStartsScan(t *testing.T) {
	m := newTestModel(nil)

	m, cmd := update(t, m, tickMsg(time.Now()))
	if !m.Scanning || m.Scans != 1 {
		t.Fatalf("after tick Scanning=%v Scans=%d, want true/1", m.Scanning, m.Scans)
	}
	if cmd == nil {
		t.Fatal("tick returned no command")
	}

	// A second trigger while scanning is ignored
	m, _ = update(t, m, tickMsg(time.Now()))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.Scans != 1 {
		t.Errorf("Scans = %d after overlapping triggers, want 1", m.Scans)
	}
}

func TestModel_ScanComplete(t *testing.T) {
	m := newTestModel(nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, tickMsg(time.Now()))

	m, _ = update(t, m, scanCompleteMsg{result: testResult()})
	if m.Scanning {
		t.Error("Scanning still true after completion")
	}
	if got := len(m.Table.Rows()); got != 3 {
		t.Fatalf("table rows = %d, want 3", got)
	}
	if row := m.Table.Rows()[0]; row[0] != "192.168.1.1" || row[4] != "Router" {
		t.Errorf("first row = %v", row)
	}

	view := m.View()
	for _, want := range []string{"192.168.1.0/24", "3 devices", "router.lan"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	// r starts another scan once idle
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if m.Scans != 2 {
		t.Errorf("Scans = %d after rescan, want 2", m.Scans)
	}
}

func TestModel_ScanError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"no gateway", discovery.ErrNoGateway, true},
		{"cancelled", context.Canceled, false},
		{"wrapped cancel", errors.Join(errors.New("scan"), context.Canceled), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(nil)
			m, _ = update(t, m, scanCompleteMsg{err: tt.err})
			if (m.Err != nil) != tt.wantErr {
				t.Errorf("Err = %v, wantErr %v", m.Err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(m.View(), "default route") {
				t.Error("View() missing troubleshooting tips")
			}
		})
	}
}

func TestModel_FeedMessages(t *testing.T) {
	m := newTestModel(nil)

	m, cmd := update(t, m, stateMsg{from: discovery.StateProbingPrimary, to: discovery.StateSweepingRemainder})
	if m.State != discovery.StateSweepingRemainder || cmd == nil {
		t.Errorf("State = %v, cmd nil = %v", m.State, cmd == nil)
	}

	m, _ = update(t, m, progressMsg{done: 10, total: 252})
	if m.Done != 10 || m.Total != 252 {
		t.Errorf("progress = %d/%d, want 10/252", m.Done, m.Total)
	}

	for i := 0; i < MaxRegressions+5; i++ {
		m, _ = update(t, m, regressionMsg{regression: discovery.Regression{Address: "192.168.1.30"}})
	}
	if len(m.Regressions) != MaxRegressions {
		t.Errorf("Regressions = %d, want %d", len(m.Regressions), MaxRegressions)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(nil)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quit did not cancel the scan context")
	}
}

func TestFeed_DoesNotBlock(t *testing.T) {
	f := NewFeed()
	for i := 0; i < feedBuffer+10; i++ {
		f.OnProgress(i, feedBuffer+10)
	}
	if len(f.ch) != feedBuffer {
		t.Errorf("buffered = %d, want %d", len(f.ch), feedBuffer)
	}

	msg := f.wait()()
	if p, ok := msg.(progressMsg); !ok || p.done != 0 {
		t.Errorf("first message = %#v", msg)
	}
}

func TestColumns(t *testing.T) {
	for _, width := range []int{40, 100, 200} {
		cols := columns(width)
		if len(cols) != 5 {
			t.Fatalf("columns(%d) = %d columns", width, len(cols))
		}
		if cols[1].Width < 12 {
			t.Errorf("columns(%d) name width = %d, want >= 12", width, cols[1].Width)
		}
	}
}
