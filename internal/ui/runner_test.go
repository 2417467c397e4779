package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/muurk/lanscan/internal/discovery"
)

func TestProgress_Transition(t *testing.T) {
	p := NewProgress("")

	tests := []struct {
		from, to    discovery.State
		wantChanged []int
		wantStatus  map[int]StepStatus
	}{
		{discovery.StateIdle, discovery.StateEnumerating, []int{1}, map[int]StepStatus{1: StepRunning}},
		{discovery.StateEnumerating, discovery.StateProbingPrimary, []int{1, 2}, map[int]StepStatus{1: StepComplete, 2: StepRunning}},
		{discovery.StateProbingPrimary, discovery.StateSweepingRemainder, []int{2, 3}, map[int]StepStatus{2: StepComplete, 3: StepRunning}},
		{discovery.StateSweepingRemainder, discovery.StateFailed, []int{3}, map[int]StepStatus{3: StepFailed, 4: StepPending}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			got := p.Transition(tt.from, tt.to)
			if fmt.Sprint(got) != fmt.Sprint(tt.wantChanged) {
				t.Errorf("Transition() = %v, want %v", got, tt.wantChanged)
			}
			for n, status := range tt.wantStatus {
				if p.Steps[n-1].Status != status {
					t.Errorf("step %d status = %v, want %v", n, p.Steps[n-1].Status, status)
				}
			}
		})
	}
}

func TestProgress_SetSweep(t *testing.T) {
	p := NewProgress("")
	p.SetSweep(63, 252)

	if p.Percent != 0.25 {
		t.Errorf("Percent = %v, want 0.25", p.Percent)
	}
	if msg := p.Steps[stepFor(discovery.StateSweepingRemainder)-1].Message; msg != "63/252 addresses" {
		t.Errorf("sweep message = %q", msg)
	}
	if !strings.Contains(p.RenderBar(), "[63/252]") {
		t.Errorf("RenderBar() = %q", p.RenderBar())
	}
}

func TestScanRunner_Run(t *testing.T) {
	var buf bytes.Buffer
	runner := NewScanRunner(ScanRunnerConfig{
		Title:   "LAN Scan",
		Command: "lanscan scan",
		Params:  []Param{{Key: "Workers", Value: "64"}},
		Output:  &buf,
	}).SetWidth(120)

	result, err := runner.Run(context.Background(), func(ctx context.Context) (*discovery.ScanResult, error) {
		runner.OnStateChange(discovery.StateIdle, discovery.StateEnumerating)
		runner.OnStateChange(discovery.StateEnumerating, discovery.StateProbingPrimary)
		runner.OnStateChange(discovery.StateProbingPrimary, discovery.StateSweepingRemainder)
		runner.OnProgress(252, 252)
		runner.OnRegression(discovery.Regression{Address: "192.168.1.30"})
		runner.OnStateChange(discovery.StateSweepingRemainder, discovery.StateMerged)
		runner.OnStateChange(discovery.StateMerged, discovery.StateDone)
		return sampleResult(), nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result == nil || len(result.Devices) != 3 {
		t.Fatalf("Run() result = %+v", result)
	}

	out := buf.String()
	for _, want := range []string{"LAN SCAN", "lanscan scan", "Sweeping subnet", "192.168.1.30", "Latency increased", "Scan complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\r") {
		t.Error("non-live output contains carriage returns")
	}
}

func TestScanRunner_RunFailure(t *testing.T) {
	var buf bytes.Buffer
	runner := NewScanRunner(ScanRunnerConfig{Title: "LAN Scan", Command: "lanscan scan", Output: &buf}).SetWidth(100)

	_, err := runner.Run(context.Background(), func(ctx context.Context) (*discovery.ScanResult, error) {
		return nil, discovery.ErrNoGateway
	})
	if !errors.Is(err, discovery.ErrNoGateway) {
		t.Fatalf("Run() error = %v, want ErrNoGateway", err)
	}

	out := buf.String()
	if !strings.Contains(out, "FAILED") || !strings.Contains(out, "default route") {
		t.Errorf("failure output missing box or tips\n%s", out)
	}
}

func TestTroubleshootingFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no gateway", discovery.ErrNoGateway, "default route"},
		{"wrapped no local", fmt.Errorf("enumerate: %w", discovery.ErrNoLocalAddress), "IPv4 address"},
		{"no subnet", discovery.ErrNoSubnet, "/24"},
		{"in progress", discovery.ErrScanInProgress, "running scan"},
		{"other", errors.New("socket: permission denied"), "--privileged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips := TroubleshootingFor(tt.err)
			if !strings.Contains(strings.Join(tips, "\n"), tt.want) {
				t.Errorf("TroubleshootingFor(%v) = %v, want a tip containing %q", tt.err, tips, tt.want)
			}
		})
	}
}
