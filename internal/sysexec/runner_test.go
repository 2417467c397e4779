package sysexec

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestNewExecRunner_Defaults(t *testing.T) {
	r := NewExecRunner(0, zap.NewNop())
	if r.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", r.Timeout, DefaultTimeout)
	}
}

func TestExecRunner_Run(t *testing.T) {
	skipOnWindows(t)

	r := NewExecRunner(2*time.Second, zap.NewNop())
	out, err := r.Run(context.Background(), "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("Run() = %q, want %q", out, "hello")
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	r := NewExecRunner(2*time.Second, zap.NewNop())
	out, err := r.Run(context.Background(), "sh", "-c", "echo partial; echo broken >&2; exit 3")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if !strings.Contains(cmdErr.Stderr, "broken") {
		t.Errorf("Stderr = %q, want it to contain %q", cmdErr.Stderr, "broken")
	}
	if !strings.Contains(out, "partial") {
		t.Errorf("stdout = %q, want partial output preserved", out)
	}
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(time.Second, zap.NewNop())
	_, err := r.Run(context.Background(), "lanscan-definitely-not-installed")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", cmdErr.ExitCode)
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	skipOnWindows(t)

	r := NewExecRunner(50*time.Millisecond, zap.NewNop())
	_, err := r.Run(context.Background(), "sleep", "2")

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Run() error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Command != "sleep" {
		t.Errorf("Command = %q, want sleep", timeoutErr.Command)
	}
}

func TestCommandError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CommandError
		want string
	}{
		{
			name: "exit code only",
			err:  &CommandError{Command: "arp", ExitCode: 1},
			want: "arp failed (exit code 1)",
		},
		{
			name: "with stderr",
			err:  &CommandError{Command: "nmblookup", ExitCode: 1, Stderr: "No reply\n"},
			want: "nmblookup failed (exit code 1): No reply",
		},
		{
			name: "with wrapped error",
			err:  &CommandError{Command: "nbtstat", ExitCode: -1, Err: errors.New("not found")},
			want: "nbtstat failed (exit code -1): not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
