package sysexec

import (
	"fmt"
	"strings"
)

// CommandError represents a failed external command: it could not start,
// or it exited with a non-zero status.
type CommandError struct {
	// Command is the program name that was executed
	Command string
	// ExitCode is the process exit code, -1 when the process never started
	ExitCode int
	// Stderr is the captured standard error output
	Stderr string
	// Underlying error if any
	Err error
}

func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	switch {
	case e.Err != nil && stderr != "":
		return fmt.Sprintf("%s failed (exit code %d): %v: %s", e.Command, e.ExitCode, e.Err, stderr)
	case e.Err != nil:
		return fmt.Sprintf("%s failed (exit code %d): %v", e.Command, e.ExitCode, e.Err)
	case stderr != "":
		return fmt.Sprintf("%s failed (exit code %d): %s", e.Command, e.ExitCode, stderr)
	default:
		return fmt.Sprintf("%s failed (exit code %d)", e.Command, e.ExitCode)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a command killed because it ran past its deadline.
type TimeoutError struct {
	// Command is the program name that timed out
	Command string
	// Timeout is the configured limit
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Command, e.Timeout)
}
