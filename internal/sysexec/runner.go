// Package sysexec runs the external tools lanscan scrapes for neighbor and
// NetBIOS data (arp, nbtstat, nmblookup) behind a small interface so the
// parsers can be tested against canned output.
package sysexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/muurk/lanscan/internal/logging"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every external command.
const DefaultTimeout = 5 * time.Second

// Runner executes a program and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct {
	// Timeout is the maximum time a single command may run.
	// Default: DefaultTimeout
	Timeout time.Duration

	logger *zap.Logger
}

// NewExecRunner creates a runner with the given timeout. A nil logger uses
// the package-global logger.
func NewExecRunner(timeout time.Duration, logger *zap.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.Named("sysexec")
	}
	return &ExecRunner{
		Timeout: timeout,
		logger:  logger,
	}
}

// Run executes name with args and returns stdout. A non-zero exit status
// yields a *CommandError that still carries stderr; a deadline overrun
// yields a *TimeoutError.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.CommandContext(timeoutCtx, name, args...)
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = &TimeoutError{
			Command: name,
			Timeout: timeout.String(),
		}
	} else if err != nil {
		err = &CommandError{
			Command:  name,
			ExitCode: exitCode,
			Stderr:   stderrBuf.String(),
			Err:      err,
		}
	}

	r.logger.Debug("external command",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Duration("duration", duration),
		zap.Int("exit_code", exitCode),
		zap.Int("stdout_size", stdoutBuf.Len()),
		zap.Error(err),
	)

	return stdoutBuf.String(), err
}
