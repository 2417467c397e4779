//go:build !linux

package hwaddr

import (
	"context"
	"errors"

	"github.com/muurk/lanscan/internal/sysexec"
)

func systemTable(runner sysexec.Runner) func(ctx context.Context) (string, error) {
	if runner == nil {
		return func(context.Context) (string, error) {
			return "", errors.New("no command runner for arp")
		}
	}
	return arpCommand(runner)
}
