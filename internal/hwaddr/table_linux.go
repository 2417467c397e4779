//go:build linux

package hwaddr

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/muurk/lanscan/internal/sysexec"
)

// procARP is the kernel's IPv4 neighbor table.
const procARP = "/proc/net/arp"

func systemTable(runner sysexec.Runner) func(ctx context.Context) (string, error) {
	fallback := arpCommand(runner)
	return func(ctx context.Context) (string, error) {
		data, err := os.ReadFile(procARP)
		if errors.Is(err, fs.ErrNotExist) && runner != nil {
			return fallback(ctx)
		}
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
