package hwaddr

import (
	"context"
	"os"

	"github.com/muurk/lanscan/internal/sysexec"
)

// TableSource looks addresses up in neighbor table text.
type TableSource struct {
	// Read returns the current table text.
	Read func(ctx context.Context) (string, error)
}

// NewTableSource reads the platform neighbor table. The runner is used on
// platforms where the table is only available through "arp -a".
func NewTableSource(runner sysexec.Runner) *TableSource {
	return &TableSource{Read: systemTable(runner)}
}

// NewFileTableSource reads table text from a file in /proc/net/arp format,
// for hosts that expose the neighbor table at a non-standard path.
func NewFileTableSource(path string) *TableSource {
	return &TableSource{Read: func(context.Context) (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}}
}

// LookupHardware implements Source.
func (s *TableSource) LookupHardware(ctx context.Context, addr string) (string, error) {
	text, err := s.Read(ctx)
	if err != nil {
		return "", err
	}
	if mac, ok := FindHardwareAddress(text, addr); ok {
		return mac, nil
	}
	return "", ErrNotFound
}

func arpCommand(runner sysexec.Runner) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return runner.Run(ctx, "arp", "-a")
	}
}
