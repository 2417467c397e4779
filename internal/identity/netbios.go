package identity

import (
	"bufio"
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/muurk/lanscan/internal/sysexec"
)

// NetBIOSSource queries a host's NetBIOS name table through the platform's
// node-status tool.
type NetBIOSSource struct {
	Runner sysexec.Runner
	// GOOS selects the command. Default: runtime.GOOS
	GOOS string
	// Command overrides the platform tool. It is invoked as "<Command> -A <addr>".
	Command string
}

// NewNetBIOSSource creates a NetBIOSSource for the running platform.
func NewNetBIOSSource(runner sysexec.Runner) *NetBIOSSource {
	return &NetBIOSSource{Runner: runner, GOOS: runtime.GOOS}
}

func (s *NetBIOSSource) command(addr string) (string, []string) {
	if s.Command != "" {
		return s.Command, []string{"-A", addr}
	}
	if s.GOOS == "windows" {
		return "nbtstat", []string{"-A", addr}
	}
	return "nmblookup", []string{"-A", addr}
}

// LookupName implements NameSource.
func (s *NetBIOSSource) LookupName(ctx context.Context, addr string) (string, error) {
	name, args := s.command(addr)
	out, err := s.Runner.Run(ctx, name, args...)
	if err != nil {
		return "", fmt.Errorf("netbios query: %w", err)
	}

	if n, ok := ParseNetBIOS(out); ok {
		return n, nil
	}
	return "", ErrNoName
}

// ParseNetBIOS extracts the host name from nbtstat or nmblookup node-status
// output. The first line with a <20> suffix, or a <00> suffix on a non-GROUP
// record, wins.
func ParseNetBIOS(output string) (string, bool) {
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		line := sc.Text()

		fileServer := strings.Contains(line, "<20>")
		unique := strings.Contains(line, "<00>") && !strings.Contains(line, "GROUP")
		if !fileServer && !unique {
			continue
		}

		idx := strings.Index(line, "<")
		name := strings.TrimSpace(line[:idx])
		if name != "" {
			return name, true
		}
	}
	return "", false
}
