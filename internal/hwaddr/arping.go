package hwaddr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/j-keck/arping"
)

// DefaultARPTimeout bounds one active ARP request.
const DefaultARPTimeout = 500 * time.Millisecond

var setARPTimeout sync.Once

// ArpingSource sends an ARP who-has for the target.
type ArpingSource struct {
	// Interface pins requests to one interface. Empty lets arping pick.
	Interface string
}

// NewArpingSource creates an ArpingSource. The arping timeout is global to
// the library, so only the first call's timeout takes effect.
func NewArpingSource(iface string, timeout time.Duration) *ArpingSource {
	if timeout <= 0 {
		timeout = DefaultARPTimeout
	}
	setARPTimeout.Do(func() {
		arping.SetTimeout(timeout)
	})
	return &ArpingSource{Interface: iface}
}

// LookupHardware implements Source.
func (s *ArpingSource) LookupHardware(ctx context.Context, addr string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ip := net.ParseIP(addr).To4()
	if ip == nil {
		return "", fmt.Errorf("invalid IPv4 address %q", addr)
	}

	var (
		mac net.HardwareAddr
		err error
	)
	if s.Interface != "" {
		mac, _, err = arping.PingOverIfaceByName(ip, s.Interface)
	} else {
		mac, _, err = arping.Ping(ip)
	}
	if errors.Is(err, arping.ErrTimeout) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}

	normalized := Normalize(mac.String())
	if allZero(normalized) {
		return "", ErrNotFound
	}
	return normalized, nil
}
