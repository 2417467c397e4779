// Package netinfo inspects the host's network configuration: the local
// IPv4 address, its hardware address and the default gateway, and derives
// the /24 sweep range from the gateway.
package netinfo

import (
	"context"
	"net"
	"strings"

	"github.com/jackpal/gateway"
	"github.com/muurk/lanscan/internal/logging"
	"go.uber.org/zap"
)

// Info describes the local side of a scan. Empty fields mean the value
// could not be determined; callers treat a missing Gateway or Local as a
// fatal precondition.
type Info struct {
	Gateway      string
	Local        string
	HardwareAddr net.HardwareAddr
	Interface    string
}

// HardwareHex returns the local MAC as uppercase hex without separators,
// or "" when the interface has no hardware address.
func (i Info) HardwareHex() string {
	return strings.ToUpper(strings.ReplaceAll(i.HardwareAddr.String(), ":", ""))
}

// Enumerator discovers Info from the running system. The function fields
// default to the real system calls and are replaced in tests.
type Enumerator struct {
	// Interfaces lists network interfaces. Default: net.Interfaces
	Interfaces func() ([]net.Interface, error)
	// Addrs lists the addresses of one interface. Default: iface.Addrs
	Addrs func(iface net.Interface) ([]net.Addr, error)
	// Gateway returns the default IPv4 gateway. Default: gateway.DiscoverGateway
	Gateway func() (net.IP, error)

	logger *zap.Logger
}

// NewEnumerator creates an Enumerator backed by the operating system.
func NewEnumerator(logger *zap.Logger) *Enumerator {
	if logger == nil {
		logger = logging.Named("netinfo")
	}
	return &Enumerator{
		Interfaces: net.Interfaces,
		Addrs: func(iface net.Interface) ([]net.Addr, error) {
			return iface.Addrs()
		},
		Gateway: gateway.DiscoverGateway,
		logger:  logger,
	}
}

type candidate struct {
	iface net.Interface
	addr  string
}

// Enumerate returns the gateway, the first IPv4 unicast address on an up,
// non-loopback interface, and that interface's hardware address. When an
// interface holds an address in the gateway's /24 it is preferred over
// interfaces enumerated earlier.
func (e *Enumerator) Enumerate(ctx context.Context) Info {
	var info Info

	if ctx.Err() != nil {
		return info
	}

	if e.Gateway != nil {
		gw, err := e.Gateway()
		if err != nil {
			e.logger.Debug("default gateway lookup failed", zap.Error(err))
		} else if gw4 := gw.To4(); gw4 != nil {
			info.Gateway = gw4.String()
		}
	}

	ifaces, err := e.Interfaces()
	if err != nil {
		e.logger.Debug("interface enumeration failed", zap.Error(err))
		return info
	}

	var first *candidate
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := e.Addrs(iface)
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ip4 := addrIPv4(addr)
			if ip4 == nil || ip4.IsLoopback() || ip4.IsLinkLocalUnicast() {
				continue
			}

			c := candidate{iface: iface, addr: ip4.String()}
			if info.Gateway != "" && SameSubnet(c.addr, info.Gateway) {
				return c.fill(info)
			}
			if first == nil {
				first = &c
			}
		}
	}

	if first != nil {
		return first.fill(info)
	}
	return info
}

func (c candidate) fill(info Info) Info {
	info.Local = c.addr
	info.HardwareAddr = c.iface.HardwareAddr
	info.Interface = c.iface.Name
	return info
}

func addrIPv4(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP.To4()
	case *net.IPAddr:
		return v.IP.To4()
	default:
		return nil
	}
}
