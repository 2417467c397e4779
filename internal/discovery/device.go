package discovery

import (
	"fmt"
	"time"

	"github.com/muurk/lanscan/internal/probe"
)

// Role tells the gateway and the scanning host apart from ordinary hosts.
type Role string

const (
	RoleGateway Role = "gateway"
	RoleLocal   Role = "local"
	RoleHost    Role = "host"
)

// Label returns the short caption shown next to a device in listings.
func (r Role) Label() string {
	switch r {
	case RoleGateway:
		return "Router"
	case RoleLocal:
		return "This Device"
	default:
		return ""
	}
}

// Device is one profiled host on the local subnet
type Device struct {
	// Address is the IPv4 address (e.g., "192.168.1.10")
	Address string `json:"address"`

	// Name is the resolved host name, or identity.Unknown
	Name string `json:"name"`

	// Latency is the sampled round trip or a timed-out/error sentinel
	Latency probe.Latency `json:"latency"`

	// HardwareAddress is 12 uppercase hex digits, hwaddr.NotFound or
	// "Error: <detail>"
	HardwareAddress string `json:"hardware_address"`

	// Role marks the gateway and the local host
	Role Role `json:"role"`

	// ScannedAt is when profiling of this device finished
	ScannedAt time.Time `json:"scanned_at"`
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s (%s) %s [%s]", d.Address, d.Name, d.Latency, d.HardwareAddress)
}

// ScanResult is the ordered outcome of one sweep. Devices[0] is the
// gateway, Devices[1] the local host, and the rest follow in ascending
// address order.
type ScanResult struct {
	Devices []Device `json:"devices"`

	Gateway string `json:"gateway"`
	Local   string `json:"local"`
	// Subnet is the swept network in CIDR form (e.g., "192.168.1.0/24")
	Subnet string `json:"subnet"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Partial is set when the sweep was cancelled before every address was
	// probed.
	Partial bool `json:"partial"`
}

// Find returns the device with the given address.
func (r *ScanResult) Find(addr string) (Device, bool) {
	if r == nil {
		return Device{}, false
	}
	for _, d := range r.Devices {
		if d.Address == addr {
			return d, true
		}
	}
	return Device{}, false
}

// Hosts returns the devices discovered by the sweep, without the gateway
// and local host entries.
func (r *ScanResult) Hosts() []Device {
	if r == nil || len(r.Devices) <= 2 {
		return nil
	}
	return r.Devices[2:]
}
