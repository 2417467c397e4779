package netinfo

import (
	"context"
	"errors"
	"net"
	"testing"

	"go.uber.org/zap"
)

type fakeSystem struct {
	ifaces  []net.Interface
	addrs   map[string][]net.Addr
	gateway net.IP
	gwErr   error
}

func (f *fakeSystem) enumerator() *Enumerator {
	e := NewEnumerator(zap.NewNop())
	e.Interfaces = func() ([]net.Interface, error) { return f.ifaces, nil }
	e.Addrs = func(iface net.Interface) ([]net.Addr, error) { return f.addrs[iface.Name], nil }
	e.Gateway = func() (net.IP, error) { return f.gateway, f.gwErr }
	return e
}

func ipNet(cidr string) net.Addr {
	ip, n, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	n.IP = ip
	return n
}

func mustMAC(s string) net.HardwareAddr {
	mac, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

func TestEnumerator_Enumerate(t *testing.T) {
	up := net.FlagUp | net.FlagBroadcast

	tests := []struct {
		name          string
		sys           *fakeSystem
		wantGateway   string
		wantLocal     string
		wantInterface string
		wantHex       string
	}{
		{
			name: "single interface",
			sys: &fakeSystem{
				ifaces: []net.Interface{
					{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
					{Name: "eth0", Flags: up, HardwareAddr: mustMAC("00:1a:2b:3c:4d:5e")},
				},
				addrs: map[string][]net.Addr{
					"lo":   {ipNet("127.0.0.1/8")},
					"eth0": {ipNet("fe80::1/64"), ipNet("192.168.1.42/24")},
				},
				gateway: net.ParseIP("192.168.1.1"),
			},
			wantGateway:   "192.168.1.1",
			wantLocal:     "192.168.1.42",
			wantInterface: "eth0",
			wantHex:       "001A2B3C4D5E",
		},
		{
			name: "down interface skipped",
			sys: &fakeSystem{
				ifaces: []net.Interface{
					{Name: "eth0", Flags: net.FlagBroadcast},
					{Name: "wlan0", Flags: up, HardwareAddr: mustMAC("aa:bb:cc:dd:ee:ff")},
				},
				addrs: map[string][]net.Addr{
					"eth0":  {ipNet("10.0.0.5/24")},
					"wlan0": {ipNet("192.168.0.7/24")},
				},
				gateway: net.ParseIP("192.168.0.1"),
			},
			wantGateway:   "192.168.0.1",
			wantLocal:     "192.168.0.7",
			wantInterface: "wlan0",
			wantHex:       "AABBCCDDEEFF",
		},
		{
			name: "interface on gateway subnet preferred",
			sys: &fakeSystem{
				ifaces: []net.Interface{
					{Name: "docker0", Flags: up},
					{Name: "eth0", Flags: up, HardwareAddr: mustMAC("00:11:22:33:44:55")},
				},
				addrs: map[string][]net.Addr{
					"docker0": {ipNet("172.17.0.1/16")},
					"eth0":    {ipNet("192.168.1.42/24")},
				},
				gateway: net.ParseIP("192.168.1.1"),
			},
			wantGateway:   "192.168.1.1",
			wantLocal:     "192.168.1.42",
			wantInterface: "eth0",
			wantHex:       "001122334455",
		},
		{
			name: "first found wins without gateway",
			sys: &fakeSystem{
				ifaces: []net.Interface{
					{Name: "eth0", Flags: up},
					{Name: "eth1", Flags: up},
				},
				addrs: map[string][]net.Addr{
					"eth0": {ipNet("10.0.0.5/24")},
					"eth1": {ipNet("10.0.1.5/24")},
				},
				gwErr: errors.New("no default route"),
			},
			wantGateway:   "",
			wantLocal:     "10.0.0.5",
			wantInterface: "eth0",
		},
		{
			name: "nothing usable",
			sys: &fakeSystem{
				ifaces: []net.Interface{
					{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
				},
				addrs: map[string][]net.Addr{
					"lo": {ipNet("127.0.0.1/8")},
				},
				gwErr: errors.New("no default route"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.sys.enumerator().Enumerate(context.Background())

			if info.Gateway != tt.wantGateway {
				t.Errorf("Gateway = %q, want %q", info.Gateway, tt.wantGateway)
			}
			if info.Local != tt.wantLocal {
				t.Errorf("Local = %q, want %q", info.Local, tt.wantLocal)
			}
			if info.Interface != tt.wantInterface {
				t.Errorf("Interface = %q, want %q", info.Interface, tt.wantInterface)
			}
			if info.HardwareHex() != tt.wantHex {
				t.Errorf("HardwareHex() = %q, want %q", info.HardwareHex(), tt.wantHex)
			}
		})
	}
}

func TestEnumerator_InterfaceError(t *testing.T) {
	e := NewEnumerator(zap.NewNop())
	e.Interfaces = func() ([]net.Interface, error) { return nil, errors.New("permission denied") }
	e.Gateway = func() (net.IP, error) { return net.ParseIP("192.168.1.1"), nil }

	info := e.Enumerate(context.Background())
	if info.Local != "" {
		t.Errorf("Local = %q, want empty", info.Local)
	}
	if info.Gateway != "192.168.1.1" {
		t.Errorf("Gateway = %q, want 192.168.1.1", info.Gateway)
	}
}
