package netinfo

import "testing"

func TestSubnetPrefix(t *testing.T) {
	tests := []struct {
		addr   string
		want   string
		wantOK bool
	}{
		{"192.168.1.1", "192.168.1.", true},
		{"10.0.0.254", "10.0.0.", true},
		{"172.16.40.1", "172.16.40.", true},
		{" 192.168.0.1 ", "192.168.0.", true},
		{"192.168.1", "", false},
		{"192.168.1.1.5", "", false},
		{"", "", false},
		{"router.local", "", false},
		{"fe80::1", "", false},
		{"300.1.1.1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			got, ok := SubnetPrefix(tt.addr)
			if ok != tt.wantOK {
				t.Fatalf("SubnetPrefix(%q) ok = %v, want %v", tt.addr, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("SubnetPrefix(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	got := Candidates("192.168.1.")

	if len(got) != HostCount {
		t.Fatalf("len(Candidates) = %d, want %d", len(got), HostCount)
	}
	if got[0] != "192.168.1.1" {
		t.Errorf("first candidate = %q, want 192.168.1.1", got[0])
	}
	if got[len(got)-1] != "192.168.1.254" {
		t.Errorf("last candidate = %q, want 192.168.1.254", got[len(got)-1])
	}
}

func TestCIDR(t *testing.T) {
	if got := CIDR("10.1.2."); got != "10.1.2.0/24" {
		t.Errorf("CIDR() = %q, want 10.1.2.0/24", got)
	}
}

func TestSameSubnet(t *testing.T) {
	if !SameSubnet("192.168.1.1", "192.168.1.200") {
		t.Error("SameSubnet should be true for addresses in one /24")
	}
	if SameSubnet("192.168.1.1", "192.168.2.1") {
		t.Error("SameSubnet should be false across /24s")
	}
	if SameSubnet("bogus", "192.168.1.1") {
		t.Error("SameSubnet should be false for malformed input")
	}
}
