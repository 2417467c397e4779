package netinfo

import (
	"net/netip"
	"strconv"
	"strings"
)

// HostCount is the number of candidate host addresses in a /24 sweep.
const HostCount = 254

// SubnetPrefix converts an IPv4 address into the dotted three-octet prefix
// used to generate sweep candidates ("192.168.1.1" -> "192.168.1.").
// It reports false when addr is not four dot-separated octets.
func SubnetPrefix(addr string) (string, bool) {
	ip, err := netip.ParseAddr(strings.TrimSpace(addr))
	if err != nil || !ip.Is4() {
		return "", false
	}
	b := ip.As4()
	return strconv.Itoa(int(b[0])) + "." + strconv.Itoa(int(b[1])) + "." + strconv.Itoa(int(b[2])) + ".", true
}

// Candidates returns prefix+"1" through prefix+"254" in ascending order.
func Candidates(prefix string) []string {
	out := make([]string, 0, HostCount)
	for i := 1; i <= HostCount; i++ {
		out = append(out, prefix+strconv.Itoa(i))
	}
	return out
}

// CIDR renders the /24 network for a prefix ("192.168.1." -> "192.168.1.0/24").
func CIDR(prefix string) string {
	return prefix + "0/24"
}

// SameSubnet reports whether two IPv4 addresses share a /24.
func SameSubnet(a, b string) bool {
	pa, okA := SubnetPrefix(a)
	pb, okB := SubnetPrefix(b)
	return okA && okB && pa == pb
}
