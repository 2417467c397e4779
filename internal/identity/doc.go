// Package identity resolves a host name for an IPv4 address.
//
// # Strategy
//
// Resolver tries its sources in a fixed order and returns the first name
// found:
//  1. Reverse DNS (PTR) through net.Resolver
//  2. Each fallback source, once, in order. The default fallback is a
//     NetBIOS node-status query; an mDNS browse cache can be appended.
//
// When every source fails the name is Unknown. Failures are logged at debug
// level and never returned to the caller, so name resolution cannot abort a
// sweep.
//
// # NetBIOS
//
// NetBIOSSource shells out to the platform's node-status tool:
//
//	windows: nbtstat -A <addr>
//	other:   nmblookup -A <addr>
//
// ParseNetBIOS picks the first record carrying the <20> (file server)
// suffix, or a <00> record that is not a GROUP name, and returns the text in
// front of the suffix marker.
//
// # mDNS
//
// MDNSSource browses a set of DNS-SD service types with
// github.com/grandcat/zeroconf and caches address to host name pairs for a
// configurable TTL. Browsing is shared by concurrent lookups.
package identity
