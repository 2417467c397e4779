// Package hwaddr resolves the hardware (MAC) address of a host on the local
// segment.
//
// The local host is answered from its own interface. Every other address is
// looked up in the system neighbor table: /proc/net/arp on Linux, the output
// of "arp -a" elsewhere. Table text is scanned line by line for the target
// address as a whole token, and the first following token shaped like a MAC
// (17 characters, five ':' or '-' separators) is taken. Results are
// normalized to uppercase hex without separators, e.g. "001A2B3C4D5E".
//
// An optional active source sends an ARP request with
// github.com/j-keck/arping when the table has no entry. It needs raw socket
// privileges and is off by default.
//
// Resolver never fails: a missing entry yields NotFound and a broken lookup
// yields "Error: <detail>".
package hwaddr
