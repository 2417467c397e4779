package hwaddr

import (
	"bufio"
	"net"
	"strings"
)

// macLength is the length of a canonical separated MAC such as
// "00:1a:2b:3c:4d:5e".
const macLength = 17

// IsValid reports whether s is a canonical six-octet MAC with colon or
// hyphen separators.
func IsValid(s string) bool {
	if len(s) != macLength {
		return false
	}
	if strings.Count(s, ":")+strings.Count(s, "-") != 5 {
		return false
	}
	_, err := net.ParseMAC(s)
	return err == nil
}

// Normalize strips separators and upper-cases a MAC.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, ":", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToUpper(s)
}

// canonical zero-pads the short octets BSD arp prints ("0:1a:2b:3:4d:5e").
// Tokens that are not six separated octets are returned unchanged.
func canonical(tok string) string {
	sep := ":"
	if strings.Contains(tok, "-") {
		sep = "-"
	}
	parts := strings.Split(tok, sep)
	if len(parts) != 6 {
		return tok
	}
	for i, p := range parts {
		switch len(p) {
		case 1:
			parts[i] = "0" + p
		case 2:
		default:
			return tok
		}
	}
	return strings.Join(parts, sep)
}

func allZero(normalized string) bool {
	return strings.Trim(normalized, "0") == ""
}

// FindHardwareAddress scans neighbor table text for addr and returns the
// normalized MAC of the first matching line that carries a valid one.
func FindHardwareAddress(table, addr string) (string, bool) {
	if addr == "" {
		return "", false
	}
	wrapped := "(" + addr + ")"

	sc := bufio.NewScanner(strings.NewReader(table))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())

		at := -1
		for i, f := range fields {
			if f == addr || f == wrapped {
				at = i
				break
			}
		}
		if at < 0 {
			continue
		}

		for _, f := range fields[at+1:] {
			tok := canonical(f)
			if !IsValid(tok) {
				continue
			}
			if mac := Normalize(tok); !allZero(mac) {
				return mac, true
			}
			break
		}
	}
	return "", false
}
