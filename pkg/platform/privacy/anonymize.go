// Package privacy reduces personal data before it reaches logs.
package privacy

import "net/netip"

// AnonymizeIP keeps the network part of an address for logs: the /24 of an
// IPv4 address, the /48 of an IPv6 address. Empty or "unknown" input yields
// "unknown"; anything unparseable yields "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.WithZone("").Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// SuffixOnly masks all but the last n bytes of s with '*', for identifiers
// that must stay correlatable in logs without being readable.
func SuffixOnly(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return "****"
	}
	return "****" + s[len(s)-n:]
}
