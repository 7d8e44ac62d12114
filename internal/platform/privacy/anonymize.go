// Package privacy scrubs personally identifying detail from values bound for
// logs and stored audit events.
package privacy

import "net/netip"

// AnonymizeIP coarsens an address so it names a network rather than a host.
// IPv4 keeps the /24 (last octet zeroed), IPv6 keeps the /48 prefix. Empty
// input maps to "unknown" and unparseable input to "invalid" so log fields
// stay populated either way.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}

	bits := 48
	if addr.Is4() || addr.Is4In6() {
		addr = addr.Unmap()
		bits = 24
	}

	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
