// Package privacy keeps personally identifiable information out of request
// logs. Registration requests carry names, emails and national IDs, so the
// access log must not also tie them to a full client address.
package privacy

import (
	"fmt"
	"net/netip"
)

// AnonymizeIP truncates a client address to a network prefix. IPv4 keeps the
// /24 (last octet zeroed), IPv6 keeps the /48. The result identifies a
// neighborhood of hosts rather than an individual machine.
//
// Returns "unknown" for empty input and "invalid" for unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}

	if addr.Is4() || addr.Is4In6() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.0", b[0], b[1], b[2])
	}

	b := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::", b[0], b[1], b[2], b[3], b[4], b[5])
}
