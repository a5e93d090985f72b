// Package reconcile implements the DHCP lease reconciliation pass:
// fetch lease tables from configured routers, normalize each lease,
// resolve it against the inventory, and apply the requested mode to
// decide what gets created or updated.
package reconcile

import (
	"net"
	"strconv"
	"strings"
)

// BelongsTo reports whether ip falls inside the IPv4 subnet cidr.
// Any malformed input, a missing mask, or a mask outside 0..32 returns
// false rather than an error, so a bad network record can never claim
// a device.
func BelongsTo(ip, cidr string) bool {
	prefix, maskStr, ok := strings.Cut(cidr, "/")
	if !ok {
		return false
	}
	mask, err := strconv.Atoi(maskStr)
	if err != nil || mask < 0 || mask > 32 {
		return false
	}
	addr := net.ParseIP(ip)
	if addr = addr.To4(); addr == nil {
		return false
	}
	network := net.ParseIP(prefix)
	if network = network.To4(); network == nil {
		return false
	}
	return (&net.IPNet{
		IP:   network.Mask(net.CIDRMask(mask, 32)),
		Mask: net.CIDRMask(mask, 32),
	}).Contains(addr)
}
