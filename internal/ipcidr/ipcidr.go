// Package ipcidr provides allocation-frugal IPv4/IPv6 parsing, reserved
// range classification, and CIDR containment tests. It backs blocklist
// membership checks and the IP check's pre-filter, both invoked on every
// request, so it is built on net/netip rather than the older net.IP byte
// slices to avoid per-call heap allocation.
package ipcidr

import (
	"fmt"
	"net/netip"
)

// Version identifies the IP address family.
type Version int

const (
	V4 Version = 4
	V6 Version = 6
)

// reservedRanges enumerates the exact RFC 5735 IPv4 ranges spec.md §4.2
// calls out. Entries are plain IPv4 prefixes; callers unmap IPv4-mapped
// IPv6 addresses before testing containment. No IPv6 ranges are listed.
var reservedRanges = mustPrefixes(
	"0.0.0.0/8",
	"10.0.0.0/8",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"255.255.255.255/32",
)

func mustPrefixes(cidrs ...string) []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		prefixes = append(prefixes, netip.MustParsePrefix(c))
	}
	return prefixes
}

// Parse validates an IPv4 or IPv6 address string and reports its version.
// It fails on malformed input, including stray zone identifiers or
// embedded whitespace that net.ParseIP would silently tolerate in some
// forms.
func Parse(s string) (netip.Addr, Version, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, 0, fmt.Errorf("ipcidr: invalid IP address %q: %w", s, err)
	}
	if addr.Is4() || addr.Is4In6() {
		return addr.Unmap(), V4, nil
	}
	return addr, V6, nil
}

// IsReserved reports whether addr falls in one of the RFC 5735 reserved
// IPv4 ranges (loopback, link-local, private, multicast, etc). An IPv6
// address that is not IPv4-mapped is never reported as reserved.
func IsReserved(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range reservedRanges {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// InRange reports whether addr is contained in the given CIDR. For IPv4
// this is a masked 32-bit integer comparison; for IPv6 it compares the
// first mask bits of the 128-bit address — netip.Prefix.Contains does
// exactly this without allocating.
func InRange(addr netip.Addr, cidr string) (bool, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return false, fmt.Errorf("ipcidr: invalid CIDR %q: %w", cidr, err)
	}
	return prefix.Contains(addr.Unmap()), nil
}

// InAnyRange reports whether addr is contained in any of the given CIDRs,
// short-circuiting on the first match. Malformed CIDRs are skipped rather
// than aborting the scan — reference-table data may contain a stray
// malformed range from a noisy feed, and one bad entry should not hide
// the rest.
func InAnyRange(addr netip.Addr, cidrs []string) bool {
	addr = addr.Unmap()
	for _, c := range cidrs {
		prefix, err := netip.ParsePrefix(c)
		if err != nil {
			continue
		}
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
