package util

import (
	"fmt"
	"net"
	"net/netip"
)

// LinkLocalPrefix is the IPv6 link-local subnet every router owns.
var LinkLocalPrefix = netip.MustParsePrefix("fe80::/64")

// LinkLocalFromMAC derives the EUI-64 IPv6 link-local address of a MAC
// (RFC 4291 appendix A): ff:fe is inserted in the middle and the
// universal/local bit is flipped.
func LinkLocalFromMAC(mac net.HardwareAddr) netip.Addr {
	var b [16]byte
	b[0], b[1] = 0xfe, 0x80
	if len(mac) != 6 {
		return netip.AddrFrom16(b)
	}
	b[8] = mac[0] ^ 0x02
	b[9] = mac[1]
	b[10] = mac[2]
	b[11] = 0xff
	b[12] = 0xfe
	b[13] = mac[3]
	b[14] = mac[4]
	b[15] = mac[5]
	return netip.AddrFrom16(b)
}

// ParseInterfaceAddr parses "10.0.0.1/24" keeping the host bits, the way
// interface addresses are written.
func ParseInterfaceAddr(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid interface address %q: %w", s, err)
	}
	if p.Addr().Is4In6() {
		if p.Bits() < 96 {
			return netip.Prefix{}, fmt.Errorf("invalid interface address %q: mask too short for mapped IPv4", s)
		}
		return netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96), nil
	}
	return p, nil
}

// ParseAddr parses an IP address, unmapping v4-in-v6 forms.
func ParseAddr(s string) (netip.Addr, error) {
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid IP address %q: %w", s, err)
	}
	return a.Unmap(), nil
}

// ParseMAC parses a 48-bit MAC address.
func ParseMAC(s string) (net.HardwareAddr, error) {
	mac, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("invalid MAC address %q: %w", s, err)
	}
	if len(mac) != 6 {
		return nil, fmt.Errorf("invalid MAC address %q: not 48 bits", s)
	}
	return mac, nil
}

// ZeroAddr returns the unspecified address of the given family, used for
// scalar address fields that are unset.
func ZeroAddr(v6 bool) netip.Addr {
	if v6 {
		return netip.IPv6Unspecified()
	}
	return netip.IPv4Unspecified()
}
