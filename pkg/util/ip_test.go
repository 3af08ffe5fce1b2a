package util

import (
	"net"
	"net/netip"
	"testing"
)

func TestLinkLocalFromMAC(t *testing.T) {
	tests := []struct {
		mac  string
		want string
	}{
		{"02:00:00:00:00:01", "fe80::ff:fe00:1"},
		{"00:11:22:33:44:55", "fe80::211:22ff:fe33:4455"},
		{"aa:bb:cc:dd:ee:ff", "fe80::a8bb:ccff:fedd:eeff"},
	}

	for _, tt := range tests {
		t.Run(tt.mac, func(t *testing.T) {
			mac, _ := net.ParseMAC(tt.mac)
			got := LinkLocalFromMAC(mac)
			if got != netip.MustParseAddr(tt.want) {
				t.Errorf("LinkLocalFromMAC(%s) = %s, want %s", tt.mac, got, tt.want)
			}
			if !LinkLocalPrefix.Contains(got) {
				t.Errorf("%s not inside %s", got, LinkLocalPrefix)
			}
		})
	}
}

func TestParseInterfaceAddr(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"10.0.0.1/24", "10.0.0.1/24", false},
		{"2401:db00::1/64", "2401:db00::1/64", false},
		{"::ffff:10.0.0.1/120", "10.0.0.1/24", false},
		{"10.0.0.1", "", true},
		{"bogus/24", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterfaceAddr(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInterfaceAddr(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("ParseInterfaceAddr(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMAC(t *testing.T) {
	if _, err := ParseMAC("02:00:00:00:00:01"); err != nil {
		t.Errorf("ParseMAC() unexpected error: %v", err)
	}
	if _, err := ParseMAC("02:00:00:00:00:00:00:01"); err == nil {
		t.Error("ParseMAC() should reject EUI-64 addresses")
	}
	if _, err := ParseMAC("nope"); err == nil {
		t.Error("ParseMAC() should reject garbage")
	}
}

func TestZeroAddr(t *testing.T) {
	if ZeroAddr(false) != netip.IPv4Unspecified() {
		t.Errorf("ZeroAddr(false) = %s", ZeroAddr(false))
	}
	if ZeroAddr(true) != netip.IPv6Unspecified() {
		t.Errorf("ZeroAddr(true) = %s", ZeroAddr(true))
	}
}
