// Package testutil provides fixture builders shared by package tests, and
// Redis helpers for integration tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/platform"
	"github.com/newtron-network/swreconcile/pkg/state"
)

// LocalMAC is the MAC of the test platform.
const LocalMAC = "02:00:00:00:00:01"

// Platform returns a platform with ports 1..n, two queues each.
func Platform(t testing.TB, n int) *platform.Static {
	t.Helper()
	groups := []platform.PortGroup(nil)
	if n > 0 {
		groups = append(groups, platform.PortGroup{IDs: portRange(n), Speed: config.SpeedFortyG, Queues: 2})
	}
	p, err := platform.New(platform.File{
		Name:       "test",
		LocalMAC:   LocalMAC,
		CPUQueues:  4,
		PortGroups: groups,
	})
	if err != nil {
		t.Fatalf("platform.New() error = %v", err)
	}
	return p
}

func portRange(n int) string {
	if n == 1 {
		return "1"
	}
	return fmt.Sprintf("1-%d", n)
}

// InitialState returns the published initial state of p.
func InitialState(t testing.TB, p platform.Platform) *state.SwitchState {
	t.Helper()
	s, err := platform.InitialState(p)
	if err != nil {
		t.Fatalf("platform.InitialState() error = %v", err)
	}
	s.Publish()
	return s
}

// VlanConfig returns a configuration with one VLAN, the interface routing
// it on router 0, and the given interface addresses.
func VlanConfig(vlan int, addrs ...string) *config.SwitchConfig {
	cfg := config.New()
	cfg.Vlans = []config.Vlan{{Name: fmt.Sprintf("vlan%d", vlan), ID: vlan}}
	cfg.Interfaces = []config.Interface{{IntfID: vlan, VlanID: vlan, IPAddresses: addrs}}
	return cfg
}

// WithPorts adds the ports as enabled, untagged members of the first VLAN
// of cfg.
func WithPorts(cfg *config.SwitchConfig, ports ...int) *config.SwitchConfig {
	vlan := cfg.Vlans[0].ID
	for _, id := range ports {
		cfg.Ports = append(cfg.Ports, config.Port{
			LogicalID:   id,
			State:       config.PortEnabled,
			IngressVlan: vlan,
		})
		cfg.VlanPorts = append(cfg.VlanPorts, config.VlanPort{VlanID: vlan, LogicalPort: id})
	}
	return cfg
}
