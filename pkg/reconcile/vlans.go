package reconcile

import (
	"fmt"
	"maps"
	"net/netip"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// updateVlans rebuilds the VLANs. It must run after updateInterfaces,
// whose binding table supplies each VLAN's interface and responder tables.
func (c *Context) updateVlans() (bool, error) {
	vlans := newCollection[state.VlanID, state.VlanFields]("vlan", c.orig.Vlans())
	for _, vc := range c.cfg.Vlans {
		f, err := c.buildVlan(vc)
		if err != nil {
			return false, err
		}
		if err := vlans.put(f); err != nil {
			return false, err
		}
	}

	m, err := vlans.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetVlans(m)
	return true, nil
}

func (c *Context) buildVlan(vc config.Vlan) (state.VlanFields, error) {
	id := state.VlanID(vc.ID)
	resource := fmt.Sprintf("vlan %d", id)

	f := state.VlanFields{
		ID:               id,
		Name:             vc.Name,
		Ports:            maps.Clone(c.vlanPorts[id]),
		ArpResponseTable: map[netip.Addr]state.NeighborResponse{},
		NdpResponseTable: map[netip.Addr]state.NeighborResponse{},
	}
	if vc.IntfID != nil {
		f.InterfaceID = state.InterfaceID(*vc.IntfID)
	} else if intf, ok := c.firstInterface(id); ok {
		f.InterfaceID = intf
	}

	var err error
	if f.DhcpV4Relay, err = relayAddr(resource, "dhcpRelayAddressV4", vc.DhcpRelayAddressV4, false); err != nil {
		return state.VlanFields{}, err
	}
	if f.DhcpV6Relay, err = relayAddr(resource, "dhcpRelayAddressV6", vc.DhcpRelayAddressV6, true); err != nil {
		return state.VlanFields{}, err
	}
	if f.DhcpV4RelayOverrides, err = relayOverrides(resource, vc.DhcpRelayOverridesV4, false); err != nil {
		return state.VlanFields{}, err
	}
	if f.DhcpV6RelayOverrides, err = relayOverrides(resource, vc.DhcpRelayOverridesV6, true); err != nil {
		return state.VlanFields{}, err
	}

	if info := c.vlanInterfaces[id]; info != nil {
		for addr, a := range info.addresses {
			resp := state.NeighborResponse{MAC: a.mac, Interface: a.intf}
			if addr.Is4() {
				f.ArpResponseTable[addr] = resp
			} else {
				f.NdpResponseTable[addr] = resp
			}
		}
	}
	return f, nil
}

// relayAddr parses a DHCP relay address. An unset address is the zero
// address of its family.
func relayAddr(resource, field, s string, v6 bool) (netip.Addr, error) {
	if s == "" {
		return util.ZeroAddr(v6), nil
	}
	addr, err := util.ParseAddr(s)
	if err != nil || addr.Is6() != v6 {
		family := "an IPv4 address"
		if v6 {
			family = "an IPv6 address"
		}
		return netip.Addr{}, util.NewRangeError(resource, field, s, family)
	}
	return addr, nil
}

// relayOverrides parses a MAC → relay address map. MAC keys are
// normalized to their canonical form.
func relayOverrides(resource string, in map[string]string, v6 bool) (map[string]netip.Addr, error) {
	out := make(map[string]netip.Addr, len(in))
	for macStr, addrStr := range in {
		mac, err := util.ParseMAC(macStr)
		if err != nil {
			return nil, util.NewRangeError(resource, "dhcp relay override", macStr, "a 48-bit MAC address")
		}
		if addrStr == "" {
			return nil, util.NewRangeError(resource, "dhcp relay override "+macStr, `""`, "an IP address")
		}
		addr, err := relayAddr(resource, "dhcp relay override "+macStr, addrStr, v6)
		if err != nil {
			return nil, err
		}
		if _, dup := out[mac.String()]; dup {
			return nil, util.NewDuplicateError(resource+" dhcp relay override", mac)
		}
		out[mac.String()] = addr
	}
	return out, nil
}
