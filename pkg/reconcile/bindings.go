package reconcile

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// processVlanPorts builds the port → VLAN and VLAN → port tables from the
// vlanPorts list, the only place port membership is configured.
func (c *Context) processVlanPorts() error {
	for _, vp := range c.cfg.VlanPorts {
		port, vlan := state.PortID(vp.LogicalPort), state.VlanID(vp.VlanID)
		membership := state.VlanMembership{EmitTags: vp.EmitTags}

		if c.portVlans[port] == nil {
			c.portVlans[port] = map[state.VlanID]state.VlanMembership{}
		}
		if _, dup := c.portVlans[port][vlan]; dup {
			return util.NewDuplicateError("vlan port", fmt.Sprintf("vlan %d port %d", vlan, port))
		}
		c.portVlans[port][vlan] = membership

		if c.vlanPorts[vlan] == nil {
			c.vlanPorts[vlan] = map[state.PortID]state.VlanMembership{}
		}
		c.vlanPorts[vlan][port] = membership
	}
	return nil
}

// updateVlanInterfaces records intf in the table of its VLAN. All
// interfaces of a VLAN must share a router, and an address claimed by two
// of them must agree on mask and MAC; the first claimant keeps it.
func (c *Context) updateVlanInterfaces(intf state.InterfaceFields) error {
	info := c.vlanInterfaces[intf.VlanID]
	if info == nil {
		info = &vlanInterfaceInfo{
			router:     intf.RouterID,
			interfaces: map[state.InterfaceID]bool{},
			addresses:  map[netip.Addr]addressInfo{},
		}
		c.vlanInterfaces[intf.VlanID] = info
	} else if info.router != intf.RouterID {
		return util.NewConflictError(fmt.Sprintf("vlan %d", intf.VlanID),
			"interface %d is on router %d but the vlan is already bound to router %d",
			intf.ID, intf.RouterID, info.router)
	}
	info.interfaces[intf.ID] = true

	mac := intf.MAC.String()
	for _, addr := range slices.SortedFunc(maps.Keys(intf.Addresses), netip.Addr.Compare) {
		entry := addressInfo{mask: intf.Addresses[addr], mac: mac, intf: intf.ID}
		old, ok := info.addresses[addr]
		if !ok {
			info.addresses[addr] = entry
			continue
		}
		if old.mask != entry.mask || old.mac != entry.mac {
			return util.NewConflictError(fmt.Sprintf("vlan %d", intf.VlanID),
				"address %s is on interfaces %d and %d with different mask or MAC",
				addr, old.intf, intf.ID)
		}
	}
	return nil
}

// firstInterface returns the lowest interface id bound to vlan.
func (c *Context) firstInterface(vlan state.VlanID) (state.InterfaceID, bool) {
	info := c.vlanInterfaces[vlan]
	if info == nil || len(info.interfaces) == 0 {
		return 0, false
	}
	return slices.Min(slices.Collect(maps.Keys(info.interfaces))), true
}
