package reconcile

import (
	"fmt"
	"net/netip"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// linkLocalBits is the mask of the synthesized IPv6 link-local address.
const linkLocalBits = 64

// updateInterfaces rebuilds the layer 3 interfaces. Along the way it fills
// the VLAN binding table and the connected networks of every router.
func (c *Context) updateInterfaces() (bool, error) {
	intfs := newCollection[state.InterfaceID, state.InterfaceFields]("interface", c.orig.Interfaces())
	for _, ic := range c.cfg.Interfaces {
		f, err := c.buildInterface(ic)
		if err != nil {
			return false, err
		}
		if err := intfs.put(f); err != nil {
			return false, err
		}
		if err := c.updateVlanInterfaces(f); err != nil {
			return false, err
		}
	}

	m, err := intfs.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetInterfaces(m)
	return true, nil
}

func (c *Context) buildInterface(ic config.Interface) (state.InterfaceFields, error) {
	id, router := state.InterfaceID(ic.IntfID), state.RouterID(ic.RouterID)
	resource := fmt.Sprintf("interface %d", id)

	mac := c.plat.LocalMAC()
	if ic.Mac != "" {
		m, err := util.ParseMAC(ic.Mac)
		if err != nil {
			return state.InterfaceFields{}, util.NewRangeError(resource, "mac", ic.Mac, "a 48-bit MAC address")
		}
		mac = m
	}
	name := ic.Name
	if name == "" {
		name = fmt.Sprintf("Interface %d", id)
	}
	mtu := ic.MTU
	if mtu == 0 {
		mtu = config.DefaultInterfaceMTU
	}

	addrs := map[netip.Addr]int{util.LinkLocalFromMAC(mac): linkLocalBits}
	for _, s := range ic.IPAddresses {
		p, err := util.ParseInterfaceAddr(s)
		if err != nil {
			return state.InterfaceFields{}, util.NewRangeError(resource, "address", s, "an address with a mask")
		}
		addr := p.Addr()
		if _, dup := addrs[addr]; dup {
			return state.InterfaceFields{}, util.NewDuplicateError(resource+" address", addr)
		}
		addrs[addr] = p.Bits()

		if addr.Is6() && addr.IsLinkLocalUnicast() {
			continue
		}
		network := p.Masked()
		if prev, ok := c.intfRoutes[router][network]; ok && prev.Interface != id {
			return state.InterfaceFields{}, util.NewConflictError(resource,
				"network %s is already on interface %d in router %d", network, prev.Interface, router)
		}
		c.intfRoutes.Add(router, network, state.ConnectedAddr{Interface: id, Addr: addr})
	}

	ndp, err := buildNdp(resource, ic.Ndp)
	if err != nil {
		return state.InterfaceFields{}, err
	}

	return state.InterfaceFields{
		ID:                  id,
		RouterID:            router,
		VlanID:              state.VlanID(ic.VlanID),
		Name:                name,
		MAC:                 append([]byte(nil), mac...),
		MTU:                 mtu,
		Addresses:           addrs,
		IsVirtual:           ic.IsVirtual,
		IsStateSyncDisabled: ic.IsStateSyncDisabled,
		Ndp:                 ndp,
	}, nil
}

func buildNdp(resource string, nc *config.NdpConfig) (state.NdpSettings, error) {
	if nc == nil {
		return state.NdpSettings{}, nil
	}
	out := state.NdpSettings{
		RouterAdvertisementSeconds:     nc.RouterAdvertisementSeconds,
		CurHopLimit:                    nc.CurHopLimit,
		RouterLifetime:                 nc.RouterLifetime,
		PrefixValidLifetimeSeconds:     nc.PrefixValidLifetimeSeconds,
		PrefixPreferredLifetimeSeconds: nc.PrefixPreferredLifetimeSeconds,
		ManagedBit:                     nc.RouterAdvertisementManagedBit,
		OtherBit:                       nc.RouterAdvertisementOtherBit,
	}
	if nc.RouterAddress != "" {
		addr, err := util.ParseAddr(nc.RouterAddress)
		if err != nil || !addr.Is6() {
			return state.NdpSettings{}, util.NewRangeError(resource, "ndp routerAddress", nc.RouterAddress, "an IPv6 address")
		}
		out.RouterAddress = addr
	}
	return out, nil
}
