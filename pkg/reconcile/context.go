package reconcile

import (
	"net/netip"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/platform"
	"github.com/newtron-network/swreconcile/pkg/rib"
	"github.com/newtron-network/swreconcile/pkg/state"
)

// Context carries one reconciliation pass: its inputs, the root being
// built, and the binding tables derived from the configuration that later
// domains read.
type Context struct {
	orig *state.SwitchState
	cfg  *config.SwitchConfig
	plat platform.Platform
	rib  rib.RoutingInformationBase

	next *state.WritableState

	portVlans      map[state.PortID]map[state.VlanID]state.VlanMembership
	vlanPorts      map[state.VlanID]map[state.PortID]state.VlanMembership
	vlanInterfaces map[state.VlanID]*vlanInterfaceInfo
	intfRoutes     state.InterfaceRoutes
	statics        []state.StaticRoute
	ribCommit      func() bool

	changed []string
}

// vlanInterfaceInfo is what the interfaces of one VLAN contribute to it.
type vlanInterfaceInfo struct {
	router     state.RouterID
	interfaces map[state.InterfaceID]bool
	addresses  map[netip.Addr]addressInfo
}

// addressInfo is one interface address as seen from its VLAN.
type addressInfo struct {
	mask int
	mac  string
	intf state.InterfaceID
}

func newContext(orig *state.SwitchState, cfg *config.SwitchConfig, plat platform.Platform, r rib.RoutingInformationBase) *Context {
	return &Context{
		orig:           orig,
		cfg:            cfg,
		plat:           plat,
		rib:            r,
		next:           orig.Clone().Modify(),
		portVlans:      map[state.PortID]map[state.VlanID]state.VlanMembership{},
		vlanPorts:      map[state.VlanID]map[state.PortID]state.VlanMembership{},
		vlanInterfaces: map[state.VlanID]*vlanInterfaceInfo{},
		intfRoutes:     state.InterfaceRoutes{},
	}
}

// State returns the root being built.
func (c *Context) State() *state.SwitchState { return c.next.State() }

// Changed lists the domains that changed so far, in run order.
func (c *Context) Changed() []string { return c.changed }

func (c *Context) markChanged(domain string) {
	c.changed = append(c.changed, domain)
}
