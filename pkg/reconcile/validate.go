package reconcile

import (
	"fmt"
	"maps"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/util"
)

// validate runs the checks that need the fully reconciled root: a changed
// default VLAN must exist, and every VLAN an interface sits on must exist
// and carry exactly one interface. The default VLAN is exempt from the
// latter.
func (c *Context) validate() error {
	s := c.State()
	defaultVlan := s.Scalars().DefaultVlan
	if defaultVlan != c.orig.Scalars().DefaultVlan && s.Vlans().Get(defaultVlan) == nil {
		return util.NewDependencyError("default vlan", "vlan", fmt.Sprint(defaultVlan))
	}

	for _, id := range slices.Sorted(maps.Keys(c.vlanInterfaces)) {
		info := c.vlanInterfaces[id]
		if s.Vlans().Get(id) == nil {
			intf := slices.Min(slices.Collect(maps.Keys(info.interfaces)))
			return util.NewDependencyError(fmt.Sprintf("interface %d", intf), "vlan", fmt.Sprint(id))
		}
		if len(info.interfaces) != 1 && id != defaultVlan {
			ids := slices.Sorted(maps.Keys(info.interfaces))
			return util.NewConflictError(fmt.Sprintf("vlan %d", id), "bound to %d interfaces %v, want exactly one", len(ids), ids)
		}
	}
	return nil
}
