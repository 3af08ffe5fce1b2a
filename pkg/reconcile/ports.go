package reconcile

import (
	"fmt"
	"maps"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// updatePorts rebuilds every port. Ports must already exist in the
// previous state; a port the configuration no longer lists is reset to
// its defaults rather than removed.
func (c *Context) updatePorts() (bool, error) {
	orig := c.orig.Ports()
	ports := newCollection[state.PortID, state.PortFields]("port", orig)

	for _, pc := range c.cfg.Ports {
		id := state.PortID(pc.LogicalID)
		old := orig.Get(id)
		if old == nil {
			return false, util.NewDependencyError("port config", "platform port", fmt.Sprint(id))
		}
		if ports.has(id) {
			return false, util.NewDuplicateError("port", id)
		}
		f, err := c.buildPort(old.Fields(), pc)
		if err != nil {
			return false, err
		}
		if err := ports.put(f); err != nil {
			return false, err
		}
	}

	for _, old := range orig.Nodes() {
		if ports.has(old.ID()) {
			continue
		}
		f, err := c.buildPort(old.Fields(), defaultPortConfig(old.Fields()))
		if err != nil {
			return false, err
		}
		if err := ports.put(f); err != nil {
			return false, err
		}
	}

	m, err := ports.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetPorts(m)
	return true, nil
}

// defaultPortConfig is what an unconfigured port is reset to: disabled,
// keeping its identity, description and hardware settings.
func defaultPortConfig(f state.PortFields) config.Port {
	return config.Port{
		LogicalID:   int(f.ID),
		Name:        f.Name,
		Description: f.Description,
		State:       config.PortDisabled,
		Speed:       f.Speed,
		ProfileID:   f.ProfileID,
	}
}

// portQosPolicy returns the per-port override of the data-plane traffic
// policy, else its default.
func (c *Context) portQosPolicy(id state.PortID) string {
	if dp := c.cfg.DataPlaneTrafficPolicy; dp != nil {
		if name, ok := dp.PortIDToQosPolicy[int(id)]; ok {
			return name
		}
	}
	return c.cfg.DefaultDataPlaneQosPolicy()
}

func (c *Context) buildPort(orig state.PortFields, pc config.Port) (state.PortFields, error) {
	id := orig.ID
	resource := fmt.Sprintf("port %d", id)

	if pc.SampleDest == config.SampleToMirror && pc.SflowEgressRate > 0 {
		return state.PortFields{}, util.NewUnsupportedError(resource, "egress sampling to a mirror is not supported")
	}

	policy := c.portQosPolicy(id)
	cfgQueues, err := c.portQueueConfig(id, pc.PortQueueConfigName)
	if err != nil {
		return state.PortFields{}, err
	}
	queues, err := buildQueues(resource, orig.Queues, cfgQueues, c.qosMapOf(policy))
	if err != nil {
		return state.PortFields{}, err
	}

	lldp := maps.Clone(orig.ExpectedLLDPValues)
	if lldp == nil {
		lldp = map[config.LLDPTag]string{}
	}
	maps.Copy(lldp, pc.ExpectedLLDPValues)

	name := pc.Name
	if name == "" {
		name = orig.Name
	}
	adminState := pc.State
	if adminState == "" {
		adminState = config.PortDisabled
	}

	return state.PortFields{
		ID:                 id,
		Name:               name,
		Description:        pc.Description,
		AdminState:         adminState,
		Speed:              pc.Speed,
		ProfileID:          pc.ProfileID,
		Pause:              pc.Pause,
		IngressVlan:        state.VlanID(pc.IngressVlan),
		Vlans:              maps.Clone(c.portVlans[id]),
		SflowIngressRate:   pc.SflowIngressRate,
		SflowEgressRate:    pc.SflowEgressRate,
		SampleDest:         pc.SampleDest,
		FEC:                pc.FEC,
		LoopbackMode:       pc.LoopbackMode,
		Queues:             queues,
		IngressMirror:      pc.IngressMirror,
		EgressMirror:       pc.EgressMirror,
		QosPolicy:          policy,
		ExpectedLLDPValues: lldp,
		LookupClasses:      slices.Clone(pc.LookupClasses),
	}, nil
}
