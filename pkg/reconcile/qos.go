package reconcile

import (
	"fmt"
	"maps"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// updateQosPolicies rebuilds the named QoS policies. The data-plane default
// policy is kept out of the collection; see updateDefaultQosPolicy.
func (c *Context) updateQosPolicies() (bool, error) {
	defaultName := c.cfg.DefaultDataPlaneQosPolicy()
	policies := newCollection[string, state.QosPolicyFields]("qos policy", c.orig.QosPolicies())

	seen := map[string]bool{}
	for _, qc := range c.cfg.QosPolicies {
		if seen[qc.Name] {
			return false, util.NewDuplicateError("qos policy", qc.Name)
		}
		seen[qc.Name] = true
		if qc.Name == defaultName {
			continue
		}
		f, err := buildQosPolicy(qc)
		if err != nil {
			return false, err
		}
		if err := policies.put(f); err != nil {
			return false, err
		}
	}

	m, err := policies.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetQosPolicies(m)
	return true, nil
}

// updateDefaultQosPolicy stores the data-plane default policy on the root.
// The old node is kept when it is unchanged.
func (c *Context) updateDefaultQosPolicy() (bool, error) {
	orig := c.orig.DefaultDataPlaneQosPolicy()
	name := c.cfg.DefaultDataPlaneQosPolicy()
	if name == "" {
		if orig == nil {
			return false, nil
		}
		c.next.SetDefaultDataPlaneQosPolicy(nil)
		return true, nil
	}

	qc := c.cfg.QosPolicy(name)
	if qc == nil {
		return false, util.NewDependencyError("data plane traffic policy", "qos policy", name)
	}
	f, err := buildQosPolicy(*qc)
	if err != nil {
		return false, err
	}
	if orig != nil && orig.ID() != name {
		orig = nil
	}
	n, changed := node(orig, f)
	if changed {
		c.next.SetDefaultDataPlaneQosPolicy(n)
	}
	return changed, nil
}

// buildQosPolicy checks that exactly one of the rule list and the QoS map
// is set, and that every DSCP value is valid.
func buildQosPolicy(qc config.QosPolicy) (state.QosPolicyFields, error) {
	resource := fmt.Sprintf("qos policy %s", qc.Name)
	hasRules, hasMap := len(qc.Rules) > 0, qc.QosMap != nil
	switch {
	case hasRules && hasMap:
		return state.QosPolicyFields{}, util.NewConflictError(resource, "both rules and a qos map are set")
	case !hasRules && !hasMap:
		return state.QosPolicyFields{}, util.NewConflictError(resource, "neither rules nor a qos map is set")
	}

	f := state.QosPolicyFields{Name: qc.Name}
	if hasMap {
		f.QosMap = cloneQosMap(qc.QosMap)
		for _, dm := range qc.QosMap.DscpMaps {
			if err := checkDscp(resource, dm.FromDscpToTrafficClass); err != nil {
				return state.QosPolicyFields{}, err
			}
		}
		return f, nil
	}

	for _, r := range qc.Rules {
		if len(r.Dscp) == 0 {
			return state.QosPolicyFields{}, util.NewRangeError(resource, fmt.Sprintf("queue %d dscp", r.QueueID), "[]", "at least one value")
		}
		if err := checkDscp(resource, r.Dscp); err != nil {
			return state.QosPolicyFields{}, err
		}
		f.Rules = append(f.Rules, state.QosRule{QueueID: r.QueueID, Dscp: slices.Clone(r.Dscp)})
	}
	return f, nil
}

func checkDscp(resource string, values []int) error {
	for _, d := range values {
		if d < 0 || d > maxDscp {
			return util.NewRangeError(resource, "dscp", d, "in [0, 63]")
		}
	}
	return nil
}

func cloneQosMap(m *config.QosMap) *config.QosMap {
	out := &config.QosMap{
		DscpMaps:              slices.Clone(m.DscpMaps),
		ExpMaps:               slices.Clone(m.ExpMaps),
		TrafficClassToQueueID: maps.Clone(m.TrafficClassToQueueID),
	}
	for i := range out.DscpMaps {
		out.DscpMaps[i].FromDscpToTrafficClass = slices.Clone(out.DscpMaps[i].FromDscpToTrafficClass)
		out.DscpMaps[i].FromTrafficClassToDscp = clonePtr(out.DscpMaps[i].FromTrafficClassToDscp)
	}
	for i := range out.ExpMaps {
		out.ExpMaps[i].FromExpToTrafficClass = slices.Clone(out.ExpMaps[i].FromExpToTrafficClass)
		out.ExpMaps[i].FromTrafficClassToExp = clonePtr(out.ExpMaps[i].FromTrafficClassToExp)
	}
	return out
}
