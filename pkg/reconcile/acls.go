package reconcile

import (
	"fmt"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// ACL priority bands; lower numbers are matched first. DENY entries take
// AclStartPriority onwards and data-plane entries continue after them.
// Control-plane entries are numbered from CPUAclStartPriority on their own
// counter, since they are matched in the CPU's table.
const (
	AclStartPriority    = 100000
	CPUAclStartPriority = 1
)

// Field bounds checked on every ACL.
const (
	maxL4Port   = 65535
	maxIcmpType = 0xff
	maxIcmpCode = 0xff
	maxTTL      = 255

	protoIcmp   = 1
	protoIcmpv6 = 58
)

// aclCompiler emits the ACL collection: every DENY entry first, then the
// control-plane policy, then the data-plane policy.
type aclCompiler struct {
	c        *Context
	acls     *collection[string, state.AclEntryFields]
	byName   map[string]config.AclEntry
	counters map[string]config.TrafficCounter
	priority int
	cpu      int
}

func (c *Context) updateAcls() (bool, error) {
	ac := &aclCompiler{
		c:        c,
		acls:     newCollection[string, state.AclEntryFields]("acl", c.orig.Acls()),
		byName:   map[string]config.AclEntry{},
		counters: map[string]config.TrafficCounter{},
		priority: AclStartPriority,
		cpu:      CPUAclStartPriority,
	}
	for _, a := range c.cfg.Acls {
		if _, dup := ac.byName[a.Name]; dup {
			return false, util.NewDuplicateError("acl", a.Name)
		}
		ac.byName[a.Name] = a
	}
	for _, tc := range c.cfg.TrafficCounters {
		ac.counters[tc.Name] = tc
	}

	for _, a := range c.cfg.Acls {
		if a.ActionType != config.AclDeny {
			continue
		}
		if err := ac.emit(a, ac.priority, nil); err != nil {
			return false, err
		}
		ac.priority++
	}
	if p := c.cfg.CPUTrafficPolicy; p != nil && p.TrafficPolicy != nil {
		if err := ac.addPolicy(p.TrafficPolicy, true); err != nil {
			return false, err
		}
	}
	if p := c.cfg.DataPlaneTrafficPolicy; p != nil {
		if err := ac.addPolicy(p, false); err != nil {
			return false, err
		}
	}

	m, err := ac.acls.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetAcls(m)
	return true, nil
}

// addPolicy compiles the matcher/action pairs of one traffic policy.
// Matchers naming a DENY entry are skipped; it was emitted already.
func (ac *aclCompiler) addPolicy(p *config.TrafficPolicyConfig, copp bool) error {
	for _, mta := range p.MatchToAction {
		a, ok := ac.byName[mta.Matcher]
		if !ok {
			return util.NewDependencyError("traffic policy", "acl", mta.Matcher)
		}
		if a.ActionType == config.AclDeny {
			continue
		}
		action, err := ac.compileAction(mta.Action, copp)
		if err != nil {
			return fmt.Errorf("acl %s: %w", a.Name, err)
		}

		priority := &ac.priority
		if copp {
			priority = &ac.cpu
		}
		if err := ac.emit(a, *priority, action); err != nil {
			return err
		}
		*priority++
	}
	return nil
}

func (ac *aclCompiler) compileAction(ma config.MatchAction, copp bool) (*state.MatchAction, error) {
	out := &state.MatchAction{
		IngressMirror: ma.IngressMirror,
		EgressMirror:  ma.EgressMirror,
	}
	if ma.SendToQueue != nil {
		out.SendToQueue = &state.QueueAction{QueueID: ma.SendToQueue.QueueID, SendToCPU: copp}
	}
	if ma.Counter != "" {
		tc, ok := ac.counters[ma.Counter]
		if !ok {
			return nil, util.NewDependencyError("acl action", "traffic counter", ma.Counter)
		}
		out.TrafficCounter = &tc
	}
	if ma.SetDscp != nil {
		dscp := ma.SetDscp.DscpValue
		if dscp < 0 || dscp > maxDscp {
			return nil, util.NewRangeError("acl action", "setDscp", dscp, "in [0, 63]")
		}
		out.SetDscp = &dscp
	}

	mirrors := ac.c.State().Mirrors()
	for _, name := range out.Mirrors() {
		if mirrors.Get(name) == nil {
			return nil, util.NewDependencyError("acl action", "mirror", name)
		}
	}
	return out, nil
}

func (ac *aclCompiler) emit(a config.AclEntry, priority int, action *state.MatchAction) error {
	if err := checkAcl(a); err != nil {
		return err
	}
	match := a
	if r := a.SrcL4PortRange; r != nil && match.L4SrcPort == nil {
		match.L4SrcPort = clonePtr(&r.Min)
	}
	if r := a.DstL4PortRange; r != nil && match.L4DstPort == nil {
		match.L4DstPort = clonePtr(&r.Min)
	}
	return ac.acls.put(state.AclEntryFields{
		Name:     a.Name,
		Priority: priority,
		Action:   a.ActionType,
		Match:    match,
		Actions:  action,
	})
}

// checkAcl validates the match fields of one ACL.
func checkAcl(a config.AclEntry) error {
	resource := fmt.Sprintf("acl %s", a.Name)
	for _, r := range []struct {
		field string
		rng   *config.L4PortRange
	}{
		{"srcL4PortRange", a.SrcL4PortRange},
		{"dstL4PortRange", a.DstL4PortRange},
	} {
		if r.rng == nil {
			continue
		}
		if r.rng.Min < 0 || r.rng.Min > maxL4Port || r.rng.Max < 0 || r.rng.Max > maxL4Port {
			return util.NewRangeError(resource, r.field, fmt.Sprintf("%d-%d", r.rng.Min, r.rng.Max), "within [0, 65535]")
		}
		if r.rng.Min != r.rng.Max {
			return util.NewRangeError(resource, r.field, fmt.Sprintf("%d-%d", r.rng.Min, r.rng.Max), "an exact match (min == max)")
		}
	}

	bounded := []struct {
		field string
		value *int
		max   int
	}{
		{"l4SrcPort", a.L4SrcPort, maxL4Port},
		{"l4DstPort", a.L4DstPort, maxL4Port},
		{"icmpType", a.IcmpType, maxIcmpType},
		{"icmpCode", a.IcmpCode, maxIcmpCode},
	}
	if a.IcmpCode != nil && a.IcmpType == nil {
		return util.NewRangeError(resource, "icmpCode", *a.IcmpCode, "set together with icmpType")
	}
	for _, b := range bounded {
		if b.value != nil && (*b.value < 0 || *b.value > b.max) {
			return util.NewRangeError(resource, b.field, *b.value, fmt.Sprintf("in [0, %d]", b.max))
		}
	}
	if a.IcmpType != nil && (a.Proto == nil || (*a.Proto != protoIcmp && *a.Proto != protoIcmpv6)) {
		proto := "unset"
		if a.Proto != nil {
			proto = fmt.Sprint(*a.Proto)
		}
		return util.NewRangeError(resource, "proto", proto, "icmp (1) or icmpv6 (58) when icmpType is set")
	}
	if t := a.Ttl; t != nil {
		if t.Value < 0 || t.Value > maxTTL {
			return util.NewRangeError(resource, "ttl value", t.Value, "in [0, 255]")
		}
		if t.Mask < 0 || t.Mask > maxTTL {
			return util.NewRangeError(resource, "ttl mask", t.Mask, "in [0, 255]")
		}
	}
	return nil
}
