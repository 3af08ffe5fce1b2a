package state

import (
	"fmt"
	"net/netip"

	"github.com/newtron-network/swreconcile/pkg/config"
)

// ChangeKind classifies one entry of a delta.
type ChangeKind string

const (
	Added   ChangeKind = "added"
	Removed ChangeKind = "removed"
	Changed ChangeKind = "changed"
)

// NodeDelta is one node that differs between two maps.
type NodeDelta[K comparable, F Fields[K, F]] struct {
	Kind ChangeKind
	Old  *Node[K, F]
	New  *Node[K, F]
}

// ID returns the key of the changed node.
func (d NodeDelta[K, F]) ID() K {
	if d.New != nil {
		return d.New.ID()
	}
	return d.Old.ID()
}

// DiffMaps walks two maps in key order and reports every node that was
// added, removed or replaced. Pointer-identical nodes are skipped without
// looking at their fields, and identical maps are skipped entirely.
func DiffMaps[K comparable, F Fields[K, F]](old, new *Map[K, F]) []NodeDelta[K, F] {
	if old == new {
		return nil
	}
	var compare func(a, b K) int
	if old != nil {
		compare = old.compare
	} else {
		compare = new.compare
	}
	a, b := old.Nodes(), new.Nodes()

	var out []NodeDelta[K, F]
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && compare(a[i].ID(), b[j].ID()) < 0):
			out = append(out, NodeDelta[K, F]{Kind: Removed, Old: a[i]})
			i++
		case i == len(a) || compare(a[i].ID(), b[j].ID()) > 0:
			out = append(out, NodeDelta[K, F]{Kind: Added, New: b[j]})
			j++
		default:
			if a[i] != b[j] {
				out = append(out, NodeDelta[K, F]{Kind: Changed, Old: a[i], New: b[j]})
			}
			i++
			j++
		}
	}
	return out
}

// Delta is the difference between two switch states.
type Delta struct {
	Old *SwitchState
	New *SwitchState
}

// NewDelta returns the delta from old to new.
func NewDelta(old, new *SwitchState) Delta {
	return Delta{Old: old, New: new}
}

func (d Delta) Ports() []NodeDelta[PortID, PortFields] {
	return DiffMaps(d.Old.Ports(), d.New.Ports())
}

func (d Delta) AggregatePorts() []NodeDelta[AggregatePortID, AggregatePortFields] {
	return DiffMaps(d.Old.AggregatePorts(), d.New.AggregatePorts())
}

func (d Delta) Vlans() []NodeDelta[VlanID, VlanFields] {
	return DiffMaps(d.Old.Vlans(), d.New.Vlans())
}

func (d Delta) Interfaces() []NodeDelta[InterfaceID, InterfaceFields] {
	return DiffMaps(d.Old.Interfaces(), d.New.Interfaces())
}

func (d Delta) Acls() []NodeDelta[string, AclEntryFields] {
	return DiffMaps(d.Old.Acls(), d.New.Acls())
}

func (d Delta) QosPolicies() []NodeDelta[string, QosPolicyFields] {
	return DiffMaps(d.Old.QosPolicies(), d.New.QosPolicies())
}

func (d Delta) Mirrors() []NodeDelta[string, MirrorFields] {
	return DiffMaps(d.Old.Mirrors(), d.New.Mirrors())
}

func (d Delta) SflowCollectors() []NodeDelta[string, SflowCollectorFields] {
	return DiffMaps(d.Old.SflowCollectors(), d.New.SflowCollectors())
}

func (d Delta) LoadBalancers() []NodeDelta[config.LoadBalancerID, LoadBalancerFields] {
	return DiffMaps(d.Old.LoadBalancers(), d.New.LoadBalancers())
}

// RouteDelta is one route that differs inside a router's table.
type RouteDelta struct {
	Router RouterID
	NodeDelta[netip.Prefix, RouteFields]
}

// Routes descends into every changed route table and reports the routes
// that differ.
func (d Delta) Routes() []RouteDelta {
	return diffTables(d.Old.RouteTables(), d.New.RouteTables())
}

// Fibs is Routes for the FIB containers of an external RIB.
func (d Delta) Fibs() []RouteDelta {
	return diffTables(d.Old.Fibs(), d.New.Fibs())
}

func diffTables(old, new *RouteTableMap) []RouteDelta {
	var out []RouteDelta
	for _, td := range DiffMaps(old, new) {
		var before, after RouteTableFields
		if td.Old != nil {
			before = td.Old.Fields()
		}
		if td.New != nil {
			after = td.New.Fields()
		}
		for _, pair := range [][2]*RouteMap{{before.V4, after.V4}, {before.V6, after.V6}} {
			if pair[0] == nil && pair[1] == nil {
				continue
			}
			for _, rd := range DiffMaps(pair[0], pair[1]) {
				out = append(out, RouteDelta{Router: td.ID(), NodeDelta: rd})
			}
		}
	}
	return out
}

// Entry is one flattened change, for logging and publication.
type Entry struct {
	Domain string
	Key    string
	Kind   ChangeKind
	Old    any
	New    any
}

func appendEntries[K comparable, F Fields[K, F]](out []Entry, domain string, ds []NodeDelta[K, F]) []Entry {
	for _, d := range ds {
		e := Entry{Domain: domain, Key: fmt.Sprint(d.ID()), Kind: d.Kind}
		if d.Old != nil {
			e.Old = d.Old.Fields()
		}
		if d.New != nil {
			e.New = d.New.Fields()
		}
		out = append(out, e)
	}
	return out
}

func appendRouteEntries(out []Entry, domain string, ds []RouteDelta) []Entry {
	for _, d := range ds {
		e := Entry{Domain: domain, Key: fmt.Sprintf("%d|%s", int(d.Router), d.ID()), Kind: d.Kind}
		if d.Old != nil {
			e.Old = d.Old.Fields()
		}
		if d.New != nil {
			e.New = d.New.Fields()
		}
		out = append(out, e)
	}
	return out
}

func singletonEntry[F Fields[Singleton, F]](domain string, old, new *Node[Singleton, F]) (Entry, bool) {
	if old == new {
		return Entry{}, false
	}
	e := Entry{Domain: domain, Key: domain, Kind: Changed}
	switch {
	case old == nil:
		e.Kind = Added
	case new == nil:
		e.Kind = Removed
	}
	if old != nil {
		e.Old = old.Fields()
	}
	if new != nil {
		e.New = new.Fields()
	}
	return e, true
}

// Entries flattens the delta in a fixed domain order.
func (d Delta) Entries() []Entry {
	var out []Entry
	if e, ok := singletonEntry("switchSettings", d.Old.SwitchSettings(), d.New.SwitchSettings()); ok {
		out = append(out, e)
	}
	if e, ok := singletonEntry("controlPlane", d.Old.ControlPlane(), d.New.ControlPlane()); ok {
		out = append(out, e)
	}
	out = appendEntries(out, "ports", d.Ports())
	out = appendEntries(out, "aggregatePorts", d.AggregatePorts())
	out = appendEntries(out, "mirrors", d.Mirrors())
	out = appendEntries(out, "acls", d.Acls())
	out = appendEntries(out, "qosPolicies", d.QosPolicies())
	if oldQ, newQ := d.Old.DefaultDataPlaneQosPolicy(), d.New.DefaultDataPlaneQosPolicy(); oldQ != newQ {
		e := Entry{Domain: "defaultQosPolicy", Key: "default", Kind: Changed}
		if oldQ != nil {
			e.Key, e.Old = oldQ.ID(), oldQ.Fields()
		} else {
			e.Kind = Added
		}
		if newQ != nil {
			e.Key, e.New = newQ.ID(), newQ.Fields()
		} else {
			e.Kind = Removed
		}
		out = append(out, e)
	}
	out = appendEntries(out, "interfaces", d.Interfaces())
	out = appendEntries(out, "vlans", d.Vlans())
	out = appendRouteEntries(out, "routes", d.Routes())
	out = appendRouteEntries(out, "fibs", d.Fibs())
	if d.Old.Scalars() != d.New.Scalars() {
		out = append(out, Entry{Domain: "scalars", Key: "scalars", Kind: Changed, Old: d.Old.Scalars(), New: d.New.Scalars()})
	}
	out = appendEntries(out, "sflowCollectors", d.SflowCollectors())
	out = appendEntries(out, "loadBalancers", d.LoadBalancers())
	return out
}
