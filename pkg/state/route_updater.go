package state

import (
	"maps"
	"net/netip"
	"slices"

	"go4.org/netipx"

	"github.com/newtron-network/swreconcile/pkg/util"
)

// ConnectedAddr is the interface address behind a directly connected route.
type ConnectedAddr struct {
	Interface InterfaceID
	Addr      netip.Addr
}

// InterfaceRoutes maps each router to its connected networks, keyed by the
// masked prefix.
type InterfaceRoutes map[RouterID]map[netip.Prefix]ConnectedAddr

// Add records a connected network. The first address for a prefix wins;
// later ones in the same network are ignored.
func (r InterfaceRoutes) Add(router RouterID, prefix netip.Prefix, addr ConnectedAddr) {
	if r[router] == nil {
		r[router] = map[netip.Prefix]ConnectedAddr{}
	}
	p := prefix.Masked()
	if _, ok := r[router][p]; ok {
		return
	}
	r[router][p] = addr
}

// StaticRoute is one configured static route. NextHops is only used when
// Action is ForwardNextHops.
type StaticRoute struct {
	Router   RouterID
	Prefix   netip.Prefix
	Action   ForwardAction
	NextHops []netip.Addr
}

// Entry returns the next-hop entry the static client installs.
func (s StaticRoute) Entry() NextHopEntry {
	if s.Action != ForwardNextHops {
		return NewActionEntry(s.Action, DistanceStatic)
	}
	hops := make([]NextHop, len(s.NextHops))
	for i, a := range s.NextHops {
		hops[i] = UnresolvedNextHop(a, DefaultNextHopWeight)
	}
	return NewNextHopEntry(DistanceStatic, hops...)
}

// RouteUpdater batches route changes against a route table collection and
// produces the next collection, resolving next hops along the way.
type RouteUpdater struct {
	orig   *RouteTableMap
	tables map[RouterID]*workingTable
}

type workingTable struct {
	orig   *RouteTable
	routes map[netip.Prefix]RouteFields
}

// NewRouteUpdater starts a batch on orig, which may be nil.
func NewRouteUpdater(orig *RouteTableMap) *RouteUpdater {
	if orig == nil {
		orig = NewRouteTableMap()
	}
	return &RouteUpdater{orig: orig, tables: map[RouterID]*workingTable{}}
}

func (u *RouteUpdater) table(router RouterID) *workingTable {
	if t, ok := u.tables[router]; ok {
		return t
	}
	t := &workingTable{routes: map[netip.Prefix]RouteFields{}}
	if n := u.orig.Get(router); n != nil {
		t.orig = n
		for _, m := range []*RouteMap{n.Fields().V4, n.Fields().V6} {
			for _, r := range m.Nodes() {
				t.routes[r.ID()] = r.Fields()
			}
		}
	}
	u.tables[router] = t
	return t
}

// AddRoute installs or replaces client's entry for prefix.
func (u *RouteUpdater) AddRoute(router RouterID, prefix netip.Prefix, client ClientID, entry NextHopEntry) {
	t := u.table(router)
	p := prefix.Masked()
	r, ok := t.routes[p]
	if !ok {
		r = RouteFields{Prefix: p}
	}
	r.Entries = maps.Clone(r.Entries)
	if r.Entries == nil {
		r.Entries = map[ClientID]NextHopEntry{}
	}
	r.Entries[client] = entry
	t.routes[p] = r
}

// DelRoute removes client's entry for prefix. A route left with no entries
// is deleted.
func (u *RouteUpdater) DelRoute(router RouterID, prefix netip.Prefix, client ClientID) {
	t := u.table(router)
	p := prefix.Masked()
	r, ok := t.routes[p]
	if !ok {
		return
	}
	if _, has := r.Entries[client]; !has {
		return
	}
	if len(r.Entries) == 1 {
		delete(t.routes, p)
		return
	}
	r.Entries = maps.Clone(r.Entries)
	delete(r.Entries, client)
	t.routes[p] = r
}

// RemoveAllRoutesForClient drops every entry client owns in router's table.
func (u *RouteUpdater) RemoveAllRoutesForClient(router RouterID, client ClientID) {
	t := u.table(router)
	for p, r := range t.routes {
		if _, has := r.Entries[client]; has {
			u.DelRoute(router, p, client)
		}
	}
}

// DelRouter removes every route of router; its table is dropped by
// UpdateDone.
func (u *RouteUpdater) DelRouter(router RouterID) {
	clear(u.table(router).routes)
}

// AddLinkLocalRoutes punts the IPv6 link-local subnet to the CPU.
func (u *RouteUpdater) AddLinkLocalRoutes(router RouterID) {
	u.AddRoute(router, util.LinkLocalPrefix, ClientLinkLocal, NewActionEntry(ForwardToCPU, DistanceConnected))
}

// DelLinkLocalRoutes removes the route added by AddLinkLocalRoutes.
func (u *RouteUpdater) DelLinkLocalRoutes(router RouterID) {
	u.DelRoute(router, util.LinkLocalPrefix, ClientLinkLocal)
}

// AddInterfaceRoute installs the directly connected route of addr.
func (u *RouteUpdater) AddInterfaceRoute(router RouterID, prefix netip.Prefix, addr ConnectedAddr) {
	hop := ResolvedNextHop(addr.Addr, addr.Interface, DefaultNextHopWeight)
	u.AddRoute(router, prefix, ClientInterface, NewNextHopEntry(DistanceConnected, hop))
}

// SyncStaticRoutes replaces the static client's routes on router 0 with
// routes. Routes on other routers are added on top of what they hold.
func (u *RouteUpdater) SyncStaticRoutes(routes []StaticRoute) {
	u.RemoveAllRoutesForClient(0, ClientStatic)
	for _, r := range routes {
		u.AddRoute(r.Router, r.Prefix, ClientStatic, r.Entry())
	}
}

// UpdateDone resolves every touched table and returns the new collection,
// or nil if nothing changed. Routes, route maps and tables whose content is
// unchanged are carried over as the very same nodes.
func (u *RouteUpdater) UpdateDone() *RouteTableMap {
	changed := false
	nodes := make([]*RouteTable, 0, u.orig.Len()+len(u.tables))
	for _, n := range u.orig.Nodes() {
		if _, touched := u.tables[n.ID()]; !touched {
			nodes = append(nodes, n)
		}
	}

	routers := slices.Sorted(maps.Keys(u.tables))
	for _, id := range routers {
		t := u.tables[id]
		n, tableChanged := t.build(id)
		changed = changed || tableChanged
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	if !changed {
		return nil
	}
	out, _ := u.orig.CloneWith(nodes)
	return out
}

func (t *workingTable) build(id RouterID) (*RouteTable, bool) {
	resolve(t.routes)

	var origFields RouteTableFields
	if t.orig != nil {
		origFields = t.orig.Fields()
	}
	v4, v4Changed := buildRouteMap(origFields.V4, t.routes, true)
	v6, v6Changed := buildRouteMap(origFields.V6, t.routes, false)

	switch {
	case t.orig != nil && !v4Changed && !v6Changed:
		return t.orig, false
	case v4.Len() == 0 && v6.Len() == 0:
		return nil, t.orig != nil
	}
	fields := RouteTableFields{ID: id, V4: v4, V6: v6}
	if t.orig != nil {
		return t.orig.Derive(fields), true
	}
	return NewNode[RouterID](fields), true
}

func buildRouteMap(orig *RouteMap, routes map[netip.Prefix]RouteFields, v4 bool) (*RouteMap, bool) {
	if orig == nil {
		orig = NewRouteMap()
	}
	changed := false
	var nodes []*Route
	for p, f := range routes {
		if p.Addr().Is4() != v4 {
			continue
		}
		old := orig.Get(p)
		switch {
		case old != nil && old.Equal(f):
			nodes = append(nodes, old)
		case old != nil:
			nodes = append(nodes, old.Derive(f))
			changed = true
		default:
			nodes = append(nodes, NewNode[netip.Prefix](f))
			changed = true
		}
	}
	if len(nodes) != orig.Len() {
		changed = true
	}
	if !changed {
		return orig, false
	}
	out, _ := orig.CloneWith(nodes)
	return out, true
}

// connectedSets partitions the address space covered by a table's
// directly connected routes between their interfaces. Each address belongs
// to the interface of the longest connected prefix that contains it.
type connectedSets struct {
	ids  []InterfaceID
	sets []*netipx.IPSet
}

func newConnectedSets(routes map[netip.Prefix]RouteFields) connectedSets {
	owner := map[netip.Prefix]InterfaceID{}
	for p, r := range routes {
		client, e, ok := r.BestEntry()
		if !ok || client != ClientInterface || len(e.NextHops) == 0 {
			continue
		}
		owner[p] = e.NextHops[0].Interface
	}
	connected := slices.SortedFunc(maps.Keys(owner), func(a, b netip.Prefix) int {
		if a.Bits() != b.Bits() {
			return b.Bits() - a.Bits()
		}
		return a.Addr().Compare(b.Addr())
	})

	var claimed netipx.IPSetBuilder
	builders := map[InterfaceID]*netipx.IPSetBuilder{}
	for _, p := range connected {
		taken, _ := claimed.IPSet()
		var own netipx.IPSetBuilder
		own.AddPrefix(p)
		own.RemoveSet(taken)
		part, _ := own.IPSet()

		b := builders[owner[p]]
		if b == nil {
			b = &netipx.IPSetBuilder{}
			builders[owner[p]] = b
		}
		b.AddSet(part)
		claimed.AddPrefix(p)
	}

	var cs connectedSets
	for _, id := range slices.Sorted(maps.Keys(builders)) {
		set, err := builders[id].IPSet()
		if err != nil {
			continue
		}
		cs.ids = append(cs.ids, id)
		cs.sets = append(cs.sets, set)
	}
	return cs
}

// lookup returns the interface a directly reachable address sits behind.
func (cs connectedSets) lookup(a netip.Addr) (InterfaceID, bool) {
	for i, set := range cs.sets {
		if set.Contains(a) {
			return cs.ids[i], true
		}
	}
	return 0, false
}

// resolve computes the forwarding decision of every route. Next hops are
// resolved against the table's directly connected routes by longest match.
func resolve(routes map[netip.Prefix]RouteFields) {
	connected := newConnectedSets(routes)

	for p, r := range routes {
		client, e, _ := r.BestEntry()
		r.Connected = client == ClientInterface
		r.Forward = ForwardInfo{}
		r.Resolved, r.Unresolvable = false, false

		if e.Action != ForwardNextHops {
			r.Forward.Action = e.Action
			r.Resolved = true
			routes[p] = r
			continue
		}
		var hops []NextHop
		for _, h := range e.NextHops {
			if h.Resolved {
				hops = append(hops, h)
				continue
			}
			if intf, ok := connected.lookup(h.Addr); ok {
				hops = append(hops, ResolvedNextHop(h.Addr, intf, h.Weight))
			}
		}
		if len(hops) == 0 {
			r.Unresolvable = true
		} else {
			slices.SortFunc(hops, compareNextHops)
			r.Forward = ForwardInfo{Action: ForwardNextHops, NextHops: hops}
			r.Resolved = true
		}
		routes[p] = r
	}
}
