// Package rib is the pluggable routing information base. A RIB owns the
// per-router route tables and pushes the resolved routes of each router
// into the forwarding plane through a FibUpdateFunc.
package rib

import (
	"maps"
	"net/netip"
	"slices"
	"sync"

	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// FibUpdateFunc receives the complete v4 and v6 routes of one router.
// cookie is handed through unchanged from the call that triggered it.
type FibUpdateFunc func(router state.RouterID, v4, v6 *state.RouteMap, cookie any)

// RoutingInformationBase is what the reconciler drives when route tables
// are not embedded in the switch state.
type RoutingInformationBase interface {
	// Reconfigure computes the tables that replace the interface and
	// static routes of every router, then calls update once per router
	// they hold. The RIB itself is unchanged until commit is called, so a
	// pass that fails later leaves it as it was.
	Reconfigure(intfRoutes state.InterfaceRoutes, statics []state.StaticRoute, update FibUpdateFunc, cookie any) (commit func() bool, err error)
}

// Memory is an in-process RIB built on the same route updater as the
// embedded route tables. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	tables *state.RouteTableMap
}

var _ RoutingInformationBase = (*Memory)(nil)

// NewMemory returns an empty RIB.
func NewMemory() *Memory {
	t := state.NewRouteTableMap()
	t.Publish()
	return &Memory{tables: t}
}

// Tables returns the current route tables. The result is published.
func (m *Memory) Tables() *state.RouteTableMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables
}

// Reconfigure implements RoutingInformationBase. Routers that have neither
// connected networks nor static routes are dropped along with every route
// they hold. Routes of other clients on surviving routers are kept.
//
// commit installs the computed tables unless the RIB changed in between,
// in which case it reports false and the caller's pass is stale.
func (m *Memory) Reconfigure(intfRoutes state.InterfaceRoutes, statics []state.StaticRoute, update FibUpdateFunc, cookie any) (func() bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keep := map[state.RouterID]bool{}
	for id := range intfRoutes {
		keep[id] = true
	}
	for _, s := range statics {
		keep[s.Router] = true
	}

	base := m.tables
	u := state.NewRouteUpdater(base)
	for _, id := range base.Keys() {
		if !keep[id] {
			u.DelRouter(id)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(keep)) {
		u.RemoveAllRoutesForClient(id, state.ClientInterface)
		u.RemoveAllRoutesForClient(id, state.ClientStatic)
		routes, ok := intfRoutes[id]
		if !ok {
			u.DelLinkLocalRoutes(id)
			continue
		}
		for p, addr := range routes {
			u.AddInterfaceRoute(id, p, addr)
		}
		u.AddLinkLocalRoutes(id)
	}
	for _, s := range statics {
		u.AddRoute(s.Router, s.Prefix, state.ClientStatic, s.Entry())
	}

	next := u.UpdateDone()
	util.WithFields(map[string]interface{}{
		"routers": len(keep),
		"changed": next != nil,
	}).Debug("rib reconfigured")
	if next == nil {
		next = base
	} else {
		next.Publish()
	}

	if update != nil {
		for _, n := range next.Nodes() {
			f := n.Fields()
			update(f.ID, f.V4, f.V6, cookie)
		}
	}
	commit := func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.tables != base {
			return false
		}
		m.tables = next
		return true
	}
	return commit, nil
}

// AddRoute installs client's entry for prefix outside of a
// reconfiguration, then pushes the router's routes to update. Static and
// interface entries added this way are replaced by the next Reconfigure.
func (m *Memory) AddRoute(router state.RouterID, prefix netip.Prefix, client state.ClientID, entry state.NextHopEntry, update FibUpdateFunc, cookie any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := state.NewRouteUpdater(m.tables)
	u.AddRoute(router, prefix, client, entry)
	m.commit(u)
	m.push(router, update, cookie)
}

// DeleteRoute removes client's entry for prefix, then pushes the router's
// routes to update.
func (m *Memory) DeleteRoute(router state.RouterID, prefix netip.Prefix, client state.ClientID, update FibUpdateFunc, cookie any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := state.NewRouteUpdater(m.tables)
	u.DelRoute(router, prefix, client)
	m.commit(u)
	m.push(router, update, cookie)
}

func (m *Memory) commit(u *state.RouteUpdater) bool {
	next := u.UpdateDone()
	if next == nil {
		return false
	}
	next.Publish()
	m.tables = next
	return true
}

func (m *Memory) push(router state.RouterID, update FibUpdateFunc, cookie any) {
	if update == nil {
		return
	}
	if n := m.tables.Get(router); n != nil {
		update(router, n.Fields().V4, n.Fields().V6, cookie)
		return
	}
	update(router, state.NewRouteMap(), state.NewRouteMap(), cookie)
}
