package reconcile

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// updateRoutes installs the connected routes of every router and re-syncs
// the static routes, in the embedded route tables or through the RIB.
func (c *Context) updateRoutes() (bool, error) {
	statics, err := c.staticRoutes()
	if err != nil {
		return false, err
	}
	c.statics = statics
	if c.rib != nil {
		return c.updateFibs()
	}
	return c.updateRouteTables()
}

// staticRoutes parses every configured static route: drops, punts, then
// routes with next hops.
func (c *Context) staticRoutes() ([]state.StaticRoute, error) {
	var out []state.StaticRoute
	for _, r := range c.cfg.StaticRoutesToNull {
		p, err := parseRoutePrefix(r.Prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, state.StaticRoute{Router: state.RouterID(r.RouterID), Prefix: p, Action: state.ForwardDrop})
	}
	for _, r := range c.cfg.StaticRoutesToCPU {
		p, err := parseRoutePrefix(r.Prefix)
		if err != nil {
			return nil, err
		}
		out = append(out, state.StaticRoute{Router: state.RouterID(r.RouterID), Prefix: p, Action: state.ForwardToCPU})
	}
	for _, r := range c.cfg.StaticRoutesWithNhops {
		p, err := parseRoutePrefix(r.Prefix)
		if err != nil {
			return nil, err
		}
		hops := make([]netip.Addr, 0, len(r.Nexthops))
		for _, s := range r.Nexthops {
			addr, err := util.ParseAddr(s)
			if err != nil || addr.Is4() != p.Addr().Is4() {
				return nil, util.NewRangeError(fmt.Sprintf("static route %s", p), "next hop", s, "an address of the prefix's family")
			}
			hops = append(hops, addr)
		}
		if len(hops) == 0 {
			return nil, util.NewRangeError(fmt.Sprintf("static route %s", p), "next hops", "[]", "at least one next hop")
		}
		out = append(out, state.StaticRoute{
			Router:   state.RouterID(r.RouterID),
			Prefix:   p,
			Action:   state.ForwardNextHops,
			NextHops: hops,
		})
	}
	return out, nil
}

func parseRoutePrefix(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, util.NewRangeError("static route", "prefix", s, "a CIDR prefix")
	}
	return netip.PrefixFrom(p.Addr().Unmap(), p.Bits()).Masked(), nil
}

// updateRouteTables edits the embedded route tables: stale connected
// routes are removed, current ones upserted with the link-local route of
// each router, then the static routes are fully re-synced.
func (c *Context) updateRouteTables() (bool, error) {
	u := state.NewRouteUpdater(c.orig.RouteTables())

	gone := map[state.RouterID]bool{}
	for _, n := range c.orig.Interfaces().Nodes() {
		f := n.Fields()
		routes, ok := c.intfRoutes[f.RouterID]
		if !ok {
			gone[f.RouterID] = true
		}
		for _, p := range f.Prefixes() {
			if _, still := routes[p]; !still {
				u.DelRoute(f.RouterID, p, state.ClientInterface)
			}
		}
	}
	for _, router := range slices.Sorted(maps.Keys(gone)) {
		u.DelLinkLocalRoutes(router)
	}

	for _, router := range slices.Sorted(maps.Keys(c.intfRoutes)) {
		for p, addr := range c.intfRoutes[router] {
			u.AddInterfaceRoute(router, p, addr)
		}
		u.AddLinkLocalRoutes(router)
	}
	u.SyncStaticRoutes(c.statics)

	tables := u.UpdateDone()
	if tables == nil {
		return false, nil
	}
	c.next.SetRouteTables(tables)
	return true, nil
}

// updateFibs keeps one FIB container per router that has interfaces, then
// hands the routes to the RIB, which folds each router's result back into
// the root through foldFib. The RIB's own tables are committed by Run once
// the pass has been validated.
func (c *Context) updateFibs() (bool, error) {
	orig := c.orig.Fibs()
	routers := map[state.RouterID]bool{}
	for _, ic := range c.cfg.Interfaces {
		routers[state.RouterID(ic.RouterID)] = true
	}

	fibs := newCollection[state.RouterID, state.RouteTableFields]("fib", orig)
	for _, id := range slices.Sorted(maps.Keys(routers)) {
		f := state.RouteTableFields{ID: id, V4: state.NewRouteMap(), V6: state.NewRouteMap()}
		if old := orig.Get(id); old != nil {
			f = old.Fields()
		}
		if err := fibs.put(f); err != nil {
			return false, err
		}
	}
	m, err := fibs.done()
	if err != nil {
		return false, err
	}
	if m != nil {
		c.next.SetFibs(m)
	}

	folder := &fibFolder{next: c.next}
	commit, err := c.rib.Reconfigure(c.intfRoutes, c.statics, foldFib, folder)
	if err != nil {
		return false, fmt.Errorf("reconfiguring rib: %w", err)
	}
	c.ribCommit = commit
	return m != nil || folder.changed, nil
}

// fibFolder is the cookie handed to the RIB.
type fibFolder struct {
	next    *state.WritableState
	changed bool
}

// foldFib replaces the FIB container of router when the RIB's routes for
// it differ. Routers without a container are ignored.
func foldFib(router state.RouterID, v4, v6 *state.RouteMap, cookie any) {
	folder := cookie.(*fibFolder)
	fibs := folder.next.State().Fibs()
	old := fibs.Get(router)
	if old == nil {
		util.WithField("router", int(router)).Debug("rib routes for a router without interfaces ignored")
		return
	}
	want := state.RouteTableFields{ID: router, V4: v4, V6: v6}
	if old.Equal(want) {
		return
	}
	nodes := fibs.Nodes()
	for i, n := range nodes {
		if n.ID() == router {
			nodes[i] = old.Derive(want)
		}
	}
	next, _ := fibs.CloneWith(nodes)
	folder.next.SetFibs(next)
	folder.changed = true
}
