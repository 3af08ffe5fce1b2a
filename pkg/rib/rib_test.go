package rib

import (
	"net/netip"
	"slices"
	"testing"

	"github.com/newtron-network/swreconcile/pkg/state"
)

type fibCall struct {
	v4, v6 *state.RouteMap
	cookie any
}

func recorder(calls map[state.RouterID]fibCall) FibUpdateFunc {
	return func(router state.RouterID, v4, v6 *state.RouteMap, cookie any) {
		calls[router] = fibCall{v4: v4, v6: v6, cookie: cookie}
	}
}

func connected(routers ...state.RouterID) state.InterfaceRoutes {
	r := state.InterfaceRoutes{}
	for _, id := range routers {
		r.Add(id, netip.MustParsePrefix("10.0.0.0/24"), state.ConnectedAddr{
			Interface: state.InterfaceID(id + 1),
			Addr:      netip.MustParseAddr("10.0.0.1"),
		})
	}
	return r
}

// reconfigure runs one committed reconfiguration.
func reconfigure(t *testing.T, m *Memory, intf state.InterfaceRoutes, statics []state.StaticRoute, update FibUpdateFunc, cookie any) {
	t.Helper()
	commit, err := m.Reconfigure(intf, statics, update, cookie)
	if err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if !commit() {
		t.Fatal("commit() = false, want the tables installed")
	}
}

func TestMemoryReconfigure(t *testing.T) {
	m := NewMemory()
	statics := []state.StaticRoute{{
		Router:   0,
		Prefix:   netip.MustParsePrefix("192.168.0.0/16"),
		Action:   state.ForwardNextHops,
		NextHops: []netip.Addr{netip.MustParseAddr("10.0.0.2")},
	}}

	calls := map[state.RouterID]fibCall{}
	reconfigure(t, m, connected(0), statics, recorder(calls), "cookie")

	got, ok := calls[0]
	if !ok || len(calls) != 1 {
		t.Fatalf("update called for %v, want router 0 only", calls)
	}
	if got.cookie != "cookie" {
		t.Errorf("cookie = %v, want %q", got.cookie, "cookie")
	}
	if got.v4.Len() != 2 || got.v6.Len() != 1 {
		t.Errorf("route counts = v4 %d v6 %d, want 2 and 1", got.v4.Len(), got.v6.Len())
	}
	static := got.v4.Get(netip.MustParsePrefix("192.168.0.0/16"))
	if static == nil || !static.Fields().Resolved {
		t.Fatalf("static route = %v, want resolved", static)
	}
	if hop := static.Fields().Forward.NextHops[0]; hop.Interface != 1 {
		t.Errorf("next hop interface = %d, want 1", hop.Interface)
	}
	if !m.Tables().IsPublished() {
		t.Error("Tables() should be published")
	}
}

func TestMemoryReconfigureDropsRouters(t *testing.T) {
	m := NewMemory()
	reconfigure(t, m, connected(0, 1), nil, recorder(map[state.RouterID]fibCall{}), nil)
	calls := map[state.RouterID]fibCall{}
	reconfigure(t, m, connected(0), nil, recorder(calls), nil)
	if got := m.Tables().Keys(); !slices.Equal(got, []state.RouterID{0}) {
		t.Errorf("Tables().Keys() = %v, want [0]", got)
	}
	if _, ok := calls[1]; ok {
		t.Error("update called for a dropped router")
	}
}

func TestMemoryReconfigureSharesUnchanged(t *testing.T) {
	m := NewMemory()
	first := map[state.RouterID]fibCall{}
	second := map[state.RouterID]fibCall{}
	reconfigure(t, m, connected(0), nil, recorder(first), nil)
	reconfigure(t, m, connected(0), nil, recorder(second), nil)

	if first[0].v4 != second[0].v4 || first[0].v6 != second[0].v6 {
		t.Error("identical reconfiguration should hand out the same route maps")
	}
}

func TestMemoryOutOfBandRoutes(t *testing.T) {
	m := NewMemory()
	reconfigure(t, m, connected(0), nil, nil, nil)

	staticPrefix := netip.MustParsePrefix("172.16.0.0/12")
	bgpPrefix := netip.MustParsePrefix("198.51.100.0/24")
	calls := map[state.RouterID]fibCall{}
	m.AddRoute(0, staticPrefix, state.ClientStatic, state.NewActionEntry(state.ForwardDrop, state.DistanceStatic), recorder(calls), nil)
	m.AddRoute(0, bgpPrefix, state.ClientBGP, state.NewActionEntry(state.ForwardToCPU, state.DistanceEBGP), recorder(calls), nil)

	if calls[0].v4.Get(staticPrefix) == nil || calls[0].v4.Get(bgpPrefix) == nil {
		t.Fatal("AddRoute() should push both routes")
	}

	calls = map[state.RouterID]fibCall{}
	reconfigure(t, m, connected(0), nil, recorder(calls), nil)
	if calls[0].v4.Get(staticPrefix) != nil {
		t.Error("a full sync should remove out-of-band static routes")
	}
	if calls[0].v4.Get(bgpPrefix) == nil {
		t.Error("a full sync should keep routes of other clients")
	}

	m.DeleteRoute(0, bgpPrefix, state.ClientBGP, recorder(calls), nil)
	if calls[0].v4.Get(bgpPrefix) != nil {
		t.Error("DeleteRoute() should remove the route")
	}
}

func TestMemoryDeleteLastRoute(t *testing.T) {
	m := NewMemory()
	prefix := netip.MustParsePrefix("203.0.113.0/24")
	m.AddRoute(5, prefix, state.ClientBGP, state.NewActionEntry(state.ForwardDrop, state.DistanceEBGP), nil, nil)

	calls := map[state.RouterID]fibCall{}
	m.DeleteRoute(5, prefix, state.ClientBGP, recorder(calls), nil)
	got, ok := calls[5]
	if !ok {
		t.Fatal("DeleteRoute() did not push the emptied router")
	}
	if got.v4.Len() != 0 || got.v6.Len() != 0 {
		t.Errorf("route counts = v4 %d v6 %d, want empty", got.v4.Len(), got.v6.Len())
	}
	if m.Tables().Len() != 0 {
		t.Errorf("Tables().Len() = %d, want 0", m.Tables().Len())
	}
}

func TestMemoryReconfigureStaged(t *testing.T) {
	m := NewMemory()
	before := m.Tables()

	calls := map[state.RouterID]fibCall{}
	commit, err := m.Reconfigure(connected(0), nil, recorder(calls), nil)
	if err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if _, ok := calls[0]; !ok {
		t.Fatal("update not called before commit")
	}
	if m.Tables() != before {
		t.Fatal("Reconfigure() changed the tables before commit")
	}
	if !commit() {
		t.Fatal("commit() = false, want true")
	}
	if got := m.Tables().Keys(); !slices.Equal(got, []state.RouterID{0}) {
		t.Errorf("Tables().Keys() after commit = %v, want [0]", got)
	}
}

func TestMemoryStaleCommit(t *testing.T) {
	m := NewMemory()
	stale, err := m.Reconfigure(connected(0), nil, nil, nil)
	if err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	m.AddRoute(3, netip.MustParsePrefix("203.0.113.0/24"), state.ClientBGP,
		state.NewActionEntry(state.ForwardDrop, state.DistanceEBGP), nil, nil)
	current := m.Tables()

	if stale() {
		t.Error("commit() = true after the rib changed, want false")
	}
	if m.Tables() != current {
		t.Error("a stale commit replaced the tables")
	}
}
