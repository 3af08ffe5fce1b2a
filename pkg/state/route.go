package state

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"
	"strings"
)

// ClientID identifies the producer of a route.
type ClientID int

const (
	ClientBGP       ClientID = 0
	ClientStatic    ClientID = 1
	ClientInterface ClientID = 2
	ClientLinkLocal ClientID = 3
)

func (c ClientID) String() string {
	switch c {
	case ClientBGP:
		return "bgp"
	case ClientStatic:
		return "static"
	case ClientInterface:
		return "interface"
	case ClientLinkLocal:
		return "link-local"
	}
	return fmt.Sprintf("client-%d", int(c))
}

// AdminDistance ranks clients; the lowest distance wins.
type AdminDistance int

const (
	DistanceConnected AdminDistance = 0
	DistanceStatic    AdminDistance = 1
	DistanceEBGP      AdminDistance = 20
	DistanceIBGP      AdminDistance = 200
	DistanceMax       AdminDistance = 255
)

// ForwardAction is what the forwarding plane does with a matching packet.
type ForwardAction string

const (
	ForwardDrop     ForwardAction = "DROP"
	ForwardToCPU    ForwardAction = "TO_CPU"
	ForwardNextHops ForwardAction = "NEXTHOPS"
)

// DefaultNextHopWeight is the weight of a next hop in an equal-cost set.
const DefaultNextHopWeight = 1

// NextHop is a gateway address, optionally pinned to an egress interface.
type NextHop struct {
	Addr      netip.Addr
	Interface InterfaceID
	Resolved  bool
	Weight    int
}

// ResolvedNextHop returns a next hop whose egress interface is known.
func ResolvedNextHop(addr netip.Addr, intf InterfaceID, weight int) NextHop {
	return NextHop{Addr: addr, Interface: intf, Resolved: true, Weight: weight}
}

// UnresolvedNextHop returns a next hop that still needs a connected route.
func UnresolvedNextHop(addr netip.Addr, weight int) NextHop {
	return NextHop{Addr: addr, Weight: weight}
}

func (h NextHop) String() string {
	if h.Resolved {
		return fmt.Sprintf("%s@%d", h.Addr, int(h.Interface))
	}
	return h.Addr.String()
}

func compareNextHops(a, b NextHop) int {
	if c := a.Addr.Compare(b.Addr); c != 0 {
		return c
	}
	return int(a.Interface) - int(b.Interface)
}

// NextHopEntry is what one client wants for a prefix.
type NextHopEntry struct {
	Action        ForwardAction
	NextHops      []NextHop
	AdminDistance AdminDistance
}

// NewNextHopEntry returns a forwarding entry with the next hops sorted.
func NewNextHopEntry(distance AdminDistance, hops ...NextHop) NextHopEntry {
	hops = slices.Clone(hops)
	slices.SortFunc(hops, compareNextHops)
	return NextHopEntry{Action: ForwardNextHops, NextHops: hops, AdminDistance: distance}
}

// NewActionEntry returns a drop or punt entry.
func NewActionEntry(action ForwardAction, distance AdminDistance) NextHopEntry {
	return NextHopEntry{Action: action, AdminDistance: distance}
}

// ForwardInfo is the resolved forwarding decision of a route.
type ForwardInfo struct {
	Action   ForwardAction
	NextHops []NextHop
}

func (f ForwardInfo) String() string {
	if f.Action != ForwardNextHops {
		return string(f.Action)
	}
	hops := make([]string, len(f.NextHops))
	for i, h := range f.NextHops {
		hops[i] = h.String()
	}
	return strings.Join(hops, ",")
}

// RouteFields is one prefix of a route table. Entries holds what every
// client asked for; Forward is the resolved result of the best entry.
type RouteFields struct {
	Prefix       netip.Prefix
	Entries      map[ClientID]NextHopEntry
	Forward      ForwardInfo
	Connected    bool
	Resolved     bool
	Unresolvable bool
}

func (f RouteFields) Key() netip.Prefix { return f.Prefix }

func (f RouteFields) Clone() RouteFields {
	f.Entries = maps.Clone(f.Entries)
	f.Forward.NextHops = slices.Clone(f.Forward.NextHops)
	return f
}

// BestEntry returns the entry with the lowest admin distance; ties go to
// the lowest client id.
func (f RouteFields) BestEntry() (ClientID, NextHopEntry, bool) {
	var (
		bestID    ClientID
		best      NextHopEntry
		haveEntry bool
	)
	for id, e := range f.Entries {
		if !haveEntry || e.AdminDistance < best.AdminDistance ||
			(e.AdminDistance == best.AdminDistance && id < bestID) {
			bestID, best, haveEntry = id, e, true
		}
	}
	return bestID, best, haveEntry
}

// ComparePrefixes orders prefixes by address, then by length.
func ComparePrefixes(a, b netip.Prefix) int {
	if c := a.Addr().Compare(b.Addr()); c != 0 {
		return c
	}
	return a.Bits() - b.Bits()
}

type (
	Route    = Node[netip.Prefix, RouteFields]
	RouteMap = Map[netip.Prefix, RouteFields]
)

// NewRouteMap returns an empty route collection.
func NewRouteMap() *RouteMap { return NewMap[netip.Prefix, RouteFields](ComparePrefixes) }

// RouteTableFields holds the v4 and v6 routes of one router. The same shape
// is used for FIB containers computed by an external RIB.
type RouteTableFields struct {
	ID RouterID
	V4 *RouteMap
	V6 *RouteMap
}

func (f RouteTableFields) Key() RouterID { return f.ID }

// Clone shares the route maps; they are persistent and replaced wholesale.
func (f RouteTableFields) Clone() RouteTableFields { return f }

// Equal compares the route maps by node identity.
func (f RouteTableFields) Equal(o RouteTableFields) bool {
	return f.ID == o.ID && f.V4.Equal(o.V4) && f.V6.Equal(o.V6)
}

func (f RouteTableFields) publishChildren() {
	f.V4.Publish()
	f.V6.Publish()
}

// Routes returns the map of the family of p.
func (f RouteTableFields) Routes(p netip.Prefix) *RouteMap {
	if p.Addr().Is4() {
		return f.V4
	}
	return f.V6
}

// Lookup returns the route for exactly p, or nil.
func (f RouteTableFields) Lookup(p netip.Prefix) *Route {
	return f.Routes(p).Get(p.Masked())
}

// Empty reports whether the table holds no routes.
func (f RouteTableFields) Empty() bool { return f.V4.Len() == 0 && f.V6.Len() == 0 }

type (
	RouteTable    = Node[RouterID, RouteTableFields]
	RouteTableMap = Map[RouterID, RouteTableFields]

	FibContainer    = Node[RouterID, RouteTableFields]
	FibContainerMap = Map[RouterID, RouteTableFields]
)

// NewRouteTableMap returns an empty route table collection.
func NewRouteTableMap() *RouteTableMap { return NewOrderedMap[RouterID, RouteTableFields]() }

// NewFibContainerMap returns an empty FIB collection.
func NewFibContainerMap() *FibContainerMap { return NewOrderedMap[RouterID, RouteTableFields]() }
