package state

import (
	"maps"
	"net"
	"net/netip"
)

// NeighborResponse is one entry of a VLAN's ARP or NDP responder table.
type NeighborResponse struct {
	MAC       string
	Interface InterfaceID
}

// VlanFields is the state of one VLAN.
type VlanFields struct {
	ID                   VlanID
	Name                 string
	InterfaceID          InterfaceID
	Ports                map[PortID]VlanMembership
	DhcpV4Relay          netip.Addr
	DhcpV6Relay          netip.Addr
	DhcpV4RelayOverrides map[string]netip.Addr
	DhcpV6RelayOverrides map[string]netip.Addr
	ArpResponseTable     map[netip.Addr]NeighborResponse
	NdpResponseTable     map[netip.Addr]NeighborResponse
}

func (f VlanFields) Key() VlanID { return f.ID }

func (f VlanFields) Clone() VlanFields {
	f.Ports = maps.Clone(f.Ports)
	f.DhcpV4RelayOverrides = maps.Clone(f.DhcpV4RelayOverrides)
	f.DhcpV6RelayOverrides = maps.Clone(f.DhcpV6RelayOverrides)
	f.ArpResponseTable = maps.Clone(f.ArpResponseTable)
	f.NdpResponseTable = maps.Clone(f.NdpResponseTable)
	return f
}

type (
	Vlan    = Node[VlanID, VlanFields]
	VlanMap = Map[VlanID, VlanFields]
)

// NewVlanMap returns an empty VLAN collection.
func NewVlanMap() *VlanMap { return NewOrderedMap[VlanID, VlanFields]() }

// InterfaceFields is the state of one layer 3 interface. Addresses maps
// each address, host bits kept, to its mask length.
type InterfaceFields struct {
	ID                  InterfaceID
	RouterID            RouterID
	VlanID              VlanID
	Name                string
	MAC                 net.HardwareAddr
	MTU                 int
	Addresses           map[netip.Addr]int
	IsVirtual           bool
	IsStateSyncDisabled bool
	Ndp                 NdpSettings
}

// NdpSettings is the router advertisement configuration of an interface.
type NdpSettings struct {
	RouterAdvertisementSeconds     int
	CurHopLimit                    int
	RouterLifetime                 int
	PrefixValidLifetimeSeconds     int
	PrefixPreferredLifetimeSeconds int
	ManagedBit                     bool
	OtherBit                       bool
	RouterAddress                  netip.Addr
}

func (f InterfaceFields) Key() InterfaceID { return f.ID }

func (f InterfaceFields) Clone() InterfaceFields {
	f.MAC = append(net.HardwareAddr(nil), f.MAC...)
	f.Addresses = maps.Clone(f.Addresses)
	return f
}

// Prefixes returns the masked networks of the interface's addresses.
func (f InterfaceFields) Prefixes() []netip.Prefix {
	out := make([]netip.Prefix, 0, len(f.Addresses))
	for addr, bits := range f.Addresses {
		out = append(out, netip.PrefixFrom(addr, bits).Masked())
	}
	return out
}

type (
	Interface    = Node[InterfaceID, InterfaceFields]
	InterfaceMap = Map[InterfaceID, InterfaceFields]
)

// NewInterfaceMap returns an empty interface collection.
func NewInterfaceMap() *InterfaceMap { return NewOrderedMap[InterfaceID, InterfaceFields]() }
