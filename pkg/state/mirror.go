package state

import (
	"net/netip"
)

// TunnelType is the encapsulation of a remote mirror.
type TunnelType string

const (
	TunnelGRE   TunnelType = "GRE"
	TunnelSflow TunnelType = "SFLOW"
)

// MirrorTunnel is the resolved encapsulation of a remote mirror. It is
// filled in by neighbor resolution outside the reconciler and survives
// reconciliation as long as the destination does not change.
type MirrorTunnel struct {
	SrcIP   netip.Addr
	DstIP   netip.Addr
	SrcMAC  string
	DstMAC  string
	UDPSrc  int
	UDPDst  int
	TTL     int
	Type    TunnelType
	Through PortID
}

// MirrorFields is one named mirror session.
type MirrorFields struct {
	Name        string
	EgressPort  *PortID
	Destination netip.Addr
	Source      netip.Addr
	TunnelType  TunnelType
	UDPSrcPort  int
	UDPDstPort  int
	Dscp        int
	Truncate    bool
	Resolved    *MirrorTunnel
}

func (f MirrorFields) Key() string { return f.Name }

func (f MirrorFields) Clone() MirrorFields {
	if f.EgressPort != nil {
		p := *f.EgressPort
		f.EgressPort = &p
	}
	if f.Resolved != nil {
		t := *f.Resolved
		f.Resolved = &t
	}
	return f
}

// IsTunnel reports whether the mirror sends to a remote destination.
func (f MirrorFields) IsTunnel() bool { return f.Destination.IsValid() }

// IsResolved reports whether the mirror has an egress port to send on.
func (f MirrorFields) IsResolved() bool {
	if f.IsTunnel() {
		return f.Resolved != nil
	}
	return f.EgressPort != nil
}

type (
	Mirror    = Node[string, MirrorFields]
	MirrorMap = Map[string, MirrorFields]
)

// NewMirrorMap returns an empty mirror collection.
func NewMirrorMap() *MirrorMap { return NewOrderedMap[string, MirrorFields]() }

// SflowCollectorFields is one sFlow receiver, keyed "ip:port".
type SflowCollectorFields struct {
	ID      string
	Address netip.AddrPort
}

func (f SflowCollectorFields) Key() string                 { return f.ID }
func (f SflowCollectorFields) Clone() SflowCollectorFields { return f }

type (
	SflowCollector    = Node[string, SflowCollectorFields]
	SflowCollectorMap = Map[string, SflowCollectorFields]
)

// NewSflowCollectorMap returns an empty collector collection.
func NewSflowCollectorMap() *SflowCollectorMap {
	return NewOrderedMap[string, SflowCollectorFields]()
}
