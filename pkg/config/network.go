package config

// SpanningTreeState of a VLAN member port.
type SpanningTreeState string

const (
	STPBlocking   SpanningTreeState = "BLOCKING"
	STPDisabled   SpanningTreeState = "DISABLED"
	STPForwarding SpanningTreeState = "FORWARDING"
	STPLearning   SpanningTreeState = "LEARNING"
	STPListening  SpanningTreeState = "LISTENING"
)

// VlanPort associates a port with a VLAN. Port VLAN membership is only
// ever configured through this list.
type VlanPort struct {
	VlanID            int               `json:"vlanID" yaml:"vlanID" validate:"min=0,max=4095"`
	LogicalPort       int               `json:"logicalPort" yaml:"logicalPort" validate:"min=0"`
	SpanningTreeState SpanningTreeState `json:"spanningTreeState,omitempty" yaml:"spanningTreeState,omitempty"`
	EmitTags          bool              `json:"emitTags" yaml:"emitTags"`
}

// Vlan is the configuration of one broadcast domain.
type Vlan struct {
	Name                 string            `json:"name" yaml:"name"`
	ID                   int               `json:"id" yaml:"id" validate:"min=0,max=4095"`
	RecordStats          bool              `json:"recordStats,omitempty" yaml:"recordStats,omitempty"`
	IntfID               *int              `json:"intfID,omitempty" yaml:"intfID,omitempty"`
	DhcpRelayAddressV4   string            `json:"dhcpRelayAddressV4,omitempty" yaml:"dhcpRelayAddressV4,omitempty" validate:"omitempty,ipv4"`
	DhcpRelayAddressV6   string            `json:"dhcpRelayAddressV6,omitempty" yaml:"dhcpRelayAddressV6,omitempty" validate:"omitempty,ipv6"`
	DhcpRelayOverridesV4 map[string]string `json:"dhcpRelayOverridesV4,omitempty" yaml:"dhcpRelayOverridesV4,omitempty" validate:"dive,keys,mac48,endkeys,ipv4"`
	DhcpRelayOverridesV6 map[string]string `json:"dhcpRelayOverridesV6,omitempty" yaml:"dhcpRelayOverridesV6,omitempty" validate:"dive,keys,mac48,endkeys,ipv6"`
}

// NdpConfig holds IPv6 router advertisement settings of an interface.
type NdpConfig struct {
	RouterAdvertisementSeconds     int    `json:"routerAdvertisementSeconds" yaml:"routerAdvertisementSeconds" validate:"min=0"`
	CurHopLimit                    int    `json:"curHopLimit" yaml:"curHopLimit" validate:"min=0,max=255"`
	RouterLifetime                 int    `json:"routerLifetime" yaml:"routerLifetime" validate:"min=0"`
	PrefixValidLifetimeSeconds     int    `json:"prefixValidLifetimeSeconds" yaml:"prefixValidLifetimeSeconds" validate:"min=0"`
	PrefixPreferredLifetimeSeconds int    `json:"prefixPreferredLifetimeSeconds" yaml:"prefixPreferredLifetimeSeconds" validate:"min=0"`
	RouterAdvertisementManagedBit  bool   `json:"routerAdvertisementManagedBit" yaml:"routerAdvertisementManagedBit"`
	RouterAdvertisementOtherBit    bool   `json:"routerAdvertisementOtherBit" yaml:"routerAdvertisementOtherBit"`
	RouterAddress                  string `json:"routerAddress,omitempty" yaml:"routerAddress,omitempty" validate:"omitempty,ipv6"`
}

// Interface is a layer 3 interface bound to a VLAN and a router.
type Interface struct {
	IntfID              int        `json:"intfID" yaml:"intfID" validate:"min=0"`
	RouterID            int        `json:"routerID" yaml:"routerID" validate:"min=0"`
	VlanID              int        `json:"vlanID" yaml:"vlanID" validate:"min=0,max=4095"`
	Name                string     `json:"name,omitempty" yaml:"name,omitempty"`
	Mac                 string     `json:"mac,omitempty" yaml:"mac,omitempty" validate:"omitempty,mac48"`
	MTU                 int        `json:"mtu,omitempty" yaml:"mtu,omitempty" validate:"min=0"`
	IPAddresses         []string   `json:"ipAddresses,omitempty" yaml:"ipAddresses,omitempty" validate:"dive,cidr"`
	Ndp                 *NdpConfig `json:"ndp,omitempty" yaml:"ndp,omitempty"`
	IsVirtual           bool       `json:"isVirtual,omitempty" yaml:"isVirtual,omitempty"`
	IsStateSyncDisabled bool       `json:"isStateSyncDisabled,omitempty" yaml:"isStateSyncDisabled,omitempty"`
}

// LacpPortRate is the LACPDU transmission rate.
type LacpPortRate string

const (
	LacpRateSlow LacpPortRate = "SLOW"
	LacpRateFast LacpPortRate = "FAST"
)

// LacpPortActivity is the LACP activity mode.
type LacpPortActivity string

const (
	LacpActive  LacpPortActivity = "ACTIVE"
	LacpPassive LacpPortActivity = "PASSIVE"
)

// AggregatePortMember is one subport of a LAG.
type AggregatePortMember struct {
	MemberPortID int              `json:"memberPortID" yaml:"memberPortID" validate:"min=0"`
	Priority     int              `json:"priority" yaml:"priority"`
	Rate         LacpPortRate     `json:"rate,omitempty" yaml:"rate,omitempty" validate:"omitempty,oneof=SLOW FAST"`
	Activity     LacpPortActivity `json:"activity,omitempty" yaml:"activity,omitempty" validate:"omitempty,oneof=ACTIVE PASSIVE"`
}

// MinimumCapacity is a closed union: an absolute link count or a fraction
// of the configured members.
type MinimumCapacity struct {
	LinkCount      *int     `json:"linkCount,omitempty" yaml:"linkCount,omitempty"`
	LinkPercentage *float64 `json:"linkPercentage,omitempty" yaml:"linkPercentage,omitempty"`
}

// CapacityKind identifies which MinimumCapacity variant is set.
type CapacityKind int

const (
	CapacityEmpty CapacityKind = iota
	CapacityLinkCount
	CapacityLinkPercentage
	CapacityAmbiguous
)

// Kind reports the populated variant.
func (m MinimumCapacity) Kind() CapacityKind {
	switch {
	case m.LinkCount != nil && m.LinkPercentage != nil:
		return CapacityAmbiguous
	case m.LinkCount != nil:
		return CapacityLinkCount
	case m.LinkPercentage != nil:
		return CapacityLinkPercentage
	}
	return CapacityEmpty
}

// AggregatePort is a LAG.
type AggregatePort struct {
	Key             int                   `json:"key" yaml:"key" validate:"min=0"`
	Name            string                `json:"name" yaml:"name"`
	Description     string                `json:"description,omitempty" yaml:"description,omitempty"`
	MemberPorts     []AggregatePortMember `json:"memberPorts" yaml:"memberPorts" validate:"dive"`
	MinimumCapacity MinimumCapacity       `json:"minimumCapacity" yaml:"minimumCapacity"`
}

// MirrorEgressPort is a closed union naming a port by name or logical id.
type MirrorEgressPort struct {
	Name      *string `json:"name,omitempty" yaml:"name,omitempty"`
	LogicalID *int    `json:"logicalID,omitempty" yaml:"logicalID,omitempty"`
}

// EgressPortKind identifies which MirrorEgressPort variant is set.
type EgressPortKind int

const (
	EgressPortEmpty EgressPortKind = iota
	EgressPortName
	EgressPortLogicalID
	EgressPortAmbiguous
)

// Kind reports the populated variant.
func (e MirrorEgressPort) Kind() EgressPortKind {
	switch {
	case e.Name != nil && e.LogicalID != nil:
		return EgressPortAmbiguous
	case e.Name != nil:
		return EgressPortName
	case e.LogicalID != nil:
		return EgressPortLogicalID
	}
	return EgressPortEmpty
}

// GreTunnel is a GRE-encapsulated mirror destination.
type GreTunnel struct {
	IP string `json:"ip" yaml:"ip" validate:"required,ip"`
}

// SflowTunnel is a UDP-encapsulated mirror destination.
type SflowTunnel struct {
	IP         string `json:"ip" yaml:"ip" validate:"required,ip"`
	UDPSrcPort *int   `json:"udpSrcPort,omitempty" yaml:"udpSrcPort,omitempty" validate:"omitempty,min=0,max=65535"`
	UDPDstPort *int   `json:"udpDstPort,omitempty" yaml:"udpDstPort,omitempty" validate:"omitempty,min=0,max=65535"`
}

// MirrorTunnel is a closed union of GRE and sFlow tunnels with an optional
// source address.
type MirrorTunnel struct {
	GreTunnel   *GreTunnel   `json:"greTunnel,omitempty" yaml:"greTunnel,omitempty"`
	SflowTunnel *SflowTunnel `json:"sflowTunnel,omitempty" yaml:"sflowTunnel,omitempty"`
	SrcIP       string       `json:"srcIp,omitempty" yaml:"srcIp,omitempty" validate:"omitempty,ip"`
}

// TunnelKind identifies which MirrorTunnel variant is set.
type TunnelKind int

const (
	TunnelEmpty TunnelKind = iota
	TunnelGRE
	TunnelSflow
	TunnelAmbiguous
)

// Kind reports the populated variant.
func (t MirrorTunnel) Kind() TunnelKind {
	switch {
	case t.GreTunnel != nil && t.SflowTunnel != nil:
		return TunnelAmbiguous
	case t.GreTunnel != nil:
		return TunnelGRE
	case t.SflowTunnel != nil:
		return TunnelSflow
	}
	return TunnelEmpty
}

// MirrorDestination is where mirrored packets are sent.
type MirrorDestination struct {
	EgressPort *MirrorEgressPort `json:"egressPort,omitempty" yaml:"egressPort,omitempty"`
	Tunnel     *MirrorTunnel     `json:"tunnel,omitempty" yaml:"tunnel,omitempty"`
}

// Mirror is a named packet mirroring session.
type Mirror struct {
	Name        string            `json:"name" yaml:"name" validate:"required"`
	Destination MirrorDestination `json:"destination" yaml:"destination"`
	Dscp        int               `json:"dscp,omitempty" yaml:"dscp,omitempty" validate:"min=0,max=63"`
	Truncate    bool              `json:"truncate,omitempty" yaml:"truncate,omitempty"`
}

// QosRule maps DSCP values onto a queue.
type QosRule struct {
	QueueID int   `json:"queueId" yaml:"queueId" validate:"min=0"`
	Dscp    []int `json:"dscp" yaml:"dscp"`
}

// DscpQosMap maps DSCP values to an internal traffic class.
type DscpQosMap struct {
	InternalTrafficClass   int   `json:"internalTrafficClass" yaml:"internalTrafficClass" validate:"min=0"`
	FromDscpToTrafficClass []int `json:"fromDscpToTrafficClass,omitempty" yaml:"fromDscpToTrafficClass,omitempty" validate:"dive,min=0,max=63"`
	FromTrafficClassToDscp *int  `json:"fromTrafficClassToDscp,omitempty" yaml:"fromTrafficClassToDscp,omitempty"`
}

// ExpQosMap maps MPLS EXP values to an internal traffic class.
type ExpQosMap struct {
	InternalTrafficClass  int   `json:"internalTrafficClass" yaml:"internalTrafficClass" validate:"min=0"`
	FromExpToTrafficClass []int `json:"fromExpToTrafficClass,omitempty" yaml:"fromExpToTrafficClass,omitempty" validate:"dive,min=0,max=7"`
	FromTrafficClassToExp *int  `json:"fromTrafficClassToExp,omitempty" yaml:"fromTrafficClassToExp,omitempty"`
}

// QosMap is the structured alternative to a QoS rule list.
type QosMap struct {
	DscpMaps              []DscpQosMap `json:"dscpMaps,omitempty" yaml:"dscpMaps,omitempty" validate:"dive"`
	ExpMaps               []ExpQosMap  `json:"expMaps,omitempty" yaml:"expMaps,omitempty" validate:"dive"`
	TrafficClassToQueueID map[int]int  `json:"trafficClassToQueueId,omitempty" yaml:"trafficClassToQueueId,omitempty"`
}

// QosPolicy classifies traffic into queues, by rules or by an explicit map.
type QosPolicy struct {
	Name   string    `json:"name" yaml:"name" validate:"required"`
	Rules  []QosRule `json:"rules,omitempty" yaml:"rules,omitempty" validate:"dive"`
	QosMap *QosMap   `json:"qosMap,omitempty" yaml:"qosMap,omitempty"`
}
