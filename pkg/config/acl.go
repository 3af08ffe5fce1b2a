package config

// AclActionType is the disposition of a matched packet.
type AclActionType string

const (
	AclPermit AclActionType = "PERMIT"
	AclDeny   AclActionType = "DENY"
)

// IPFragMatch selects packets by fragmentation status.
type IPFragMatch string

const (
	FragNotFragmented      IPFragMatch = "MATCH_NOT_FRAGMENTED"
	FragFirstFragment      IPFragMatch = "MATCH_FIRST_FRAGMENT"
	FragNotFragmentedOrFst IPFragMatch = "MATCH_NOT_FRAGMENTED_OR_FIRST_FRAGMENT"
	FragNotFirstFragment   IPFragMatch = "MATCH_NOT_FIRST_FRAGMENT"
	FragAnyFragment        IPFragMatch = "MATCH_ANY_FRAGMENT"
)

// IPType restricts a match to an address family.
type IPType string

const (
	IPTypeAny  IPType = "ANY"
	IPTypeIP   IPType = "IP"
	IPTypeIPv4 IPType = "IP4"
	IPTypeIPv6 IPType = "IP6"
)

// L4PortRange is a legacy port range; only exact matches are supported.
type L4PortRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// PktLenRange matches on packet length.
type PktLenRange struct {
	Min int `json:"min" yaml:"min" validate:"min=0"`
	Max int `json:"max" yaml:"max" validate:"min=0"`
}

// Ttl matches the IP TTL under a mask.
type Ttl struct {
	Value int `json:"value" yaml:"value"`
	Mask  int `json:"mask" yaml:"mask"`
}

// AclEntry is one named matcher. Optional fields are pointers so that an
// unset field is distinct from a zero value.
type AclEntry struct {
	Name           string        `json:"name" yaml:"name" validate:"required"`
	ActionType     AclActionType `json:"actionType" yaml:"actionType" validate:"required,oneof=PERMIT DENY"`
	SrcIP          string        `json:"srcIp,omitempty" yaml:"srcIp,omitempty" validate:"omitempty,cidr|ip"`
	DstIP          string        `json:"dstIp,omitempty" yaml:"dstIp,omitempty" validate:"omitempty,cidr|ip"`
	Proto          *int          `json:"proto,omitempty" yaml:"proto,omitempty"`
	TCPFlagsBitMap *int          `json:"tcpFlagsBitMap,omitempty" yaml:"tcpFlagsBitMap,omitempty"`
	SrcPort        *int          `json:"srcPort,omitempty" yaml:"srcPort,omitempty"`
	DstPort        *int          `json:"dstPort,omitempty" yaml:"dstPort,omitempty"`
	SrcL4PortRange *L4PortRange  `json:"srcL4PortRange,omitempty" yaml:"srcL4PortRange,omitempty"`
	DstL4PortRange *L4PortRange  `json:"dstL4PortRange,omitempty" yaml:"dstL4PortRange,omitempty"`
	PktLenRange    *PktLenRange  `json:"pktLenRange,omitempty" yaml:"pktLenRange,omitempty"`
	IPFrag         IPFragMatch   `json:"ipFrag,omitempty" yaml:"ipFrag,omitempty"`
	IcmpType       *int          `json:"icmpType,omitempty" yaml:"icmpType,omitempty"`
	IcmpCode       *int          `json:"icmpCode,omitempty" yaml:"icmpCode,omitempty"`
	Dscp           *int          `json:"dscp,omitempty" yaml:"dscp,omitempty"`
	IPType         IPType        `json:"ipType,omitempty" yaml:"ipType,omitempty" validate:"omitempty,oneof=ANY IP IP4 IP6"`
	Ttl            *Ttl          `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	DstMac         string        `json:"dstMac,omitempty" yaml:"dstMac,omitempty" validate:"omitempty,mac48"`
	L4SrcPort      *int          `json:"l4SrcPort,omitempty" yaml:"l4SrcPort,omitempty"`
	L4DstPort      *int          `json:"l4DstPort,omitempty" yaml:"l4DstPort,omitempty"`
	LookupClass    *int          `json:"lookupClass,omitempty" yaml:"lookupClass,omitempty"`
}

// CounterType selects what a traffic counter counts.
type CounterType string

const (
	CounterPackets CounterType = "PACKETS"
	CounterBytes   CounterType = "BYTES"
)

// TrafficCounter is a named ACL counter.
type TrafficCounter struct {
	Name  string        `json:"name" yaml:"name" validate:"required"`
	Types []CounterType `json:"types,omitempty" yaml:"types,omitempty" validate:"dive,oneof=PACKETS BYTES"`
}

// QueueMatchAction steers matched packets to a queue.
type QueueMatchAction struct {
	QueueID int `json:"queueId" yaml:"queueId" validate:"min=0"`
}

// SetDscpMatchAction rewrites the DSCP of matched packets.
type SetDscpMatchAction struct {
	DscpValue int `json:"dscpValue" yaml:"dscpValue" validate:"min=0,max=63"`
}

// MatchAction is the set of actions applied to a matched packet. Every
// field is optional and any combination may be set.
type MatchAction struct {
	SendToQueue   *QueueMatchAction   `json:"sendToQueue,omitempty" yaml:"sendToQueue,omitempty"`
	Counter       string              `json:"counter,omitempty" yaml:"counter,omitempty"`
	SetDscp       *SetDscpMatchAction `json:"setDscp,omitempty" yaml:"setDscp,omitempty"`
	IngressMirror string              `json:"ingressMirror,omitempty" yaml:"ingressMirror,omitempty"`
	EgressMirror  string              `json:"egressMirror,omitempty" yaml:"egressMirror,omitempty"`
}

// MatchToAction binds a named AclEntry to an action.
type MatchToAction struct {
	Matcher string      `json:"matcher" yaml:"matcher" validate:"required"`
	Action  MatchAction `json:"action" yaml:"action"`
}

// TrafficPolicyConfig is an ordered list of matcher/action pairs plus the
// QoS policy defaults of the plane it applies to.
type TrafficPolicyConfig struct {
	MatchToAction     []MatchToAction `json:"matchToAction,omitempty" yaml:"matchToAction,omitempty" validate:"dive"`
	DefaultQosPolicy  string          `json:"defaultQosPolicy,omitempty" yaml:"defaultQosPolicy,omitempty"`
	PortIDToQosPolicy map[int]string  `json:"portIdToQosPolicy,omitempty" yaml:"portIdToQosPolicy,omitempty"`
}

// RxReasonToQueue maps a CPU receive reason onto a CPU queue.
type RxReasonToQueue struct {
	RxReason string `json:"rxReason" yaml:"rxReason" validate:"required"`
	QueueID  int    `json:"queueId" yaml:"queueId" validate:"min=0"`
}

// CPUTrafficPolicyConfig is the control-plane policing policy.
type CPUTrafficPolicyConfig struct {
	TrafficPolicy      *TrafficPolicyConfig `json:"trafficPolicy,omitempty" yaml:"trafficPolicy,omitempty"`
	RxReasonToCPUQueue []RxReasonToQueue    `json:"rxReasonToCPUQueue,omitempty" yaml:"rxReasonToCPUQueue,omitempty" validate:"dive"`
}
