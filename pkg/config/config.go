// Package config defines the declarative switch configuration consumed by
// the reconciler, and loads it from YAML or JSON files.
package config

// Defaults applied by New when a field is absent from the file.
const (
	DefaultArpTimeoutSeconds  = 60
	DefaultArpAgerInterval    = 5
	DefaultMaxNeighborProbes  = 300
	DefaultStaleEntryInterval = 10
	DefaultLacpSystemPriority = 65535
	DefaultInterfaceMTU       = 1500
)

// SwitchConfig is the complete desired configuration of one switch.
type SwitchConfig struct {
	Version int `json:"version,omitempty" yaml:"version,omitempty"`

	Ports          []Port          `json:"ports,omitempty" yaml:"ports,omitempty" validate:"dive"`
	VlanPorts      []VlanPort      `json:"vlanPorts,omitempty" yaml:"vlanPorts,omitempty" validate:"dive"`
	Vlans          []Vlan          `json:"vlans,omitempty" yaml:"vlans,omitempty" validate:"dive"`
	Interfaces     []Interface     `json:"interfaces,omitempty" yaml:"interfaces,omitempty" validate:"dive"`
	AggregatePorts []AggregatePort `json:"aggregatePorts,omitempty" yaml:"aggregatePorts,omitempty" validate:"dive"`

	Acls                   []AclEntry              `json:"acls,omitempty" yaml:"acls,omitempty" validate:"dive"`
	TrafficCounters        []TrafficCounter        `json:"trafficCounters,omitempty" yaml:"trafficCounters,omitempty" validate:"dive"`
	CPUTrafficPolicy       *CPUTrafficPolicyConfig `json:"cpuTrafficPolicy,omitempty" yaml:"cpuTrafficPolicy,omitempty"`
	DataPlaneTrafficPolicy *TrafficPolicyConfig    `json:"dataPlaneTrafficPolicy,omitempty" yaml:"dataPlaneTrafficPolicy,omitempty"`
	QosPolicies            []QosPolicy             `json:"qosPolicies,omitempty" yaml:"qosPolicies,omitempty" validate:"dive"`

	Mirrors         []Mirror         `json:"mirrors,omitempty" yaml:"mirrors,omitempty" validate:"dive"`
	SflowCollectors []SflowCollector `json:"sFlowCollectors,omitempty" yaml:"sFlowCollectors,omitempty" validate:"dive"`

	PortQueueConfigs  map[string][]PortQueue `json:"portQueueConfigs,omitempty" yaml:"portQueueConfigs,omitempty" validate:"dive,dive"`
	DefaultPortQueues []PortQueue            `json:"defaultPortQueues,omitempty" yaml:"defaultPortQueues,omitempty" validate:"dive"`
	CPUQueues         []PortQueue            `json:"cpuQueues,omitempty" yaml:"cpuQueues,omitempty" validate:"dive"`

	SwitchSettings SwitchSettings `json:"switchSettings" yaml:"switchSettings"`
	Lacp           *LacpConfig    `json:"lacp,omitempty" yaml:"lacp,omitempty"`

	DefaultVlan            int    `json:"defaultVlan" yaml:"defaultVlan" validate:"min=0,max=4095"`
	ArpAgerInterval        int    `json:"arpAgerInterval" yaml:"arpAgerInterval" validate:"min=0"`
	ArpTimeoutSeconds      int    `json:"arpTimeoutSeconds" yaml:"arpTimeoutSeconds" validate:"min=0"`
	MaxNeighborProbes      int    `json:"maxNeighborProbes" yaml:"maxNeighborProbes" validate:"min=0"`
	StaleEntryInterval     int    `json:"staleEntryInterval" yaml:"staleEntryInterval" validate:"min=0"`
	DhcpRelaySrcOverrideV4 string `json:"dhcpRelaySrcOverrideV4,omitempty" yaml:"dhcpRelaySrcOverrideV4,omitempty" validate:"omitempty,ipv4"`
	DhcpRelaySrcOverrideV6 string `json:"dhcpRelaySrcOverrideV6,omitempty" yaml:"dhcpRelaySrcOverrideV6,omitempty" validate:"omitempty,ipv6"`
	DhcpReplySrcOverrideV4 string `json:"dhcpReplySrcOverrideV4,omitempty" yaml:"dhcpReplySrcOverrideV4,omitempty" validate:"omitempty,ipv4"`
	DhcpReplySrcOverrideV6 string `json:"dhcpReplySrcOverrideV6,omitempty" yaml:"dhcpReplySrcOverrideV6,omitempty" validate:"omitempty,ipv6"`

	StaticRoutesToNull    []StaticRouteNoNextHops   `json:"staticRoutesToNull,omitempty" yaml:"staticRoutesToNull,omitempty" validate:"dive"`
	StaticRoutesToCPU     []StaticRouteNoNextHops   `json:"staticRoutesToCPU,omitempty" yaml:"staticRoutesToCPU,omitempty" validate:"dive"`
	StaticRoutesWithNhops []StaticRouteWithNextHops `json:"staticRoutesWithNhops,omitempty" yaml:"staticRoutesWithNhops,omitempty" validate:"dive"`

	LoadBalancers []LoadBalancer `json:"loadBalancers,omitempty" yaml:"loadBalancers,omitempty" validate:"dive"`
}

// New returns a configuration with the scalar defaults filled in.
func New() *SwitchConfig {
	return &SwitchConfig{
		ArpAgerInterval:    DefaultArpAgerInterval,
		ArpTimeoutSeconds:  DefaultArpTimeoutSeconds,
		MaxNeighborProbes:  DefaultMaxNeighborProbes,
		StaleEntryInterval: DefaultStaleEntryInterval,
		SwitchSettings:     SwitchSettings{L2LearningMode: L2LearningHardware},
	}
}

// DefaultDataPlaneQosPolicy returns the name of the data-plane default QoS
// policy, or "" when none is configured.
func (c *SwitchConfig) DefaultDataPlaneQosPolicy() string {
	if c.DataPlaneTrafficPolicy == nil {
		return ""
	}
	return c.DataPlaneTrafficPolicy.DefaultQosPolicy
}

// QosPolicy returns the named QoS policy, or nil.
func (c *SwitchConfig) QosPolicy(name string) *QosPolicy {
	for i := range c.QosPolicies {
		if c.QosPolicies[i].Name == name {
			return &c.QosPolicies[i]
		}
	}
	return nil
}

// L2LearningMode selects where MAC learning happens.
type L2LearningMode string

const (
	L2LearningHardware L2LearningMode = "HARDWARE"
	L2LearningSoftware L2LearningMode = "SOFTWARE"
)

// SwitchSettings holds switch-wide knobs.
type SwitchSettings struct {
	L2LearningMode L2LearningMode `json:"l2LearningMode" yaml:"l2LearningMode" validate:"omitempty,oneof=HARDWARE SOFTWARE"`
}

// LacpConfig overrides the LACP actor system identity.
type LacpConfig struct {
	SystemID       string `json:"systemID" yaml:"systemID" validate:"required,mac48"`
	SystemPriority int    `json:"systemPriority" yaml:"systemPriority" validate:"min=0,max=65535"`
}

// StaticRouteNoNextHops is a drop or punt route.
type StaticRouteNoNextHops struct {
	RouterID int    `json:"routerID" yaml:"routerID" validate:"min=0"`
	Prefix   string `json:"prefix" yaml:"prefix" validate:"required,cidr"`
}

// StaticRouteWithNextHops is a static route forwarding to explicit next hops.
type StaticRouteWithNextHops struct {
	RouterID int      `json:"routerID" yaml:"routerID" validate:"min=0"`
	Prefix   string   `json:"prefix" yaml:"prefix" validate:"required,cidr"`
	Nexthops []string `json:"nexthops" yaml:"nexthops" validate:"min=1,dive,ip"`
}

// SflowCollector is a remote sFlow receiver.
type SflowCollector struct {
	IP   string `json:"ip" yaml:"ip" validate:"required,ip"`
	Port int    `json:"port" yaml:"port" validate:"min=0,max=65535"`
}

// LoadBalancerID names one of the hashing engines.
type LoadBalancerID string

const (
	LoadBalancerECMP          LoadBalancerID = "ECMP"
	LoadBalancerAggregatePort LoadBalancerID = "AGGREGATE_PORT"
)

// HashingAlgorithm selects the hash function of a load balancer.
type HashingAlgorithm string

const (
	HashCRC16CCITT HashingAlgorithm = "CRC16_CCITT"
	HashCRC32Lo    HashingAlgorithm = "CRC32_LO"
	HashCRC32Hi    HashingAlgorithm = "CRC32_HI"
	HashCRC32EthLo HashingAlgorithm = "CRC32_ETHERNET_LO"
	HashCRC32EthHi HashingAlgorithm = "CRC32_ETHERNET_HI"
)

// Fields selects which header fields feed a load balancer hash.
type Fields struct {
	IPv4Fields      []string `json:"ipv4Fields,omitempty" yaml:"ipv4Fields,omitempty" validate:"dive,oneof=SOURCE_ADDRESS DESTINATION_ADDRESS"`
	IPv6Fields      []string `json:"ipv6Fields,omitempty" yaml:"ipv6Fields,omitempty" validate:"dive,oneof=SOURCE_ADDRESS DESTINATION_ADDRESS FLOW_LABEL"`
	TransportFields []string `json:"transportFields,omitempty" yaml:"transportFields,omitempty" validate:"dive,oneof=SOURCE_PORT DESTINATION_PORT"`
	MPLSFields      []string `json:"mplsFields,omitempty" yaml:"mplsFields,omitempty" validate:"dive,oneof=TOP_LABEL SECOND_LABEL THIRD_LABEL"`
}

// LoadBalancer configures ECMP or LAG hashing.
type LoadBalancer struct {
	ID             LoadBalancerID   `json:"id" yaml:"id" validate:"required,oneof=ECMP AGGREGATE_PORT"`
	FieldSelection Fields           `json:"fieldSelection" yaml:"fieldSelection"`
	Algorithm      HashingAlgorithm `json:"algorithm" yaml:"algorithm" validate:"required"`
	Seed           *uint32          `json:"seed,omitempty" yaml:"seed,omitempty"`
}
