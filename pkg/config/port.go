package config

import "fmt"

// PortState is the configured admin state of a port.
type PortState string

const (
	PortDisabled  PortState = "DISABLED"
	PortEnabled   PortState = "ENABLED"
	PortPowerDown PortState = "POWER_DOWN"
)

// PortSpeed is expressed in Mbps; zero means the platform default.
type PortSpeed int

const (
	SpeedDefault      PortSpeed = 0
	SpeedGigE         PortSpeed = 1000
	SpeedXG           PortSpeed = 10000
	SpeedTwentyFiveG  PortSpeed = 25000
	SpeedFortyG       PortSpeed = 40000
	SpeedFiftyG       PortSpeed = 50000
	SpeedHundredG     PortSpeed = 100000
	SpeedFourHundredG PortSpeed = 400000
)

// PortFEC toggles forward error correction.
type PortFEC string

const (
	FECOff PortFEC = "OFF"
	FECOn  PortFEC = "ON"
)

// PortLoopbackMode sets the loopback point of a port.
type PortLoopbackMode string

const (
	LoopbackNone PortLoopbackMode = "NONE"
	LoopbackPHY  PortLoopbackMode = "PHY"
	LoopbackMAC  PortLoopbackMode = "MAC"
)

// SampleDestination is where sFlow samples are sent.
type SampleDestination string

const (
	SampleToCPU    SampleDestination = "CPU"
	SampleToMirror SampleDestination = "MIRROR"
)

// LLDPTag names an LLDP TLV whose peer value is validated.
type LLDPTag string

const (
	LLDPPortID     LLDPTag = "PORT"
	LLDPSystemName LLDPTag = "SYSTEM_NAME"
	LLDPPortDesc   LLDPTag = "PORT_DESC"
)

// PortPause configures 802.3x pause frames.
type PortPause struct {
	Tx bool `json:"tx" yaml:"tx"`
	Rx bool `json:"rx" yaml:"rx"`
}

// Port is the configuration of one physical port.
type Port struct {
	LogicalID           int                `json:"logicalID" yaml:"logicalID" validate:"min=0"`
	Name                string             `json:"name,omitempty" yaml:"name,omitempty"`
	Description         string             `json:"description,omitempty" yaml:"description,omitempty"`
	State               PortState          `json:"state" yaml:"state" validate:"omitempty,oneof=DISABLED ENABLED POWER_DOWN"`
	IngressVlan         int                `json:"ingressVlan" yaml:"ingressVlan" validate:"min=0,max=4095"`
	Speed               PortSpeed          `json:"speed" yaml:"speed" validate:"min=0"`
	ProfileID           string             `json:"profileID,omitempty" yaml:"profileID,omitempty"`
	Pause               PortPause          `json:"pause" yaml:"pause"`
	SflowIngressRate    int64              `json:"sFlowIngressRate" yaml:"sFlowIngressRate" validate:"min=0"`
	SflowEgressRate     int64              `json:"sFlowEgressRate" yaml:"sFlowEgressRate" validate:"min=0"`
	SampleDest          SampleDestination  `json:"sampleDest,omitempty" yaml:"sampleDest,omitempty" validate:"omitempty,oneof=CPU MIRROR"`
	FEC                 PortFEC            `json:"fec,omitempty" yaml:"fec,omitempty" validate:"omitempty,oneof=OFF ON"`
	LoopbackMode        PortLoopbackMode   `json:"loopbackMode,omitempty" yaml:"loopbackMode,omitempty" validate:"omitempty,oneof=NONE PHY MAC"`
	PortQueueConfigName string             `json:"portQueueConfigName,omitempty" yaml:"portQueueConfigName,omitempty"`
	IngressMirror       string             `json:"ingressMirror,omitempty" yaml:"ingressMirror,omitempty"`
	EgressMirror        string             `json:"egressMirror,omitempty" yaml:"egressMirror,omitempty"`
	ExpectedLLDPValues  map[LLDPTag]string `json:"expectedLLDPValues,omitempty" yaml:"expectedLLDPValues,omitempty"`
	LookupClasses       []int              `json:"lookupClasses,omitempty" yaml:"lookupClasses,omitempty"`
}

// StreamType classifies the traffic a queue carries.
type StreamType string

const (
	StreamUnicast   StreamType = "UNICAST"
	StreamMulticast StreamType = "MULTICAST"
	StreamAll       StreamType = "ALL"
)

// QueueScheduling is the egress scheduling discipline of a queue.
type QueueScheduling string

const (
	SchedulingWRR    QueueScheduling = "WEIGHTED_ROUND_ROBIN"
	SchedulingStrict QueueScheduling = "STRICT_PRIORITY"
	SchedulingDRR    QueueScheduling = "DEFICIT_ROUND_ROBIN"
)

// QueueCongestionBehavior is the action taken once congestion is detected.
type QueueCongestionBehavior string

const (
	BehaviorEarlyDrop QueueCongestionBehavior = "EARLY_DROP"
	BehaviorECN       QueueCongestionBehavior = "ECN"
)

// LinearQueueCongestionDetection drops or marks between two queue lengths.
type LinearQueueCongestionDetection struct {
	MinimumLength int `json:"minimumLength" yaml:"minimumLength" validate:"min=0"`
	MaximumLength int `json:"maximumLength" yaml:"maximumLength" validate:"min=0"`
}

// QueueCongestionDetection is a closed union; Linear is currently the only
// variant. An empty value is rejected by the reconciler.
type QueueCongestionDetection struct {
	Linear *LinearQueueCongestionDetection `json:"linear,omitempty" yaml:"linear,omitempty"`
}

// DetectionKind identifies which QueueCongestionDetection variant is set.
type DetectionKind int

const (
	DetectionEmpty DetectionKind = iota
	DetectionLinear
)

// Kind reports the populated variant.
func (d QueueCongestionDetection) Kind() DetectionKind {
	if d.Linear != nil {
		return DetectionLinear
	}
	return DetectionEmpty
}

// ActiveQueueManagement pairs a detection method with a behavior.
type ActiveQueueManagement struct {
	Detection QueueCongestionDetection `json:"detection" yaml:"detection"`
	Behavior  QueueCongestionBehavior  `json:"behavior" yaml:"behavior" validate:"required,oneof=EARLY_DROP ECN"`
}

// Range is an inclusive min/max pair.
type Range struct {
	Minimum int `json:"minimum" yaml:"minimum" validate:"min=0"`
	Maximum int `json:"maximum" yaml:"maximum" validate:"min=0"`
}

// PortQueueRate is a closed union of packet or bit rate shaping.
type PortQueueRate struct {
	PktsPerSec  *Range `json:"pktsPerSec,omitempty" yaml:"pktsPerSec,omitempty"`
	KbitsPerSec *Range `json:"kbitsPerSec,omitempty" yaml:"kbitsPerSec,omitempty"`
}

// RateKind identifies which PortQueueRate variant is set.
type RateKind int

const (
	RateEmpty RateKind = iota
	RatePktsPerSec
	RateKbitsPerSec
	RateAmbiguous
)

// Kind reports the populated variant.
func (r PortQueueRate) Kind() RateKind {
	switch {
	case r.PktsPerSec != nil && r.KbitsPerSec != nil:
		return RateAmbiguous
	case r.PktsPerSec != nil:
		return RatePktsPerSec
	case r.KbitsPerSec != nil:
		return RateKbitsPerSec
	}
	return RateEmpty
}

// PortQueue is the configuration of one egress queue.
type PortQueue struct {
	ID                     int                     `json:"id" yaml:"id" validate:"min=0"`
	StreamType             StreamType              `json:"streamType" yaml:"streamType" validate:"omitempty,oneof=UNICAST MULTICAST ALL"`
	Scheduling             QueueScheduling         `json:"scheduling" yaml:"scheduling" validate:"omitempty,oneof=WEIGHTED_ROUND_ROBIN STRICT_PRIORITY DEFICIT_ROUND_ROBIN"`
	Weight                 *int                    `json:"weight,omitempty" yaml:"weight,omitempty"`
	ReservedBytes          *int                    `json:"reservedBytes,omitempty" yaml:"reservedBytes,omitempty"`
	ScalingFactor          string                  `json:"scalingFactor,omitempty" yaml:"scalingFactor,omitempty"`
	Name                   string                  `json:"name,omitempty" yaml:"name,omitempty"`
	SharedBytes            *int                    `json:"sharedBytes,omitempty" yaml:"sharedBytes,omitempty"`
	Aqms                   []ActiveQueueManagement `json:"aqms,omitempty" yaml:"aqms,omitempty" validate:"dive"`
	PortQueueRate          *PortQueueRate          `json:"portQueueRate,omitempty" yaml:"portQueueRate,omitempty"`
	BandwidthBurstMinKbits *int                    `json:"bandwidthBurstMinKbits,omitempty" yaml:"bandwidthBurstMinKbits,omitempty"`
	BandwidthBurstMaxKbits *int                    `json:"bandwidthBurstMaxKbits,omitempty" yaml:"bandwidthBurstMaxKbits,omitempty"`
}

func (q PortQueue) String() string {
	return fmt.Sprintf("queue %d (%s)", q.ID, q.StreamType)
}
