package state

import (
	"maps"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/config"
)

// Numeric identities of the physical and logical entities.
type (
	PortID          int
	VlanID          int
	InterfaceID     int
	RouterID        int
	AggregatePortID int
)

// VlanMembership is how a port carries a VLAN.
type VlanMembership struct {
	EmitTags bool
}

// PortQueue is the resolved state of one egress queue.
type PortQueue struct {
	ID                     int
	StreamType             config.StreamType
	Scheduling             config.QueueScheduling
	Weight                 int
	ReservedBytes          *int
	SharedBytes            *int
	ScalingFactor          string
	Name                   string
	Aqms                   []config.ActiveQueueManagement
	PortQueueRate          *config.PortQueueRate
	BandwidthBurstMinKbits *int
	BandwidthBurstMaxKbits *int
	TrafficClass           *int
}

// DefaultQueueWeight is the WRR weight of a queue with no configuration.
const DefaultQueueWeight = 1

// NewDefaultPortQueue returns the unconfigured state of queue id.
func NewDefaultPortQueue(id int, stream config.StreamType) PortQueue {
	return PortQueue{
		ID:         id,
		StreamType: stream,
		Scheduling: config.SchedulingWRR,
		Weight:     DefaultQueueWeight,
	}
}

// PortFields is the state of one physical port.
type PortFields struct {
	ID                 PortID
	Name               string
	Description        string
	AdminState         config.PortState
	Speed              config.PortSpeed
	ProfileID          string
	Pause              config.PortPause
	IngressVlan        VlanID
	Vlans              map[VlanID]VlanMembership
	SflowIngressRate   int64
	SflowEgressRate    int64
	SampleDest         config.SampleDestination
	FEC                config.PortFEC
	LoopbackMode       config.PortLoopbackMode
	Queues             []PortQueue
	IngressMirror      string
	EgressMirror       string
	QosPolicy          string
	ExpectedLLDPValues map[config.LLDPTag]string
	LookupClasses      []int
}

func (f PortFields) Key() PortID { return f.ID }

func (f PortFields) Clone() PortFields {
	f.Vlans = maps.Clone(f.Vlans)
	f.Queues = slices.Clone(f.Queues)
	f.ExpectedLLDPValues = maps.Clone(f.ExpectedLLDPValues)
	f.LookupClasses = slices.Clone(f.LookupClasses)
	return f
}

type (
	Port    = Node[PortID, PortFields]
	PortMap = Map[PortID, PortFields]
)

// NewPortMap returns an empty port collection.
func NewPortMap() *PortMap { return NewOrderedMap[PortID, PortFields]() }
