package state

import (
	"maps"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/config"
)

// ControlPlaneFields is the state of the CPU port.
type ControlPlaneFields struct {
	Queues          []PortQueue
	QosPolicy       string
	RxReasonToQueue map[string]int
}

func (f ControlPlaneFields) Key() Singleton { return Singleton{} }

func (f ControlPlaneFields) Clone() ControlPlaneFields {
	f.Queues = slices.Clone(f.Queues)
	f.RxReasonToQueue = maps.Clone(f.RxReasonToQueue)
	return f
}

type ControlPlane = Node[Singleton, ControlPlaneFields]

// SwitchSettingsFields holds switch-wide knobs.
type SwitchSettingsFields struct {
	L2LearningMode config.L2LearningMode
}

func (f SwitchSettingsFields) Key() Singleton              { return Singleton{} }
func (f SwitchSettingsFields) Clone() SwitchSettingsFields { return f }

type SwitchSettings = Node[Singleton, SwitchSettingsFields]

// LoadBalancerFields configures one hashing engine.
type LoadBalancerFields struct {
	ID              config.LoadBalancerID
	Algorithm       config.HashingAlgorithm
	Seed            uint32
	IPv4Fields      []string
	IPv6Fields      []string
	TransportFields []string
	MPLSFields      []string
}

func (f LoadBalancerFields) Key() config.LoadBalancerID { return f.ID }

func (f LoadBalancerFields) Clone() LoadBalancerFields {
	f.IPv4Fields = slices.Clone(f.IPv4Fields)
	f.IPv6Fields = slices.Clone(f.IPv6Fields)
	f.TransportFields = slices.Clone(f.TransportFields)
	f.MPLSFields = slices.Clone(f.MPLSFields)
	return f
}

type (
	LoadBalancer    = Node[config.LoadBalancerID, LoadBalancerFields]
	LoadBalancerMap = Map[config.LoadBalancerID, LoadBalancerFields]
)

// NewLoadBalancerMap returns an empty load balancer collection.
func NewLoadBalancerMap() *LoadBalancerMap {
	return NewOrderedMap[config.LoadBalancerID, LoadBalancerFields]()
}
