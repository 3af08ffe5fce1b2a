package state

import (
	"net/netip"
	"sync/atomic"
	"time"
)

// Scalars are the switch-wide values kept directly on the root.
type Scalars struct {
	DefaultVlan        VlanID
	ArpTimeout         time.Duration
	NdpTimeout         time.Duration
	ArpAgerInterval    time.Duration
	MaxNeighborProbes  int
	StaleEntryInterval time.Duration
	DhcpV4RelaySrc     netip.Addr
	DhcpV6RelaySrc     netip.Addr
	DhcpV4ReplySrc     netip.Addr
	DhcpV6ReplySrc     netip.Addr
}

// SwitchState is the root of the state tree.
type SwitchState struct {
	generation uint64
	published  atomic.Bool

	ports           *PortMap
	aggregatePorts  *AggregatePortMap
	vlans           *VlanMap
	interfaces      *InterfaceMap
	acls            *AclMap
	qosPolicies     *QosPolicyMap
	mirrors         *MirrorMap
	sflowCollectors *SflowCollectorMap
	routeTables     *RouteTableMap
	fibs            *FibContainerMap
	loadBalancers   *LoadBalancerMap
	controlPlane    *ControlPlane
	switchSettings  *SwitchSettings

	defaultDataPlaneQosPolicy *QosPolicy
	scalars                   Scalars
}

// NewSwitchState returns an empty, unpublished root.
func NewSwitchState() *SwitchState {
	return &SwitchState{
		ports:           NewPortMap(),
		aggregatePorts:  NewAggregatePortMap(),
		vlans:           NewVlanMap(),
		interfaces:      NewInterfaceMap(),
		acls:            NewAclMap(),
		qosPolicies:     NewQosPolicyMap(),
		mirrors:         NewMirrorMap(),
		sflowCollectors: NewSflowCollectorMap(),
		routeTables:     NewRouteTableMap(),
		fibs:            NewFibContainerMap(),
		loadBalancers:   NewLoadBalancerMap(),
		controlPlane:    NewNode[Singleton](ControlPlaneFields{}),
		switchSettings:  NewNode[Singleton](SwitchSettingsFields{}),
	}
}

func (s *SwitchState) Generation() uint64                    { return s.generation }
func (s *SwitchState) IsPublished() bool                     { return s.published.Load() }
func (s *SwitchState) Ports() *PortMap                       { return s.ports }
func (s *SwitchState) AggregatePorts() *AggregatePortMap     { return s.aggregatePorts }
func (s *SwitchState) Vlans() *VlanMap                       { return s.vlans }
func (s *SwitchState) Interfaces() *InterfaceMap             { return s.interfaces }
func (s *SwitchState) Acls() *AclMap                         { return s.acls }
func (s *SwitchState) QosPolicies() *QosPolicyMap            { return s.qosPolicies }
func (s *SwitchState) Mirrors() *MirrorMap                   { return s.mirrors }
func (s *SwitchState) SflowCollectors() *SflowCollectorMap   { return s.sflowCollectors }
func (s *SwitchState) RouteTables() *RouteTableMap           { return s.routeTables }
func (s *SwitchState) Fibs() *FibContainerMap                { return s.fibs }
func (s *SwitchState) LoadBalancers() *LoadBalancerMap       { return s.loadBalancers }
func (s *SwitchState) ControlPlane() *ControlPlane           { return s.controlPlane }
func (s *SwitchState) SwitchSettings() *SwitchSettings       { return s.switchSettings }
func (s *SwitchState) DefaultDataPlaneQosPolicy() *QosPolicy { return s.defaultDataPlaneQosPolicy }
func (s *SwitchState) Scalars() Scalars                      { return s.scalars }

// Publish freezes the whole tree.
func (s *SwitchState) Publish() {
	if s.published.Swap(true) {
		return
	}
	s.ports.Publish()
	s.aggregatePorts.Publish()
	s.vlans.Publish()
	s.interfaces.Publish()
	s.acls.Publish()
	s.qosPolicies.Publish()
	s.mirrors.Publish()
	s.sflowCollectors.Publish()
	s.routeTables.Publish()
	s.fibs.Publish()
	s.loadBalancers.Publish()
	s.controlPlane.Publish()
	s.switchSettings.Publish()
	if s.defaultDataPlaneQosPolicy != nil {
		s.defaultDataPlaneQosPolicy.Publish()
	}
}

// Clone returns an unpublished root one generation later that shares every
// child with s.
func (s *SwitchState) Clone() *SwitchState {
	return &SwitchState{
		generation:                s.generation + 1,
		ports:                     s.ports,
		aggregatePorts:            s.aggregatePorts,
		vlans:                     s.vlans,
		interfaces:                s.interfaces,
		acls:                      s.acls,
		qosPolicies:               s.qosPolicies,
		mirrors:                   s.mirrors,
		sflowCollectors:           s.sflowCollectors,
		routeTables:               s.routeTables,
		fibs:                      s.fibs,
		loadBalancers:             s.loadBalancers,
		controlPlane:              s.controlPlane,
		switchSettings:            s.switchSettings,
		defaultDataPlaneQosPolicy: s.defaultDataPlaneQosPolicy,
		scalars:                   s.scalars,
	}
}

// Modify returns a writable handle on the root: s itself if unpublished,
// otherwise a clone.
func (s *SwitchState) Modify() *WritableState {
	if !s.IsPublished() {
		return &WritableState{s: s}
	}
	return &WritableState{s: s.Clone()}
}

// WritableState replaces children of an unpublished root.
type WritableState struct {
	s *SwitchState
}

// State returns the root being edited.
func (w *WritableState) State() *SwitchState { return w.s }

func (w *WritableState) root() *SwitchState {
	if w.s.IsPublished() {
		panic("state: write to published switch state")
	}
	return w.s
}

func (w *WritableState) SetPorts(m *PortMap)                       { w.root().ports = m }
func (w *WritableState) SetAggregatePorts(m *AggregatePortMap)     { w.root().aggregatePorts = m }
func (w *WritableState) SetVlans(m *VlanMap)                       { w.root().vlans = m }
func (w *WritableState) SetInterfaces(m *InterfaceMap)             { w.root().interfaces = m }
func (w *WritableState) SetAcls(m *AclMap)                         { w.root().acls = m }
func (w *WritableState) SetQosPolicies(m *QosPolicyMap)            { w.root().qosPolicies = m }
func (w *WritableState) SetMirrors(m *MirrorMap)                   { w.root().mirrors = m }
func (w *WritableState) SetSflowCollectors(m *SflowCollectorMap)   { w.root().sflowCollectors = m }
func (w *WritableState) SetRouteTables(m *RouteTableMap)           { w.root().routeTables = m }
func (w *WritableState) SetFibs(m *FibContainerMap)                { w.root().fibs = m }
func (w *WritableState) SetLoadBalancers(m *LoadBalancerMap)       { w.root().loadBalancers = m }
func (w *WritableState) SetControlPlane(n *ControlPlane)           { w.root().controlPlane = n }
func (w *WritableState) SetSwitchSettings(n *SwitchSettings)       { w.root().switchSettings = n }
func (w *WritableState) SetDefaultDataPlaneQosPolicy(n *QosPolicy) { w.root().defaultDataPlaneQosPolicy = n }
func (w *WritableState) SetScalars(sc Scalars)                     { w.root().scalars = sc }
