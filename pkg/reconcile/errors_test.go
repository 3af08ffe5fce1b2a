package reconcile

import (
	"errors"
	"testing"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/util"
)

func strPtr(s string) *string { return &s }

func TestReconcileErrors(t *testing.T) {
	var (
		dependency  *util.DependencyError
		conflict    *util.ConflictError
		duplicate   *util.DuplicateError
		rangeErr    *util.RangeError
		unsupported *util.UnsupportedError
		inUse       *util.InUseError
	)

	tests := []struct {
		name   string
		modify func(cfg *config.SwitchConfig)
		target any
	}{
		{
			name:   "port missing from platform",
			modify: func(cfg *config.SwitchConfig) { cfg.Ports = []config.Port{{LogicalID: 99}} },
			target: &dependency,
		},
		{
			name: "duplicate port",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Ports = []config.Port{{LogicalID: 1}, {LogicalID: 1}}
			},
			target: &duplicate,
		},
		{
			name:   "unknown port queue config",
			modify: func(cfg *config.SwitchConfig) { cfg.Ports = []config.Port{{LogicalID: 1, PortQueueConfigName: "gold"}} },
			target: &dependency,
		},
		{
			name: "queue beyond the hardware",
			modify: func(cfg *config.SwitchConfig) {
				cfg.DefaultPortQueues = []config.PortQueue{{ID: 7}}
			},
			target: &conflict,
		},
		{
			name: "queue without congestion detection",
			modify: func(cfg *config.SwitchConfig) {
				cfg.DefaultPortQueues = []config.PortQueue{{ID: 0, Aqms: []config.ActiveQueueManagement{{Behavior: config.BehaviorECN}}}}
			},
			target: &unsupported,
		},
		{
			name: "egress sampling to a mirror",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Ports = []config.Port{{LogicalID: 1, SampleDest: config.SampleToMirror, SflowEgressRate: 100}}
			},
			target: &unsupported,
		},
		{
			name: "interface on a missing vlan",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Interfaces = []config.Interface{{IntfID: 5, VlanID: 5, IPAddresses: []string{"10.0.0.1/24"}}}
			},
			target: &dependency,
		},
		{
			name: "two interfaces on one vlan",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Vlans = []config.Vlan{{ID: 5}}
				cfg.Interfaces = []config.Interface{
					{IntfID: 5, VlanID: 5, IPAddresses: []string{"10.0.0.1/24"}},
					{IntfID: 6, VlanID: 5, IPAddresses: []string{"10.0.1.1/24"}},
				}
			},
			target: &conflict,
		},
		{
			name: "vlan interfaces on two routers",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Vlans = []config.Vlan{{ID: 5}}
				cfg.Interfaces = []config.Interface{
					{IntfID: 5, RouterID: 0, VlanID: 5},
					{IntfID: 6, RouterID: 1, VlanID: 5},
				}
			},
			target: &conflict,
		},
		{
			name: "network on two interfaces",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Vlans = []config.Vlan{{ID: 5}, {ID: 6}}
				cfg.Interfaces = []config.Interface{
					{IntfID: 5, VlanID: 5, IPAddresses: []string{"10.0.0.1/24"}},
					{IntfID: 6, VlanID: 6, IPAddresses: []string{"10.0.0.2/24"}},
				}
			},
			target: &conflict,
		},
		{
			name: "duplicate interface address",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Vlans = []config.Vlan{{ID: 5}}
				cfg.Interfaces = []config.Interface{{IntfID: 5, VlanID: 5, IPAddresses: []string{"10.0.0.1/24", "10.0.0.1/16"}}}
			},
			target: &duplicate,
		},
		{
			name:   "duplicate vlan",
			modify: func(cfg *config.SwitchConfig) { cfg.Vlans = []config.Vlan{{ID: 5}, {ID: 5}} },
			target: &duplicate,
		},
		{
			name:   "duplicate vlan port",
			modify: func(cfg *config.SwitchConfig) { cfg.VlanPorts = []config.VlanPort{{VlanID: 5, LogicalPort: 1}, {VlanID: 5, LogicalPort: 1}} },
			target: &duplicate,
		},
		{
			name: "relay address of the wrong family",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Vlans = []config.Vlan{{ID: 5, DhcpRelayAddressV4: "2001:db8::1"}}
			},
			target: &rangeErr,
		},
		{
			name:   "missing default vlan",
			modify: func(cfg *config.SwitchConfig) { cfg.DefaultVlan = 9 },
			target: &dependency,
		},
		{
			name: "lag without minimum capacity",
			modify: func(cfg *config.SwitchConfig) {
				cfg.AggregatePorts = []config.AggregatePort{{Key: 1, MemberPorts: []config.AggregatePortMember{{MemberPortID: 1}}}}
			},
			target: &unsupported,
		},
		{
			name: "lag with a zero link count",
			modify: func(cfg *config.SwitchConfig) {
				cfg.AggregatePorts = []config.AggregatePort{{Key: 1, MinimumCapacity: config.MinimumCapacity{LinkCount: intPtr(0)}}}
			},
			target: &rangeErr,
		},
		{
			name: "mirror without destination",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Mirrors = []config.Mirror{{Name: "m"}}
			},
			target: &unsupported,
		},
		{
			name: "mirror to an unknown port",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Mirrors = []config.Mirror{{Name: "m", Destination: config.MirrorDestination{
					EgressPort: &config.MirrorEgressPort{Name: strPtr("nope")},
				}}}
			},
			target: &dependency,
		},
		{
			name: "mirror egress port mirrored by itself",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Ports = []config.Port{{LogicalID: 1, IngressMirror: "m"}}
				cfg.Mirrors = []config.Mirror{{Name: "m", Destination: config.MirrorDestination{
					EgressPort: &config.MirrorEgressPort{LogicalID: intPtr(1)},
				}}}
			},
			target: &inUse,
		},
		{
			name:   "port with an unknown mirror",
			modify: func(cfg *config.SwitchConfig) { cfg.Ports = []config.Port{{LogicalID: 1, EgressMirror: "m"}} },
			target: &dependency,
		},
		{
			name: "acl with an icmp type and no protocol",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclDeny, IcmpType: intPtr(8)}}
			},
			target: &rangeErr,
		},
		{
			name: "acl with a port range",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclDeny, DstL4PortRange: &config.L4PortRange{Min: 1, Max: 1024}}}
			},
			target: &rangeErr,
		},
		{
			name: "acl ttl value out of range",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclDeny, Ttl: &config.Ttl{Value: 300, Mask: 255}}}
			},
			target: &rangeErr,
		},
		{
			name: "acl ttl mask out of range",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclDeny, Ttl: &config.Ttl{Value: 64, Mask: 256}}}
			},
			target: &rangeErr,
		},
		{
			name: "acl ttl value negative",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclDeny, Ttl: &config.Ttl{Value: -1, Mask: 255}}}
			},
			target: &rangeErr,
		},
		{
			name: "acl icmp code without a type",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclDeny, Proto: intPtr(1), IcmpCode: intPtr(0)}}
			},
			target: &rangeErr,
		},
		{
			name: "acl l4 source port out of range",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclDeny, Proto: intPtr(6), L4SrcPort: intPtr(65536)}}
			},
			target: &rangeErr,
		},
		{
			name: "acl l4 destination port out of range",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclDeny, Proto: intPtr(17), L4DstPort: intPtr(70000)}}
			},
			target: &rangeErr,
		},
		{
			name: "acl action setting dscp out of range",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclPermit}}
				cfg.DataPlaneTrafficPolicy = &config.TrafficPolicyConfig{MatchToAction: []config.MatchToAction{
					{Matcher: "a", Action: config.MatchAction{SetDscp: &config.SetDscpMatchAction{DscpValue: 64}}},
				}}
			},
			target: &rangeErr,
		},
		{
			name: "acl action with an unknown ingress mirror",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclPermit}}
				cfg.DataPlaneTrafficPolicy = &config.TrafficPolicyConfig{MatchToAction: []config.MatchToAction{
					{Matcher: "a", Action: config.MatchAction{IngressMirror: "nope"}},
				}}
			},
			target: &dependency,
		},
		{
			name: "acl action with an unknown egress mirror",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Mirrors = []config.Mirror{{Name: "m", Destination: config.MirrorDestination{
					EgressPort: &config.MirrorEgressPort{LogicalID: intPtr(1)},
				}}}
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclPermit}}
				cfg.DataPlaneTrafficPolicy = &config.TrafficPolicyConfig{MatchToAction: []config.MatchToAction{
					{Matcher: "a", Action: config.MatchAction{IngressMirror: "m", EgressMirror: "nope"}},
				}}
			},
			target: &dependency,
		},
		{
			name: "policy with an unknown matcher",
			modify: func(cfg *config.SwitchConfig) {
				cfg.DataPlaneTrafficPolicy = &config.TrafficPolicyConfig{MatchToAction: []config.MatchToAction{{Matcher: "x"}}}
			},
			target: &dependency,
		},
		{
			name: "acl compiled twice",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclPermit}}
				cfg.DataPlaneTrafficPolicy = &config.TrafficPolicyConfig{MatchToAction: []config.MatchToAction{{Matcher: "a"}, {Matcher: "a"}}}
			},
			target: &duplicate,
		},
		{
			name: "acl action with an unknown counter",
			modify: func(cfg *config.SwitchConfig) {
				cfg.Acls = []config.AclEntry{{Name: "a", ActionType: config.AclPermit}}
				cfg.DataPlaneTrafficPolicy = &config.TrafficPolicyConfig{MatchToAction: []config.MatchToAction{
					{Matcher: "a", Action: config.MatchAction{Counter: "c"}},
				}}
			},
			target: &dependency,
		},
		{
			name: "qos policy with rules and a map",
			modify: func(cfg *config.SwitchConfig) {
				cfg.QosPolicies = []config.QosPolicy{{
					Name:   "q",
					Rules:  []config.QosRule{{QueueID: 0, Dscp: []int{1}}},
					QosMap: &config.QosMap{},
				}}
			},
			target: &conflict,
		},
		{
			name: "qos rule dscp out of range",
			modify: func(cfg *config.SwitchConfig) {
				cfg.QosPolicies = []config.QosPolicy{{Name: "q", Rules: []config.QosRule{{QueueID: 0, Dscp: []int{64}}}}}
			},
			target: &rangeErr,
		},
		{
			name: "unknown default qos policy",
			modify: func(cfg *config.SwitchConfig) {
				cfg.DataPlaneTrafficPolicy = &config.TrafficPolicyConfig{DefaultQosPolicy: "gold"}
			},
			target: &dependency,
		},
		{
			name: "duplicate rx reason",
			modify: func(cfg *config.SwitchConfig) {
				cfg.CPUTrafficPolicy = &config.CPUTrafficPolicyConfig{RxReasonToCPUQueue: []config.RxReasonToQueue{
					{RxReason: "ARP", QueueID: 1},
					{RxReason: "ARP", QueueID: 2},
				}}
			},
			target: &duplicate,
		},
		{
			name: "static route next hop of the wrong family",
			modify: func(cfg *config.SwitchConfig) {
				cfg.StaticRoutesWithNhops = []config.StaticRouteWithNextHops{{Prefix: "10.0.0.0/8", Nexthops: []string{"2001:db8::1"}}}
			},
			target: &rangeErr,
		},
		{
			name:   "sflow collector port out of range",
			modify: func(cfg *config.SwitchConfig) { cfg.SflowCollectors = []config.SflowCollector{{IP: "10.0.0.9", Port: 70000}} },
			target: &rangeErr,
		},
	}

	p := testPlatform(t)
	orig := initialState(t, p)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.modify(cfg)

			s, err := Reconcile(orig, cfg, p, nil)
			if err == nil {
				t.Fatalf("Reconcile() = generation %d, want error", s.Generation())
			}
			if s != nil {
				t.Error("Reconcile() returned a state along with the error")
			}
			if !errors.As(err, tt.target) {
				t.Errorf("Reconcile() error = %v (%T), want %T", err, errors.Unwrap(err), tt.target)
			}
		})
	}
}
