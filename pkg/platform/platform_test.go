package platform

import (
	"errors"
	"testing"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

const samplePlatform = `
name: wedge-sim
localMac: "02:00:00:00:00:01"
cpuQueues: 4
ports:
  - ids: "1-4"
    speed: 40000
    queues: 8
  - ids: "10"
    nameFormat: "mgmt%d"
    queues: 2
    streamType: MULTICAST
loadBalancerSeeds:
  ECMP: 42
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(samplePlatform))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.LocalMAC().String(); got != "02:00:00:00:00:01" {
		t.Errorf("LocalMAC() = %s, want 02:00:00:00:00:01", got)
	}
	if p.CPUQueues() != 4 {
		t.Errorf("CPUQueues() = %d, want 4", p.CPUQueues())
	}

	ports := p.Ports()
	if len(ports) != 5 {
		t.Fatalf("Ports() returned %d ports, want 5", len(ports))
	}
	tests := []struct {
		idx    int
		id     int
		name   string
		queues int
	}{
		{0, 1, "eth1", 8},
		{3, 4, "eth4", 8},
		{4, 10, "mgmt10", 2},
	}
	for _, tt := range tests {
		got := ports[tt.idx]
		if got.ID != tt.id || got.Name != tt.name || got.Queues != tt.queues {
			t.Errorf("Ports()[%d] = %+v, want id %d name %s queues %d", tt.idx, got, tt.id, tt.name, tt.queues)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantDup bool
	}{
		{"bad mac", "localMac: nope\n", false},
		{"bad range", "localMac: \"02:00:00:00:00:01\"\nports:\n  - ids: \"5-1\"\n", false},
		{"overlapping groups", "localMac: \"02:00:00:00:00:01\"\nports:\n  - ids: \"1-3\"\n  - ids: \"3\"\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if got := errors.Is(err, util.ErrDuplicate); got != tt.wantDup {
				t.Errorf("errors.Is(err, ErrDuplicate) = %v, want %v (err: %v)", got, tt.wantDup, err)
			}
		})
	}
}

func TestLoadBalancerSeed(t *testing.T) {
	p, err := Parse([]byte(samplePlatform))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.LoadBalancerSeed(config.LoadBalancerECMP); got != 42 {
		t.Errorf("LoadBalancerSeed(ECMP) = %d, want 42", got)
	}
	lag := p.LoadBalancerSeed(config.LoadBalancerAggregatePort)
	if lag != p.LoadBalancerSeed(config.LoadBalancerAggregatePort) {
		t.Error("derived seed should be deterministic")
	}
}

func TestInitialState(t *testing.T) {
	p, err := Parse([]byte(samplePlatform))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	s, err := InitialState(p)
	if err != nil {
		t.Fatalf("InitialState() error = %v", err)
	}

	if s.Ports().Len() != 5 {
		t.Fatalf("Ports().Len() = %d, want 5", s.Ports().Len())
	}
	port := s.Ports().Get(state.PortID(10)).Fields()
	if port.AdminState != config.PortDisabled {
		t.Errorf("AdminState = %s, want %s", port.AdminState, config.PortDisabled)
	}
	if len(port.Queues) != 2 || port.Queues[1].StreamType != config.StreamMulticast {
		t.Errorf("Queues = %+v, want 2 multicast queues", port.Queues)
	}
	if got := s.Ports().Get(state.PortID(1)).Fields().Queues[0].StreamType; got != config.StreamUnicast {
		t.Errorf("default stream type = %s, want %s", got, config.StreamUnicast)
	}
	if got := len(s.ControlPlane().Fields().Queues); got != 4 {
		t.Errorf("CPU queues = %d, want 4", got)
	}
}
