// Package platform describes the switch hardware a state tree is built
// for: its MAC, its physical ports and their queues, and the hashing seeds
// of its load balancers.
package platform

import (
	"fmt"
	"net"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
)

// PortSpec is one physical port as the hardware reports it.
type PortSpec struct {
	ID         int
	Name       string
	Speed      config.PortSpeed
	ProfileID  string
	Queues     int
	StreamType config.StreamType
}

// Platform is what the reconciler needs to know about the hardware.
type Platform interface {
	// LocalMAC is the switch MAC, used for interfaces and LACP by default.
	LocalMAC() net.HardwareAddr
	// Ports lists the physical ports in id order.
	Ports() []PortSpec
	// CPUQueues is the number of queues of the CPU port.
	CPUQueues() int
	// LoadBalancerSeed is the seed used when a load balancer sets none.
	LoadBalancerSeed(id config.LoadBalancerID) uint32
}

// DefaultQueues returns the unconfigured queues of a port.
func DefaultQueues(n int, stream config.StreamType) []state.PortQueue {
	queues := make([]state.PortQueue, n)
	for i := range queues {
		queues[i] = state.NewDefaultPortQueue(i, stream)
	}
	return queues
}

// InitialState builds the state a switch boots with before any
// configuration: every physical port registered and disabled, with default
// queues, and a CPU port with default queues.
func InitialState(p Platform) (*state.SwitchState, error) {
	s := state.NewSwitchState()
	w := s.Modify()

	specs := p.Ports()
	ports := make([]*state.Port, 0, len(specs))
	for _, spec := range specs {
		stream := spec.StreamType
		if stream == "" {
			stream = config.StreamUnicast
		}
		ports = append(ports, state.NewNode[state.PortID](state.PortFields{
			ID:         state.PortID(spec.ID),
			Name:       spec.Name,
			AdminState: config.PortDisabled,
			Speed:      spec.Speed,
			ProfileID:  spec.ProfileID,
			Queues:     DefaultQueues(spec.Queues, stream),
		}))
	}
	portMap, err := s.Ports().CloneWith(ports)
	if err != nil {
		return nil, fmt.Errorf("registering platform ports: %w", err)
	}
	w.SetPorts(portMap)

	w.SetControlPlane(state.NewNode[state.Singleton](state.ControlPlaneFields{
		Queues: DefaultQueues(p.CPUQueues(), config.StreamMulticast),
	}))
	return s, nil
}
