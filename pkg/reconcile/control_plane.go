package reconcile

import (
	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// updateSwitchSettings applies the switch-wide knobs.
func (c *Context) updateSwitchSettings() (bool, error) {
	f := state.SwitchSettingsFields{L2LearningMode: c.cfg.SwitchSettings.L2LearningMode}
	if f.L2LearningMode == "" {
		f.L2LearningMode = config.L2LearningHardware
	}
	n, changed := node(c.orig.SwitchSettings(), f)
	if changed {
		c.next.SetSwitchSettings(n)
	}
	return changed, nil
}

// cpuQosPolicy is the CPU traffic policy's default QoS policy, else the
// data-plane default.
func (c *Context) cpuQosPolicy() string {
	if p := c.cfg.CPUTrafficPolicy; p != nil && p.TrafficPolicy != nil && p.TrafficPolicy.DefaultQosPolicy != "" {
		return p.TrafficPolicy.DefaultQosPolicy
	}
	return c.cfg.DefaultDataPlaneQosPolicy()
}

// qosMapOf returns the QoS map of the named policy, if it has one.
func (c *Context) qosMapOf(name string) *config.QosMap {
	if name == "" {
		return nil
	}
	if p := c.cfg.QosPolicy(name); p != nil {
		return p.QosMap
	}
	return nil
}

// updateControlPlane rebuilds the CPU port: its queues, QoS policy and
// receive-reason to queue map.
func (c *Context) updateControlPlane() (bool, error) {
	orig := c.orig.ControlPlane()
	policy := c.cpuQosPolicy()

	queues, err := buildQueues("cpu port", orig.Fields().Queues, c.cfg.CPUQueues, c.qosMapOf(policy))
	if err != nil {
		return false, err
	}

	f := state.ControlPlaneFields{
		Queues:          queues,
		QosPolicy:       policy,
		RxReasonToQueue: map[string]int{},
	}
	if c.cfg.CPUTrafficPolicy != nil {
		for _, r := range c.cfg.CPUTrafficPolicy.RxReasonToCPUQueue {
			if _, dup := f.RxReasonToQueue[r.RxReason]; dup {
				return false, util.NewDuplicateError("rx reason", r.RxReason)
			}
			f.RxReasonToQueue[r.RxReason] = r.QueueID
		}
	}

	n, changed := node(orig, f)
	if changed {
		c.next.SetControlPlane(n)
	}
	return changed, nil
}
