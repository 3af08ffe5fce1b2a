package reconcile

import (
	"fmt"
	"maps"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// portQueueConfig returns the queue configuration a port uses: the named
// per-port list, or the default list when name is empty.
func (c *Context) portQueueConfig(port state.PortID, name string) ([]config.PortQueue, error) {
	if name == "" {
		return c.cfg.DefaultPortQueues, nil
	}
	queues, ok := c.cfg.PortQueueConfigs[name]
	if !ok {
		return nil, util.NewDependencyError(fmt.Sprintf("port %d", port), "port queue config", name)
	}
	return queues, nil
}

// buildQueues updates the hardware queue slots in orig from cfgQueues.
// Slots without configuration are reset to defaults, keeping their stream
// type. A configured queue with no slot is a conflict.
func buildQueues(resource string, orig []state.PortQueue, cfgQueues []config.PortQueue, qos *config.QosMap) ([]state.PortQueue, error) {
	byID := make(map[int]config.PortQueue, len(cfgQueues))
	for _, q := range cfgQueues {
		if _, dup := byID[q.ID]; dup {
			return nil, util.NewDuplicateError(resource+" queue", q.ID)
		}
		byID[q.ID] = q
	}

	out := make([]state.PortQueue, len(orig))
	for i, old := range orig {
		q, ok := byID[old.ID]
		if !ok {
			out[i] = state.NewDefaultPortQueue(old.ID, old.StreamType)
			continue
		}
		delete(byID, old.ID)

		next, err := createQueue(resource, q, old.StreamType, qos)
		if err != nil {
			return nil, err
		}
		if state.FieldsEqual(old, next) {
			out[i] = old
		} else {
			out[i] = next
		}
	}

	if len(byID) > 0 {
		extra := slices.Sorted(maps.Keys(byID))
		return nil, util.NewConflictError(resource,
			"queue %d is configured but only %d queues exist", extra[0], len(orig))
	}
	return out, nil
}

func createQueue(resource string, q config.PortQueue, stream config.StreamType, qos *config.QosMap) (state.PortQueue, error) {
	out := state.PortQueue{
		ID:                     q.ID,
		StreamType:             q.StreamType,
		Scheduling:             q.Scheduling,
		Weight:                 state.DefaultQueueWeight,
		ReservedBytes:          clonePtr(q.ReservedBytes),
		SharedBytes:            clonePtr(q.SharedBytes),
		ScalingFactor:          q.ScalingFactor,
		Name:                   q.Name,
		BandwidthBurstMinKbits: clonePtr(q.BandwidthBurstMinKbits),
		BandwidthBurstMaxKbits: clonePtr(q.BandwidthBurstMaxKbits),
	}
	if out.StreamType == "" {
		out.StreamType = stream
	}
	if out.Scheduling == "" {
		out.Scheduling = config.SchedulingWRR
	}
	if q.Weight != nil {
		out.Weight = *q.Weight
	}

	aqms, err := checkAqms(resource, q)
	if err != nil {
		return state.PortQueue{}, err
	}
	out.Aqms = aqms

	if q.PortQueueRate != nil {
		switch q.PortQueueRate.Kind() {
		case config.RatePktsPerSec, config.RateKbitsPerSec:
			out.PortQueueRate = &config.PortQueueRate{
				PktsPerSec:  clonePtr(q.PortQueueRate.PktsPerSec),
				KbitsPerSec: clonePtr(q.PortQueueRate.KbitsPerSec),
			}
		case config.RateEmpty:
			return state.PortQueue{}, util.NewUnsupportedError(resource, "queue %d: rate has no unit set", q.ID)
		default:
			return state.PortQueue{}, util.NewUnsupportedError(resource, "queue %d: rate sets both units", q.ID)
		}
	}

	if tc, ok := (state.QosPolicyFields{QosMap: qos}).TrafficClassOf(q.ID); ok {
		out.TrafficClass = &tc
	}
	return out, nil
}

// checkAqms requires a detection method on every entry and at most one
// entry per behavior.
func checkAqms(resource string, q config.PortQueue) ([]config.ActiveQueueManagement, error) {
	if len(q.Aqms) == 0 {
		return nil, nil
	}
	seen := map[config.QueueCongestionBehavior]bool{}
	out := make([]config.ActiveQueueManagement, 0, len(q.Aqms))
	for _, aqm := range q.Aqms {
		if aqm.Detection.Kind() == config.DetectionEmpty {
			return nil, util.NewUnsupportedError(resource, "queue %d: congestion detection is not set", q.ID)
		}
		if seen[aqm.Behavior] {
			return nil, util.NewDuplicateError(fmt.Sprintf("%s queue %d aqm behavior", resource, q.ID), aqm.Behavior)
		}
		seen[aqm.Behavior] = true
		aqm.Detection.Linear = clonePtr(aqm.Detection.Linear)
		out = append(out, aqm)
	}
	return out, nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
