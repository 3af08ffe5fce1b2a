package reconcile

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// maxMemberPriority bounds the LACP priority of a subport, exclusive.
const maxMemberPriority = 1 << 16

func (c *Context) updateAggregatePorts() (bool, error) {
	lags := newCollection[state.AggregatePortID, state.AggregatePortFields]("aggregate port", c.orig.AggregatePorts())

	systemID, systemPriority, err := c.lacpSystem()
	if err != nil {
		return false, err
	}
	for _, ac := range c.cfg.AggregatePorts {
		f, err := buildAggregatePort(ac, systemID, systemPriority)
		if err != nil {
			return false, err
		}
		if err := lags.put(f); err != nil {
			return false, err
		}
	}

	m, err := lags.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetAggregatePorts(m)
	return true, nil
}

// lacpSystem returns the LACP actor identity: the configured one, else
// the platform MAC at the default priority.
func (c *Context) lacpSystem() ([]byte, int, error) {
	if l := c.cfg.Lacp; l != nil {
		mac, err := util.ParseMAC(l.SystemID)
		if err != nil {
			return nil, 0, util.NewRangeError("lacp", "systemID", l.SystemID, "a 48-bit MAC address")
		}
		return mac, l.SystemPriority, nil
	}
	return c.plat.LocalMAC(), config.DefaultLacpSystemPriority, nil
}

func buildAggregatePort(ac config.AggregatePort, systemID []byte, systemPriority int) (state.AggregatePortFields, error) {
	resource := fmt.Sprintf("aggregate port %d", ac.Key)

	subports := make([]state.Subport, 0, len(ac.MemberPorts))
	for _, m := range ac.MemberPorts {
		if m.Priority < 0 || m.Priority >= maxMemberPriority {
			return state.AggregatePortFields{}, util.NewRangeError(resource, "member priority", m.Priority, "in [0, 65536)")
		}
		rate, activity := m.Rate, m.Activity
		if rate == "" {
			rate = config.LacpRateSlow
		}
		if activity == "" {
			activity = config.LacpPassive
		}
		subports = append(subports, state.Subport{
			PortID:   state.PortID(m.MemberPortID),
			Priority: m.Priority,
			Rate:     rate,
			Activity: activity,
		})
	}
	slices.SortFunc(subports, func(a, b state.Subport) int {
		return cmp.Or(cmp.Compare(a.PortID, b.PortID), cmp.Compare(a.Priority, b.Priority))
	})

	minLinks, err := minimumLinkCount(resource, ac.MinimumCapacity, len(subports))
	if err != nil {
		return state.AggregatePortFields{}, err
	}

	return state.AggregatePortFields{
		ID:               state.AggregatePortID(ac.Key),
		Name:             ac.Name,
		Description:      ac.Description,
		SystemPriority:   systemPriority,
		SystemID:         append([]byte(nil), systemID...),
		MinimumLinkCount: minLinks,
		Subports:         subports,
	}, nil
}

// minimumLinkCount resolves the minimum capacity of a LAG with members
// subports. A percentage rounds up and never drops below one link while
// the LAG has members.
func minimumLinkCount(resource string, capacity config.MinimumCapacity, members int) (int, error) {
	switch capacity.Kind() {
	case config.CapacityLinkCount:
		n := *capacity.LinkCount
		if n < 1 {
			return 0, util.NewRangeError(resource, "minimum link count", n, "at least 1")
		}
		return n, nil
	case config.CapacityLinkPercentage:
		p := *capacity.LinkPercentage
		if !(p > 0 && p <= 1) {
			return 0, util.NewRangeError(resource, "minimum link percentage", p, "in (0, 1]")
		}
		n := int(math.Ceil(p * float64(members)))
		if n < 1 && members > 0 {
			n = 1
		}
		return n, nil
	case config.CapacityEmpty:
		return 0, util.NewUnsupportedError(resource, "minimum capacity is not set")
	}
	return 0, util.NewUnsupportedError(resource, "minimum capacity sets both a count and a percentage")
}
