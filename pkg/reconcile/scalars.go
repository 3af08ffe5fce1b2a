package reconcile

import (
	"net/netip"
	"slices"
	"strconv"
	"time"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// updateScalars applies the switch-wide values kept on the root.
func (c *Context) updateScalars() (bool, error) {
	orig := c.orig.Scalars()
	sc := state.Scalars{
		DefaultVlan:        state.VlanID(c.cfg.DefaultVlan),
		ArpTimeout:         seconds(c.cfg.ArpTimeoutSeconds),
		NdpTimeout:         seconds(c.cfg.ArpTimeoutSeconds),
		ArpAgerInterval:    seconds(c.cfg.ArpAgerInterval),
		MaxNeighborProbes:  c.cfg.MaxNeighborProbes,
		StaleEntryInterval: seconds(c.cfg.StaleEntryInterval),
	}

	addrs := []struct {
		dst   *netip.Addr
		field string
		value string
		v6    bool
	}{
		{&sc.DhcpV4RelaySrc, "dhcpRelaySrcOverrideV4", c.cfg.DhcpRelaySrcOverrideV4, false},
		{&sc.DhcpV6RelaySrc, "dhcpRelaySrcOverrideV6", c.cfg.DhcpRelaySrcOverrideV6, true},
		{&sc.DhcpV4ReplySrc, "dhcpReplySrcOverrideV4", c.cfg.DhcpReplySrcOverrideV4, false},
		{&sc.DhcpV6ReplySrc, "dhcpReplySrcOverrideV6", c.cfg.DhcpReplySrcOverrideV6, true},
	}
	for _, a := range addrs {
		addr, err := relayAddr("switch", a.field, a.value, a.v6)
		if err != nil {
			return false, err
		}
		*a.dst = addr
	}

	if sc == orig {
		return false, nil
	}
	c.next.SetScalars(sc)
	return true, nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// updateSflowCollectors rebuilds the collectors, keyed "ip:port".
func (c *Context) updateSflowCollectors() (bool, error) {
	collectors := newCollection[string, state.SflowCollectorFields]("sflow collector", c.orig.SflowCollectors())
	for _, sc := range c.cfg.SflowCollectors {
		addr, err := util.ParseAddr(sc.IP)
		if err != nil {
			return false, util.NewRangeError("sflow collector", "ip", sc.IP, "an IP address")
		}
		if sc.Port < 0 || sc.Port > maxL4Port {
			return false, util.NewRangeError("sflow collector "+sc.IP, "port", sc.Port, "in [0, 65535]")
		}
		f := state.SflowCollectorFields{
			ID:      addr.StringExpanded() + ":" + strconv.Itoa(sc.Port),
			Address: netip.AddrPortFrom(addr, uint16(sc.Port)),
		}
		if err := collectors.put(f); err != nil {
			return false, err
		}
	}

	m, err := collectors.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetSflowCollectors(m)
	return true, nil
}

// updateLoadBalancers rebuilds the hashing engines. An unset seed comes
// from the platform.
func (c *Context) updateLoadBalancers() (bool, error) {
	lbs := newCollection[config.LoadBalancerID, state.LoadBalancerFields]("load balancer", c.orig.LoadBalancers())
	for _, lc := range c.cfg.LoadBalancers {
		seed := c.plat.LoadBalancerSeed(lc.ID)
		if lc.Seed != nil {
			seed = *lc.Seed
		}
		f := state.LoadBalancerFields{
			ID:              lc.ID,
			Algorithm:       lc.Algorithm,
			Seed:            seed,
			IPv4Fields:      fieldSet(lc.FieldSelection.IPv4Fields),
			IPv6Fields:      fieldSet(lc.FieldSelection.IPv6Fields),
			TransportFields: fieldSet(lc.FieldSelection.TransportFields),
			MPLSFields:      fieldSet(lc.FieldSelection.MPLSFields),
		}
		if err := lbs.put(f); err != nil {
			return false, err
		}
	}

	m, err := lbs.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetLoadBalancers(m)
	return true, nil
}

// fieldSet sorts and deduplicates a hash field selection.
func fieldSet(fields []string) []string {
	if len(fields) == 0 {
		return nil
	}
	return slices.Compact(slices.Sorted(slices.Values(fields)))
}
