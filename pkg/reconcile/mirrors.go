package reconcile

import (
	"fmt"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// maxDscp is the largest 6-bit DSCP value.
const maxDscp = 63

// updateMirrors rebuilds the mirror sessions against the ports of the root
// being built, then checks every port's mirror references.
func (c *Context) updateMirrors() (bool, error) {
	orig := c.orig.Mirrors()
	mirrors := newCollection[string, state.MirrorFields]("mirror", orig)

	for _, mc := range c.cfg.Mirrors {
		f, err := c.buildMirror(mc)
		if err != nil {
			return false, err
		}
		if old := orig.Get(mc.Name); old != nil {
			inheritResolution(&f, old.Fields())
		}
		if err := mirrors.put(f); err != nil {
			return false, err
		}
	}

	for _, p := range c.State().Ports().Nodes() {
		pf := p.Fields()
		for _, name := range []string{pf.IngressMirror, pf.EgressMirror} {
			if name != "" && !mirrors.has(name) {
				return false, util.NewDependencyError(fmt.Sprintf("port %d", pf.ID), "mirror", name)
			}
		}
	}

	m, err := mirrors.done()
	if err != nil || m == nil {
		return false, err
	}
	c.next.SetMirrors(m)
	return true, nil
}

func (c *Context) buildMirror(mc config.Mirror) (state.MirrorFields, error) {
	resource := fmt.Sprintf("mirror %s", mc.Name)
	if mc.Dscp < 0 || mc.Dscp > maxDscp {
		return state.MirrorFields{}, util.NewRangeError(resource, "dscp", mc.Dscp, "in [0, 63]")
	}
	dest := mc.Destination
	if dest.EgressPort == nil && dest.Tunnel == nil {
		return state.MirrorFields{}, util.NewUnsupportedError(resource, "neither an egress port nor a tunnel is set")
	}

	f := state.MirrorFields{Name: mc.Name, Dscp: mc.Dscp, Truncate: mc.Truncate}
	if dest.EgressPort != nil {
		port, err := c.mirrorEgressPort(resource, mc.Name, *dest.EgressPort)
		if err != nil {
			return state.MirrorFields{}, err
		}
		f.EgressPort = &port
	}
	if dest.Tunnel != nil {
		if err := buildMirrorTunnel(resource, *dest.Tunnel, &f); err != nil {
			return state.MirrorFields{}, err
		}
	}
	return f, nil
}

// mirrorEgressPort finds the port a mirror sends out of. The port must
// not itself be mirrored by the same session.
func (c *Context) mirrorEgressPort(resource, mirror string, ep config.MirrorEgressPort) (state.PortID, error) {
	ports := c.State().Ports()
	var port *state.Port
	switch ep.Kind() {
	case config.EgressPortName:
		for _, p := range ports.Nodes() {
			if p.Fields().Name == *ep.Name {
				port = p
				break
			}
		}
		if port == nil {
			return 0, util.NewDependencyError(resource, "egress port", *ep.Name)
		}
	case config.EgressPortLogicalID:
		port = ports.Get(state.PortID(*ep.LogicalID))
		if port == nil {
			return 0, util.NewDependencyError(resource, "egress port", fmt.Sprint(*ep.LogicalID))
		}
	case config.EgressPortEmpty:
		return 0, util.NewUnsupportedError(resource, "egress port sets neither a name nor a logical id")
	default:
		return 0, util.NewUnsupportedError(resource, "egress port sets both a name and a logical id")
	}

	pf := port.Fields()
	if pf.IngressMirror == mirror || pf.EgressMirror == mirror {
		return 0, util.NewInUseError(fmt.Sprintf("port %d", pf.ID), resource)
	}
	return pf.ID, nil
}

func buildMirrorTunnel(resource string, t config.MirrorTunnel, f *state.MirrorFields) error {
	var dst string
	switch t.Kind() {
	case config.TunnelGRE:
		f.TunnelType = state.TunnelGRE
		dst = t.GreTunnel.IP
	case config.TunnelSflow:
		st := t.SflowTunnel
		if st.UDPSrcPort == nil || st.UDPDstPort == nil {
			return util.NewUnsupportedError(resource, "sflow tunnel needs both UDP ports")
		}
		for _, port := range []int{*st.UDPSrcPort, *st.UDPDstPort} {
			if port < 0 || port > maxL4Port {
				return util.NewRangeError(resource, "udp port", port, "in [0, 65535]")
			}
		}
		f.TunnelType = state.TunnelSflow
		f.UDPSrcPort, f.UDPDstPort = *st.UDPSrcPort, *st.UDPDstPort
		dst = st.IP
	case config.TunnelEmpty:
		return util.NewUnsupportedError(resource, "tunnel sets neither GRE nor sflow")
	default:
		return util.NewUnsupportedError(resource, "tunnel sets both GRE and sflow")
	}

	addr, err := util.ParseAddr(dst)
	if err != nil {
		return util.NewRangeError(resource, "tunnel ip", dst, "an IP address")
	}
	f.Destination = addr
	if t.SrcIP != "" {
		src, err := util.ParseAddr(t.SrcIP)
		if err != nil {
			return util.NewRangeError(resource, "tunnel srcIp", t.SrcIP, "an IP address")
		}
		f.Source = src
	}
	return nil
}

// inheritResolution carries the resolved tunnel and egress port of an old
// session over to f when f sends to the same place the same way. An
// explicitly configured egress port must match too.
func inheritResolution(f *state.MirrorFields, old state.MirrorFields) {
	if !f.IsTunnel() || !old.IsResolved() {
		return
	}
	if f.Destination != old.Destination || f.Source != old.Source ||
		f.TunnelType != old.TunnelType || f.UDPSrcPort != old.UDPSrcPort || f.UDPDstPort != old.UDPDstPort ||
		f.Dscp != old.Dscp || f.Truncate != old.Truncate {
		return
	}
	if f.EgressPort != nil && (old.EgressPort == nil || *f.EgressPort != *old.EgressPort) {
		return
	}
	f.Resolved = clonePtr(old.Resolved)
	f.EgressPort = clonePtr(old.EgressPort)
}
