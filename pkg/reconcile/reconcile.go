// Package reconcile turns a declarative switch configuration into the next
// immutable switch state.
//
// A pass starts from the previous state and runs one reconciler per domain
// in dependency order. Each reconciler diffs the configured entries against
// the previous collection: unchanged entries keep their node, so an
// untouched domain ends up pointer-identical to what it was. The first
// error aborts the pass and nothing of it survives.
package reconcile

import (
	"fmt"

	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/platform"
	"github.com/newtron-network/swreconcile/pkg/rib"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// Domain names, as logged and reported by Context.Changed.
const (
	DomainSwitchSettings   = "switchSettings"
	DomainControlPlane     = "controlPlane"
	DomainVlanPorts        = "vlanPorts"
	DomainPorts            = "ports"
	DomainAggregatePorts   = "aggregatePorts"
	DomainMirrors          = "mirrors"
	DomainAcls             = "acls"
	DomainQosPolicies      = "qosPolicies"
	DomainDefaultQosPolicy = "defaultQosPolicy"
	DomainInterfaces       = "interfaces"
	DomainVlans            = "vlans"
	DomainRoutes           = "routes"
	DomainScalars          = "scalars"
	DomainSflowCollectors  = "sflowCollectors"
	DomainLoadBalancers    = "loadBalancers"
)

type step struct {
	domain string
	run    func() (bool, error)
}

// Reconcile computes the state that results from applying cfg to orig on
// plat. It returns nil, nil when cfg changes nothing. orig is never
// modified and the result is unpublished.
//
// With a nil RIB, routes live in the state's route tables. Otherwise they
// are handed to r, and what r computes lands in the FIB containers.
func Reconcile(orig *state.SwitchState, cfg *config.SwitchConfig, plat platform.Platform, r rib.RoutingInformationBase) (*state.SwitchState, error) {
	c, err := Run(orig, cfg, plat, r)
	if err != nil {
		return nil, err
	}
	if len(c.Changed()) == 0 {
		return nil, nil
	}
	return c.State(), nil
}

// Run performs one pass and returns its context, which records the domains
// that changed along with the new root.
func Run(orig *state.SwitchState, cfg *config.SwitchConfig, plat platform.Platform, r rib.RoutingInformationBase) (*Context, error) {
	c := newContext(orig, cfg, plat, r)
	steps := []step{
		{DomainSwitchSettings, c.updateSwitchSettings},
		{DomainControlPlane, c.updateControlPlane},
		{DomainVlanPorts, func() (bool, error) { return false, c.processVlanPorts() }},
		{DomainPorts, c.updatePorts},
		{DomainAggregatePorts, c.updateAggregatePorts},
		{DomainMirrors, c.updateMirrors},
		{DomainAcls, c.updateAcls},
		{DomainQosPolicies, c.updateQosPolicies},
		{DomainDefaultQosPolicy, c.updateDefaultQosPolicy},
		{DomainInterfaces, c.updateInterfaces},
		{DomainVlans, c.updateVlans},
		{DomainRoutes, c.updateRoutes},
		{DomainScalars, c.updateScalars},
		{DomainSflowCollectors, c.updateSflowCollectors},
		{DomainLoadBalancers, c.updateLoadBalancers},
	}

	for _, s := range steps {
		changed, err := s.run()
		if err != nil {
			return nil, fmt.Errorf("reconciling %s: %w", s.domain, err)
		}
		if changed {
			c.markChanged(s.domain)
			util.WithDomain(s.domain).Debug("domain changed")
		}
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("validating switch state: %w", err)
	}
	if c.ribCommit != nil && !c.ribCommit() {
		return nil, fmt.Errorf("reconciling %s: rib changed during the pass", DomainRoutes)
	}

	if len(c.changed) == 0 {
		util.WithGeneration(orig.Generation()).Debug("configuration unchanged")
		return c, nil
	}
	util.WithFields(map[string]interface{}{
		"generation": c.State().Generation(),
		"domains":    c.changed,
	}).Info("switch state reconciled")
	return c, nil
}
