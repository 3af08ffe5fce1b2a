// Package agent owns the current switch state and applies configurations
// to it one pass at a time.
package agent

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"github.com/newtron-network/swreconcile/pkg/audit"
	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/platform"
	"github.com/newtron-network/swreconcile/pkg/reconcile"
	"github.com/newtron-network/swreconcile/pkg/rib"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

// Sink receives the delta of every pass that changed the state.
type Sink interface {
	Publish(ctx context.Context, delta state.Delta) error
}

// Options configure an Applier. Everything but the platform is optional.
type Options struct {
	Switch  string
	User    string
	Rib     rib.RoutingInformationBase
	Sink    Sink
	Metrics *Metrics
	Audit   audit.Logger
}

// Result describes one applied pass.
type Result struct {
	Old     *state.SwitchState
	New     *state.SwitchState
	Domains []string
	Entries []state.Entry
}

// Changed reports whether the pass produced a new state.
func (r *Result) Changed() bool { return r.New != r.Old }

// Applier serialises reconciliation passes over the current state. Each
// pass starts from the last published state, and its result is published
// before it becomes current.
type Applier struct {
	mu      sync.Mutex
	plat    platform.Platform
	opts    Options
	current *state.SwitchState
}

// NewApplier starts from the platform's initial state.
func NewApplier(plat platform.Platform, opts Options) (*Applier, error) {
	s, err := platform.InitialState(plat)
	if err != nil {
		return nil, fmt.Errorf("building initial state: %w", err)
	}
	s.Publish()
	if opts.Switch == "" {
		opts.Switch = "switch"
	}
	a := &Applier{plat: plat, opts: opts, current: s}
	opts.Metrics.recordState(s.Generation(), nil, 0)
	return a, nil
}

// State returns the current published state.
func (a *Applier) State() *state.SwitchState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Apply reconciles cfg against the current state. On error the current
// state is left as it was.
func (a *Applier) Apply(ctx context.Context, cfg *config.SwitchConfig) (*Result, error) {
	return a.apply(ctx, cfg, "")
}

// ApplyFile loads a configuration file and applies it.
func (a *Applier) ApplyFile(ctx context.Context, path string) (*Result, error) {
	cfg, err := config.Load(path)
	if err != nil {
		a.opts.Metrics.recordPass(ResultError, 0)
		a.audit(audit.NewEvent(a.opts.User, a.opts.Switch, audit.OpApply).WithConfigPath(path).WithError(err))
		return nil, err
	}
	return a.apply(ctx, cfg, path)
}

func (a *Applier) apply(ctx context.Context, cfg *config.SwitchConfig, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	event := audit.NewEvent(a.opts.User, a.opts.Switch, audit.OpApply).WithConfigPath(path)
	logger := util.WithSwitch(a.opts.Switch)

	c, err := reconcile.Run(a.current, cfg, a.plat, a.opts.Rib)
	elapsed := time.Since(start)
	if err != nil {
		a.opts.Metrics.recordPass(ResultError, elapsed)
		a.audit(event.WithError(err).WithDuration(elapsed).WithGeneration(a.current.Generation()))
		logger.WithError(err).Warn("configuration rejected")
		return nil, err
	}

	res := &Result{Old: a.current, New: a.current}
	if len(c.Changed()) == 0 {
		a.opts.Metrics.recordPass(ResultUnchanged, elapsed)
		a.audit(event.WithSuccess().WithDuration(elapsed).WithGeneration(a.current.Generation()))
		return res, nil
	}

	next := c.State()
	next.Publish()
	res.New = next
	res.Domains = c.Changed()
	delta := state.NewDelta(res.Old, next)
	res.Entries = delta.Entries()
	a.current = next

	a.opts.Metrics.recordPass(ResultChanged, elapsed)
	a.opts.Metrics.recordState(next.Generation(), res.Domains, len(res.Entries))
	a.audit(event.WithSuccess().
		WithDuration(elapsed).
		WithGeneration(next.Generation()).
		WithDomains(res.Domains).
		WithEntries(res.Entries))

	if err := a.publish(ctx, delta); err != nil {
		return res, err
	}
	return res, nil
}

// AddStaticRoute installs a static route on top of the current state
// without a configuration pass. The next Apply re-syncs the static routes
// of router 0 and drops it there unless the configuration has it too.
func (a *Applier) AddStaticRoute(ctx context.Context, route state.StaticRoute) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	event := audit.NewEvent(a.opts.User, a.opts.Switch, audit.OpStaticRoute)
	if a.opts.Rib != nil {
		err := util.NewPreconditionError("add static route", route.Prefix.String(),
			"embedded route tables", "the switch routes through an external RIB")
		a.audit(event.WithError(err))
		return nil, err
	}
	if !route.Prefix.IsValid() {
		err := util.NewRangeError("static route", "prefix", route.Prefix, "a CIDR prefix")
		a.audit(event.WithError(err))
		return nil, err
	}
	route.Prefix = netip.PrefixFrom(route.Prefix.Addr().Unmap(), route.Prefix.Bits()).Masked()

	u := state.NewRouteUpdater(a.current.RouteTables())
	u.AddRoute(route.Router, route.Prefix, state.ClientStatic, route.Entry())
	tables := u.UpdateDone()

	res := &Result{Old: a.current, New: a.current}
	if tables == nil {
		a.audit(event.WithSuccess().WithGeneration(a.current.Generation()))
		return res, nil
	}
	w := a.current.Modify()
	w.SetRouteTables(tables)
	next := w.State()
	next.Publish()

	delta := state.NewDelta(a.current, next)
	res.New = next
	res.Domains = []string{reconcile.DomainRoutes}
	res.Entries = delta.Entries()
	a.current = next

	a.opts.Metrics.recordState(next.Generation(), res.Domains, len(res.Entries))
	a.audit(event.WithSuccess().
		WithGeneration(next.Generation()).
		WithDomains(res.Domains).
		WithEntries(res.Entries))
	util.WithSwitch(a.opts.Switch).WithField("prefix", route.Prefix.String()).Info("static route added")

	if err := a.publish(ctx, delta); err != nil {
		return res, err
	}
	return res, nil
}

func (a *Applier) publish(ctx context.Context, delta state.Delta) error {
	if a.opts.Sink == nil {
		return nil
	}
	if err := a.opts.Sink.Publish(ctx, delta); err != nil {
		a.opts.Metrics.recordPublishError()
		return fmt.Errorf("publishing generation %d: %w", delta.New.Generation(), err)
	}
	return nil
}

func (a *Applier) audit(e *audit.Event) {
	var err error
	if a.opts.Audit != nil {
		err = a.opts.Audit.Log(e)
	} else {
		err = audit.Log(e)
	}
	if err != nil {
		util.WithSwitch(a.opts.Switch).WithError(err).Warn("audit log write failed")
	}
}
