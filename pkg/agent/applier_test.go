package agent

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	fixtures "github.com/newtron-network/swreconcile/internal/testutil"
	"github.com/newtron-network/swreconcile/pkg/audit"
	"github.com/newtron-network/swreconcile/pkg/config"
	"github.com/newtron-network/swreconcile/pkg/rib"
	"github.com/newtron-network/swreconcile/pkg/state"
	"github.com/newtron-network/swreconcile/pkg/util"
)

type recordingSink struct {
	mu     sync.Mutex
	deltas []state.Delta
	err    error
}

func (s *recordingSink) Publish(_ context.Context, d state.Delta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deltas = append(s.deltas, d)
	return s.err
}

func vlanConfig(addr string) *config.SwitchConfig {
	return fixtures.VlanConfig(5, addr)
}

type fixture struct {
	applier *Applier
	sink    *recordingSink
	metrics *Metrics
	audit   *audit.FileLogger
}

func newFixture(t *testing.T, r rib.RoutingInformationBase) *fixture {
	t.Helper()
	logger, err := audit.NewFileLogger(filepath.Join(t.TempDir(), "audit.log"), audit.RotationConfig{})
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	f := &fixture{
		sink:    &recordingSink{},
		metrics: NewMetrics(prometheus.NewRegistry()),
		audit:   logger,
	}
	f.applier, err = NewApplier(fixtures.Platform(t, 2), Options{
		Switch:  "rsw1",
		User:    "tester",
		Rib:     r,
		Sink:    f.sink,
		Metrics: f.metrics,
		Audit:   logger,
	})
	if err != nil {
		t.Fatalf("NewApplier() error = %v", err)
	}
	return f
}

func TestApplierApply(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	initial := f.applier.State()
	if !initial.IsPublished() {
		t.Error("initial state is not published")
	}

	res, err := f.applier.Apply(ctx, vlanConfig("10.0.0.1/24"))
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !res.Changed() || res.Old != initial {
		t.Fatalf("Apply() = %+v, want a change from the initial state", res)
	}
	if !res.New.IsPublished() {
		t.Error("applied state is not published")
	}
	if f.applier.State() != res.New {
		t.Error("State() is not the applied state")
	}
	if len(f.sink.deltas) != 1 || f.sink.deltas[0].New != res.New {
		t.Errorf("sink received %d deltas, want the applied one", len(f.sink.deltas))
	}
	if len(res.Entries) == 0 {
		t.Error("Entries is empty")
	}

	res, err = f.applier.Apply(ctx, vlanConfig("10.0.0.1/24"))
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if res.Changed() {
		t.Errorf("second Apply() changed %v, want nothing", res.Domains)
	}
	if len(f.sink.deltas) != 1 {
		t.Errorf("sink received %d deltas, want no publication for an unchanged pass", len(f.sink.deltas))
	}

	if got := testutil.ToFloat64(f.metrics.PassesTotal.WithLabelValues(ResultChanged)); got != 1 {
		t.Errorf("passes_total{changed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(f.metrics.PassesTotal.WithLabelValues(ResultUnchanged)); got != 1 {
		t.Errorf("passes_total{unchanged} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(f.metrics.DomainChangesTotal.WithLabelValues("vlans")); got != 1 {
		t.Errorf("domain_changes_total{vlans} = %v, want 1", got)
	}
	if got, want := testutil.ToFloat64(f.metrics.Generation), float64(f.applier.State().Generation()); got != want {
		t.Errorf("state_generation = %v, want %v", got, want)
	}

	events, err := f.audit.Query(audit.Filter{Operation: audit.OpApply})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(events) != 2 || !events[0].Success || events[0].Switch != "rsw1" {
		t.Fatalf("audit events = %+v, want two successful passes", events)
	}
	if len(events[0].Domains) == 0 || len(events[1].Domains) != 0 {
		t.Errorf("audit domains = %v then %v, want changes then none", events[0].Domains, events[1].Domains)
	}
}

func TestApplierRejectsConfig(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	if _, err := f.applier.Apply(ctx, vlanConfig("10.0.0.1/24")); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	before := f.applier.State()

	bad := vlanConfig("10.0.0.1/24")
	bad.Interfaces[0].VlanID = 9
	_, err := f.applier.Apply(ctx, bad)
	var dep *util.DependencyError
	if !errors.As(err, &dep) {
		t.Fatalf("Apply() error = %v, want a DependencyError", err)
	}
	if f.applier.State() != before {
		t.Error("a rejected configuration replaced the state")
	}
	if got := testutil.ToFloat64(f.metrics.PassesTotal.WithLabelValues(ResultError)); got != 1 {
		t.Errorf("passes_total{error} = %v, want 1", got)
	}
	events, _ := f.audit.Query(audit.Filter{FailureOnly: true})
	if len(events) != 1 || events[0].Error == "" {
		t.Errorf("failed audit events = %+v, want one with the error", events)
	}
}

func TestApplierSinkError(t *testing.T) {
	f := newFixture(t, nil)
	f.sink.err = errors.New("redis down")

	res, err := f.applier.Apply(context.Background(), vlanConfig("10.0.0.1/24"))
	if err == nil {
		t.Fatal("Apply() error = nil, want the sink error")
	}
	if res == nil || f.applier.State() != res.New {
		t.Error("the state did not advance despite a successful pass")
	}
	if got := testutil.ToFloat64(f.metrics.PublishErrorsTotal); got != 1 {
		t.Errorf("publish_errors_total = %v, want 1", got)
	}
}

func TestApplierCanceledContext(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.applier.Apply(ctx, vlanConfig("10.0.0.1/24")); !errors.Is(err, context.Canceled) {
		t.Errorf("Apply() error = %v, want context.Canceled", err)
	}
}

func TestApplierAddStaticRoute(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	cfg := vlanConfig("10.0.0.1/24")
	if _, err := f.applier.Apply(ctx, cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	prefix := netip.MustParsePrefix("192.0.2.0/24")
	res, err := f.applier.AddStaticRoute(ctx, state.StaticRoute{
		Router:   0,
		Prefix:   prefix,
		Action:   state.ForwardNextHops,
		NextHops: []netip.Addr{netip.MustParseAddr("10.0.0.9")},
	})
	if err != nil {
		t.Fatalf("AddStaticRoute() error = %v", err)
	}
	if !res.Changed() {
		t.Fatal("AddStaticRoute() changed nothing")
	}
	r := f.applier.State().RouteTables().Get(0).Fields().Lookup(prefix)
	if r == nil || !r.Fields().Resolved {
		t.Fatalf("route %s = %v, want a resolved route", prefix, r)
	}

	res, err = f.applier.Apply(ctx, cfg)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if r := res.New.RouteTables().Get(0).Fields().Lookup(prefix); r != nil {
		t.Errorf("route %s survived the next pass, want it re-synced away", prefix)
	}
}

func TestApplierAddStaticRouteWithRib(t *testing.T) {
	f := newFixture(t, rib.NewMemory())
	_, err := f.applier.AddStaticRoute(context.Background(), state.StaticRoute{
		Prefix: netip.MustParsePrefix("192.0.2.0/24"),
		Action: state.ForwardDrop,
	})
	if !errors.Is(err, util.ErrPreconditionFailed) {
		t.Errorf("AddStaticRoute() error = %v, want ErrPreconditionFailed", err)
	}
}

func TestApplierSerialisesPasses(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	start := f.applier.State().Generation()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.applier.Apply(ctx, vlanConfig(fmt.Sprintf("10.0.%d.1/24", i))); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Apply() error = %v", err)
	}

	if got := f.applier.State().Generation(); got != start+n {
		t.Errorf("Generation() = %d, want %d after %d serialised passes", got, start+n, n)
	}
	if len(f.sink.deltas) != n {
		t.Errorf("sink received %d deltas, want %d", len(f.sink.deltas), n)
	}
}
