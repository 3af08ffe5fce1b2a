package agent

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.recordPass(ResultChanged, time.Millisecond)
	m.recordState(3, []string{"vlans"}, 2)
	m.recordPublishError()
}

func TestMetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.recordPass(ResultChanged, 2*time.Millisecond)
	m.recordState(4, []string{"vlans", "routes"}, 6)

	expected := `
# HELP swreconcile_domain_changes_total Passes that changed each state domain.
# TYPE swreconcile_domain_changes_total counter
swreconcile_domain_changes_total{domain="routes"} 1
swreconcile_domain_changes_total{domain="vlans"} 1
# HELP swreconcile_last_delta_entries Entries in the delta of the last changing pass.
# TYPE swreconcile_last_delta_entries gauge
swreconcile_last_delta_entries 6
# HELP swreconcile_state_generation Generation of the current published switch state.
# TYPE swreconcile_state_generation gauge
swreconcile_state_generation 4
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"swreconcile_domain_changes_total",
		"swreconcile_last_delta_entries",
		"swreconcile_state_generation",
	)
	if err != nil {
		t.Errorf("GatherAndCompare() error = %v", err)
	}
	if got := testutil.CollectAndCount(m.PassDurationSeconds); got != 1 {
		t.Errorf("CollectAndCount(pass_duration_seconds) = %d, want 1", got)
	}
}

func TestNewMetricsUnregistered(t *testing.T) {
	a := NewMetrics(nil)
	b := NewMetrics(nil)
	a.recordPublishError()
	if got := testutil.ToFloat64(b.PublishErrorsTotal); got != 0 {
		t.Errorf("publish_errors_total = %v, want independent series", got)
	}
}
