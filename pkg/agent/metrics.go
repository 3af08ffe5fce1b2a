package agent

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pass outcomes, the "result" label of PassesTotal.
const (
	ResultChanged   = "changed"
	ResultUnchanged = "unchanged"
	ResultError     = "error"
)

// Metrics are the Prometheus series an Applier maintains.
type Metrics struct {
	PassesTotal         *prometheus.CounterVec
	PassDurationSeconds prometheus.Histogram
	DomainChangesTotal  *prometheus.CounterVec
	DeltaEntries        prometheus.Gauge
	Generation          prometheus.Gauge
	PublishErrorsTotal  prometheus.Counter
}

// NewMetrics creates the applier metrics and registers them with reg. A
// nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PassesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "swreconcile",
				Name:      "passes_total",
				Help:      "Reconciliation passes by result.",
			},
			[]string{"result"},
		),
		PassDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "swreconcile",
				Name:      "pass_duration_seconds",
				Help:      "Time spent in one reconciliation pass.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		DomainChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "swreconcile",
				Name:      "domain_changes_total",
				Help:      "Passes that changed each state domain.",
			},
			[]string{"domain"},
		),
		DeltaEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "swreconcile",
				Name:      "last_delta_entries",
				Help:      "Entries in the delta of the last changing pass.",
			},
		),
		Generation: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "swreconcile",
				Name:      "state_generation",
				Help:      "Generation of the current published switch state.",
			},
		),
		PublishErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "swreconcile",
				Name:      "publish_errors_total",
				Help:      "Deltas the sink failed to accept.",
			},
		),
	}
}

func (m *Metrics) recordPass(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.PassesTotal.WithLabelValues(result).Inc()
	m.PassDurationSeconds.Observe(d.Seconds())
}

func (m *Metrics) recordState(gen uint64, domains []string, entries int) {
	if m == nil {
		return
	}
	m.Generation.Set(float64(gen))
	m.DeltaEntries.Set(float64(entries))
	for _, d := range domains {
		m.DomainChangesTotal.WithLabelValues(d).Inc()
	}
}

func (m *Metrics) recordPublishError() {
	if m == nil {
		return
	}
	m.PublishErrorsTotal.Inc()
}
