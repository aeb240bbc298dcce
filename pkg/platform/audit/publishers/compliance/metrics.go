package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "accredis/pkg/platform/audit"
)

// Metrics tracks audit trail persistence.
type Metrics struct {
	eventsEmitted   *prometheus.CounterVec
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
}

// NewMetrics registers audit trail metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		eventsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "accredis_audit_events_emitted_total",
			Help: "Audit events persisted, by category",
		}, []string{"category"}),
		persistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "accredis_audit_persist_failures_total",
			Help: "Audit events that failed to persist",
		}),
		persistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "accredis_audit_persist_duration_seconds",
			Help:    "Duration of audit event persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncEventsEmitted(category audit.EventCategory) {
	m.eventsEmitted.WithLabelValues(string(category)).Inc()
}

func (m *Metrics) IncPersistFailures() {
	m.persistFailures.Inc()
}

func (m *Metrics) ObservePersistDuration(seconds float64) {
	m.persistDuration.Observe(seconds)
}
