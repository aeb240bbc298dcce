package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"accredis/internal/risk/models"
)

// Metrics contains Prometheus metrics for the risk register.
type Metrics struct {
	RisksCreated *prometheus.CounterVec
	RisksUpdated prometheus.Counter
	Exports      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RisksCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accredis_risks_created_total",
			Help: "Total number of risks raised, by tier",
		}, []string{"tier"}),
		RisksUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "accredis_risks_updated_total",
			Help: "Total number of risk updates",
		}),
		Exports: factory.NewCounter(prometheus.CounterOpts{
			Name: "accredis_risk_register_exports_total",
			Help: "Total number of risk register spreadsheet exports",
		}),
	}
}

func (m *Metrics) IncrementRisksCreated(tier models.Tier) {
	if m != nil {
		m.RisksCreated.WithLabelValues(string(tier)).Inc()
	}
}

func (m *Metrics) IncrementRisksUpdated() {
	if m != nil {
		m.RisksUpdated.Inc()
	}
}

func (m *Metrics) IncrementExports() {
	if m != nil {
		m.Exports.Inc()
	}
}
