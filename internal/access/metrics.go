package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts principal cache effectiveness and policy denials.
type Metrics struct {
	cacheLookups *prometheus.CounterVec
	denials      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accredis_principal_cache_lookups_total",
			Help: "Principal cache lookups by result (hit or miss)",
		}, []string{"result"}),
		denials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accredis_access_denials_total",
			Help: "Row-level access denials by entity and operation",
		}, []string{"entity", "operation"}),
	}
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveDenial records a forbidden decision.
func (m *Metrics) ObserveDenial(entity Entity, op Operation) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(string(entity), string(op)).Inc()
}
