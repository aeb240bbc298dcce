package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the document workflow.
type Metrics struct {
	DocumentsCreated    *prometheus.CounterVec
	DocumentsPublished  prometheus.Counter
	TransitionsRejected *prometheus.CounterVec
	AuditsRecorded      prometheus.Counter
	AuditScore          prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accredis_documents_created_total",
			Help: "Total number of documents created, by origin (manual, generated, uploaded)",
		}, []string{"origin"}),
		DocumentsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "accredis_documents_published_total",
			Help: "Total number of documents signed and published",
		}),
		TransitionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accredis_document_transitions_rejected_total",
			Help: "Workflow transitions refused, by reason",
		}, []string{"reason"}),
		AuditsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "accredis_document_audits_total",
			Help: "Total number of compliance audits recorded",
		}),
		AuditScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "accredis_document_audit_score",
			Help:    "Distribution of compliance audit scores",
			Buckets: []float64{20, 40, 60, 80, 90, 100},
		}),
	}
}

func (m *Metrics) IncrementDocumentsCreated(origin string) {
	if m != nil {
		m.DocumentsCreated.WithLabelValues(origin).Inc()
	}
}

func (m *Metrics) IncrementDocumentsPublished() {
	if m != nil {
		m.DocumentsPublished.Inc()
	}
}

func (m *Metrics) IncrementTransitionsRejected(reason string) {
	if m != nil {
		m.TransitionsRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveAudit(score int) {
	if m != nil {
		m.AuditsRecorded.Inc()
		m.AuditScore.Observe(float64(score))
	}
}
