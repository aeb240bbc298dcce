package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for clinic registration.
type Metrics struct {
	ClinicsCreated  prometheus.Counter
	ProfilesCreated prometheus.Counter
	SlugCollisions  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClinicsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "accredis_clinics_created_total",
			Help: "Total number of clinics registered",
		}),
		ProfilesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "accredis_profiles_created_total",
			Help: "Total number of profiles created",
		}),
		SlugCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "accredis_clinic_slug_collisions_total",
			Help: "Slug candidates rejected because another clinic holds them",
		}),
	}
}

func (m *Metrics) IncrementClinicsCreated() {
	if m != nil {
		m.ClinicsCreated.Inc()
	}
}

func (m *Metrics) IncrementProfilesCreated() {
	if m != nil {
		m.ProfilesCreated.Inc()
	}
}

func (m *Metrics) IncrementSlugCollisions() {
	if m != nil {
		m.SlugCollisions.Inc()
	}
}
