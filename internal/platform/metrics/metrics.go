package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP level Prometheus metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter
}

// New creates and registers the HTTP metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accredis_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "accredis_http_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
