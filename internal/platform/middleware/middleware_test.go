package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accredis/internal/platform/metrics"
	"accredis/pkg/platform/middleware/metadata"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	limiter := NewRateLimiter(0.001, 2, m)
	h := metadata.ClientMetadata(limiter.Middleware(okHandler()))

	do := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1:2").Code)

	rec := do("10.0.0.1:3")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1").Code, "other clients keep their own bucket")
	assert.InDelta(t, 1, testutil.ToFloat64(m.RateLimited), 0)
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	limiter := NewRateLimiter(1, 1, nil)
	now := time.Now()
	limiter.limiterFor("a", now.Add(-time.Hour))
	limiter.limiterFor("b", now)

	limiter.evictIdle(now)

	assert.NotContains(t, limiter.clients, "a")
	assert.Contains(t, limiter.clients, "b")
}

func TestLatency_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := chi.NewRouter()
	r.Use(Latency(m))
	r.Get("/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents/abc", nil))

	count := testutil.CollectAndCount(m.RequestDuration, "accredis_http_request_duration_seconds")
	assert.Equal(t, 1, count)
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	labels := families[0].GetMetric()[0].GetLabel()
	got := map[string]string{}
	for _, l := range labels {
		got[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, "/documents/{id}", got["route"])
	assert.Equal(t, "4xx", got["status"])
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"https://app.example"})(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/documents", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
