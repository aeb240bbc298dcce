// Package httptransport assembles the API router: the shared middleware
// chain, operational endpoints and the authenticated module routes.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"accredis/internal/access"
	"accredis/internal/platform/metrics"
	platformmw "accredis/internal/platform/middleware"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/httputil"
	authmw "accredis/pkg/platform/middleware/auth"
	"accredis/pkg/platform/middleware/metadata"
	"accredis/pkg/platform/middleware/request"
	"accredis/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// Registrar mounts a module's routes on the authenticated sub-router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies are the collaborators the router needs. RateLimiter and
// Health are optional.
type Dependencies struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	RateLimiter *platformmw.RateLimiter
	Validator   authmw.JWTValidator
	Principals  access.PrincipalResolver
	Health      map[string]HealthCheck
	Handlers    []Registrar
}

// NewRouter wires the public endpoints. Everything except /healthz and
// /metrics requires a bearer token that resolves to a principal.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(deps.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(deps.Logger))
	r.Use(platformmw.CORS(deps.CORSOrigins))
	if deps.Metrics != nil {
		r.Use(platformmw.Latency(deps.Metrics))
	}

	r.Get("/healthz", healthz(deps.Health, deps.Logger))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}
		r.Use(authmw.RequireAuth(deps.Validator, deps.Logger))
		r.Use(access.RequirePrincipal(deps.Principals, deps.Logger))
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthz(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
