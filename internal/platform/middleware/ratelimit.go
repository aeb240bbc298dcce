package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"accredis/internal/platform/metrics"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/httputil"
	"accredis/pkg/requestcontext"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client token bucket keyed by client IP.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	metrics *metrics.Metrics

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewRateLimiter builds a limiter. Call Sweep in a goroutine to evict idle
// clients; it returns when ctx is done.
func NewRateLimiter(rps float64, burst int, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		metrics: m,
		clients: make(map[string]*clientLimiter),
	}
}

func (l *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cl, ok := l.clients[key]; ok {
		cl.lastSeen = now
		return cl.limiter
	}
	cl := &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst), lastSeen: now}
	l.clients[key] = cl
	return cl.limiter
}

// Sweep evicts limiters idle for longer than limiterIdleTTL.
func (l *RateLimiter) Sweep(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evictIdle(now)
		}
	}
}

func (l *RateLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, cl := range l.clients {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(l.clients, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint.
// Relies on metadata.ClientMetadata having run first.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		limiter := l.limiterFor(requestcontext.ClientIP(r.Context()), now)

		reservation := limiter.ReserveN(now, 1)
		if !reservation.OK() {
			l.reject(w, 0)
			return
		}
		if delay := reservation.DelayFrom(now); delay > 0 {
			reservation.CancelAt(now)
			l.reject(w, int(delay.Seconds())+1)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.TokensAt(now))))
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) reject(w http.ResponseWriter, retryAfterSecs int) {
	if l.metrics != nil {
		l.metrics.RateLimited.Inc()
	}
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests, "rate limit exceeded"))
}
