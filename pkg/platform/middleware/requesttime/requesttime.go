// Package requesttime captures one "now" per request so timestamps stamped
// during a single operation (updated_at, signed_at, audit trail) agree.
package requesttime

import (
	"net/http"
	"time"

	"accredis/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
