package access

import (
	"context"
	"log/slog"
	"net/http"

	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/httputil"
	"accredis/pkg/requestcontext"
)

type principalCtxKey struct{}

// PrincipalResolver is satisfied by *Resolver.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID id.UserID) (*Principal, error)
}

// WithPrincipal stores the resolved principal on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// FromContext returns the principal placed by RequirePrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}

// RequirePrincipal resolves the authenticated user id into a Principal.
// It must run after the bearer token middleware.
func RequirePrincipal(resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := requestcontext.UserID(ctx)
			if userID.IsNil() {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}

			p, err := resolver.Resolve(ctx, userID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve principal",
					"user_id", userID.String(),
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, *p)))
		})
	}
}
