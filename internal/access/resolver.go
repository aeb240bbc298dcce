package access

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	clinicmodels "accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/sentinel"
)

const resolveTimeout = 3 * time.Second

// ProfileFinder loads a principal's profile.
type ProfileFinder interface {
	FindByID(ctx context.Context, userID id.UserID) (*clinicmodels.Profile, error)
}

// OwnershipLister lists the clinics a principal owns.
type OwnershipLister interface {
	ListIDsByOwner(ctx context.Context, owner id.UserID) ([]id.ClinicID, error)
}

// Cache stores resolved principals between requests.
type Cache interface {
	Get(ctx context.Context, userID id.UserID) (*Principal, bool, error)
	Set(ctx context.Context, p *Principal) error
	Invalidate(ctx context.Context, userIDs ...id.UserID) error
}

// Resolver turns an authenticated principal id into a Principal carrying
// role and clinic relationships.
type Resolver struct {
	profiles ProfileFinder
	clinics  OwnershipLister
	cache    Cache
	logger   *slog.Logger
	metrics  *Metrics
}

type ResolverOption func(*Resolver)

func WithCache(c Cache) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

func WithMetrics(m *Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

func NewResolver(profiles ProfileFinder, clinics OwnershipLister, opts ...ResolverOption) *Resolver {
	r := &Resolver{profiles: profiles, clinics: clinics, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve loads the principal. A missing profile is not an error: the
// principal simply has no role or membership yet. Cache failures degrade to
// a store read.
func (r *Resolver) Resolve(ctx context.Context, userID id.UserID) (*Principal, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "principal is required")
	}

	if r.cache != nil {
		p, ok, err := r.cache.Get(ctx, userID)
		switch {
		case err != nil:
			r.logger.WarnContext(ctx, "principal cache read failed", "error", err)
		case ok:
			r.metrics.observeCache(true)
			return p, nil
		}
		r.metrics.observeCache(false)
	}

	p, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, p); err != nil {
			r.logger.WarnContext(ctx, "principal cache write failed", "error", err)
		}
	}
	return p, nil
}

// Invalidate drops cached principals after a profile or ownership change.
func (r *Resolver) Invalidate(ctx context.Context, userIDs ...id.UserID) {
	if r.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := r.cache.Invalidate(ctx, userIDs...); err != nil {
		r.logger.WarnContext(ctx, "principal cache invalidation failed", "error", err)
	}
}

// load fetches profile and owned clinics concurrently.
func (r *Resolver) load(ctx context.Context, userID id.UserID) (*Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	p := &Principal{ID: userID}

	g.Go(func() error {
		profile, err := r.profiles.FindByID(gctx, userID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
		}
		p.Role = profile.Role
		p.ClinicID = profile.ClinicID
		return nil
	})

	var owned []id.ClinicID
	g.Go(func() error {
		ids, err := r.clinics.ListIDsByOwner(gctx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load owned clinics")
		}
		owned = ids
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.OwnedClinics = owned
	return p, nil
}
