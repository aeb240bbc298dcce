package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"accredis/internal/access"
	clinicmetrics "accredis/internal/clinic/metrics"
	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/audit"
	"accredis/pkg/platform/sentinel"
	txcontext "accredis/pkg/platform/tx"
)

var tracer = otel.Tracer("accredis/clinic")

type ClinicStore interface {
	Create(ctx context.Context, c *models.Clinic) error
	FindByID(ctx context.Context, clinicID id.ClinicID) (*models.Clinic, error)
	ListByIDs(ctx context.Context, ids []id.ClinicID) ([]*models.Clinic, error)
	ListIDsByOwner(ctx context.Context, owner id.UserID) ([]id.ClinicID, error)
	Execute(ctx context.Context, clinicID id.ClinicID, validate func(*models.Clinic) error, mutate func(*models.Clinic)) (*models.Clinic, error)
}

type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error)
	Execute(ctx context.Context, userID id.UserID, validate func(*models.Profile) error, mutate func(*models.Profile)) (*models.Profile, error)
}

// PrincipalInvalidator drops cached principals whose role, membership or
// ownership just changed.
type PrincipalInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...id.UserID)
}

// Service manages clinics and the profiles that link principals to them.
// Every operation takes the acting principal explicitly.
type Service struct {
	clinics     ClinicStore
	profiles    ProfileStore
	tx          txcontext.Runner
	enforcer    *access.Enforcer
	audit       *audit.Emitter
	invalidator PrincipalInvalidator
	logger      *slog.Logger
	metrics     *clinicmetrics.Metrics
}

type config struct {
	tx          txcontext.Runner
	enforcer    *access.Enforcer
	logger      *slog.Logger
	publisher   audit.Publisher
	invalidator PrincipalInvalidator
	metrics     *clinicmetrics.Metrics
}

type Option func(*config)

func WithTx(tx txcontext.Runner) Option {
	return func(c *config) { c.tx = tx }
}

func WithEnforcer(e *access.Enforcer) Option {
	return func(c *config) { c.enforcer = e }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(c *config) { c.publisher = p }
}

func WithPrincipalInvalidator(inv PrincipalInvalidator) Option {
	return func(c *config) { c.invalidator = inv }
}

func WithMetrics(m *clinicmetrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func New(clinics ClinicStore, profiles ProfileStore, opts ...Option) *Service {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = txcontext.NewMemoryRunner()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		clinics:     clinics,
		profiles:    profiles,
		tx:          cfg.tx,
		enforcer:    cfg.enforcer,
		audit:       audit.NewEmitter(cfg.logger, cfg.publisher),
		invalidator: cfg.invalidator,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
	}
}

func (s *Service) invalidate(ctx context.Context, userIDs ...id.UserID) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userIDs...)
	}
}

// wrapStoreErr translates store sentinels into domain errors.
func wrapStoreErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, entity+" already exists")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to access "+entity)
}
