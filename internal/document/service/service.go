package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"accredis/internal/access"
	"accredis/internal/document/auditor"
	"accredis/internal/document/generator"
	docmetrics "accredis/internal/document/metrics"
	"accredis/internal/document/models"
	documentstore "accredis/internal/document/store/document"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/audit"
	"accredis/pkg/platform/sentinel"
	txcontext "accredis/pkg/platform/tx"
)

var tracer = otel.Tracer("accredis/document")

type DocumentStore interface {
	Create(ctx context.Context, d *models.Document) error
	FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error)
	List(ctx context.Context, f documentstore.Filter) ([]*models.Document, error)
	Execute(ctx context.Context, docID id.DocumentID, validate func(*models.Document) error, mutate func(*models.Document)) (*models.Document, error)
}

type AuditStore interface {
	Create(ctx context.Context, a *models.Audit) error
	ListByDocument(ctx context.Context, docID id.DocumentID) ([]*models.Audit, error)
}

// Auditor scores document content for compliance coverage.
type Auditor interface {
	Audit(content string, jurisdiction models.Jurisdiction) models.Findings
}

// Service runs the document workflow: drafting, editing, review, signing
// and compliance audits.
type Service struct {
	documents DocumentStore
	audits    AuditStore
	generator generator.Generator
	auditor   Auditor
	tx        txcontext.Runner
	enforcer  *access.Enforcer
	audit     *audit.Emitter
	logger    *slog.Logger
	metrics   *docmetrics.Metrics
}

type config struct {
	generator generator.Generator
	auditor   Auditor
	tx        txcontext.Runner
	enforcer  *access.Enforcer
	logger    *slog.Logger
	publisher audit.Publisher
	metrics   *docmetrics.Metrics
}

type Option func(*config)

func WithGenerator(g generator.Generator) Option {
	return func(c *config) { c.generator = g }
}

func WithAuditor(a Auditor) Option {
	return func(c *config) { c.auditor = a }
}

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

func WithMetrics(m *docmetrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// New wires a document service. Without options it drafts from the static
// template and audits with the default section rules.
func New(documents DocumentStore, audits AuditStore, opts ...Option) *Service {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.generator == nil {
		cfg.generator = generator.NewTemplate()
	}
	if cfg.auditor == nil {
		cfg.auditor = auditor.New()
	}
	if cfg.tx == nil {
		cfg.tx = txcontext.NewMemoryRunner()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		documents: documents,
		audits:    audits,
		generator: cfg.generator,
		auditor:   cfg.auditor,
		tx:        cfg.tx,
		enforcer:  cfg.enforcer,
		audit:     audit.NewEmitter(cfg.logger, cfg.publisher),
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

// resolveClinic returns the explicit clinic or the principal's default.
func resolveClinic(p access.Principal, clinicID *id.ClinicID) (id.ClinicID, error) {
	if clinicID != nil && !clinicID.IsNil() {
		return *clinicID, nil
	}
	if c, ok := p.DefaultClinic(); ok {
		return c, nil
	}
	return id.ClinicID{}, dErrors.New(dErrors.CodeValidation, "clinic_id is required")
}

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
