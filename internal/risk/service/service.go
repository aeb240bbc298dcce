package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"accredis/internal/access"
	docmodels "accredis/internal/document/models"
	riskmetrics "accredis/internal/risk/metrics"
	"accredis/internal/risk/models"
	riskstore "accredis/internal/risk/store"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/audit"
	"accredis/pkg/platform/sentinel"
	txcontext "accredis/pkg/platform/tx"
)

var tracer = otel.Tracer("accredis/risk")

type RiskStore interface {
	Create(ctx context.Context, r *models.Risk) error
	FindByID(ctx context.Context, riskID id.RiskID) (*models.Risk, error)
	List(ctx context.Context, f riskstore.Filter) ([]*models.Risk, error)
	Execute(ctx context.Context, riskID id.RiskID, validate func(*models.Risk) error, mutate func(*models.Risk)) (*models.Risk, error)
}

// DocumentFinder looks up the documents a risk links to.
type DocumentFinder interface {
	FindByIDs(ctx context.Context, ids []id.DocumentID) ([]*docmodels.Document, error)
}

// Service maintains clinic risk registers.
type Service struct {
	risks     RiskStore
	documents DocumentFinder
	tx        txcontext.Runner
	enforcer  *access.Enforcer
	audit     *audit.Emitter
	logger    *slog.Logger
	metrics   *riskmetrics.Metrics
}

type config struct {
	tx        txcontext.Runner
	enforcer  *access.Enforcer
	logger    *slog.Logger
	publisher audit.Publisher
	metrics   *riskmetrics.Metrics
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

func WithMetrics(m *riskmetrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

func New(risks RiskStore, documents DocumentFinder, opts ...Option) *Service {
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
		risks:     risks,
		documents: documents,
		tx:        cfg.tx,
		enforcer:  cfg.enforcer,
		audit:     audit.NewEmitter(cfg.logger, cfg.publisher),
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
}

func resolveClinic(p access.Principal, clinicID *id.ClinicID) (id.ClinicID, error) {
	if clinicID != nil && !clinicID.IsNil() {
		return *clinicID, nil
	}
	if c, ok := p.DefaultClinic(); ok {
		return c, nil
	}
	return id.ClinicID{}, dErrors.New(dErrors.CodeValidation, "clinic_id is required")
}

// checkLinkedDocs requires every linked document to exist in clinicID.
// Foreign and unknown ids get the same answer.
func (s *Service) checkLinkedDocs(ctx context.Context, clinicID id.ClinicID, docIDs []id.DocumentID) error {
	if len(docIDs) == 0 {
		return nil
	}
	docs, err := s.documents.FindByIDs(ctx, docIDs)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load linked documents")
	}
	found := make(map[id.DocumentID]bool, len(docs))
	for _, d := range docs {
		if d.ClinicID == clinicID {
			found[d.ID] = true
		}
	}
	for _, docID := range docIDs {
		if !found[docID] {
			return dErrors.New(dErrors.CodeValidation, "linked documents must belong to the risk's clinic")
		}
	}
	return nil
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
