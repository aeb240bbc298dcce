package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"accredis/internal/access"
	"accredis/internal/document/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/audit"
	"accredis/pkg/requestcontext"
)

// AuditDocument scores the current version of a document and records the
// result. Audits are never updated; re-auditing adds a new record.
func (s *Service) AuditDocument(ctx context.Context, p access.Principal, docID id.DocumentID) (*models.Audit, error) {
	ctx, span := tracer.Start(ctx, "document.AuditDocument")
	defer span.End()

	doc, err := s.GetDocument(ctx, p, docID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	findings := s.auditor.Audit(doc.Content, doc.Jurisdiction)
	var recorded *models.Audit
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		a, err := models.NewAudit(id.NewAuditID(), doc, findings, p.ID, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.enforcer.Check(txCtx, p, access.OpInsert, access.EntityAudit, nil,
			access.AuditRow(a.ID, a.ClinicID, a.AuditedBy)); err != nil {
			return err
		}
		if err := s.audits.Create(txCtx, a); err != nil {
			return wrapStoreErr(err, "audit")
		}
		recorded = a
		return s.audit.Record(txCtx, audit.EventDocumentAudited, p.ID, a.ClinicID, doc.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("audit.score", recorded.Score))
	s.metrics.ObserveAudit(recorded.Score)
	s.logger.InfoContext(ctx, "document audited",
		"document_id", doc.ID.String(),
		"version", recorded.DocumentVersion,
		"score", recorded.Score,
		"request_id", requestcontext.RequestID(ctx),
	)
	return recorded, nil
}

// ListAudits returns the audits of a document, newest first.
func (s *Service) ListAudits(ctx context.Context, p access.Principal, docID id.DocumentID) ([]*models.Audit, error) {
	if _, err := s.GetDocument(ctx, p, docID); err != nil {
		return nil, err
	}
	audits, err := s.audits.ListByDocument(ctx, docID)
	if err != nil {
		return nil, wrapStoreErr(err, "audit")
	}
	visible := make([]*models.Audit, 0, len(audits))
	for _, a := range audits {
		if access.CanAccess(p, access.OpSelect, access.EntityAudit, access.AuditRow(a.ID, a.ClinicID, a.AuditedBy), nil) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}
