package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"accredis/internal/access"
	"accredis/internal/document/models"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/audit"
	"accredis/pkg/requestcontext"
)

var transitionEvents = map[models.Status]audit.AuditEvent{
	models.StatusReview:    audit.EventDocumentSubmitted,
	models.StatusPublished: audit.EventDocumentPublished,
	models.StatusArchived:  audit.EventDocumentArchived,
}

// Transition moves a document through the workflow. The adjacency and
// authorization checks run under the store's row lock, so of two concurrent
// publishes exactly one succeeds and the other sees invalid_transition.
func (s *Service) Transition(ctx context.Context, p access.Principal, docID id.DocumentID, to models.Status) (*models.Document, error) {
	ctx, span := tracer.Start(ctx, "document.Transition")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", docID.String()), attribute.String("document.to", string(to)))

	var (
		moved    *models.Document
		clinicID id.ClinicID
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		var actor models.Actor
		doc, err := s.documents.Execute(txCtx, docID,
			func(d *models.Document) error {
				clinicID = d.ClinicID
				row := access.DocumentRow(d.ID, d.ClinicID, d.CreatedBy)
				if err := s.enforcer.Check(txCtx, p, access.OpUpdate, access.EntityDocument, row, row); err != nil {
					return err
				}
				actor = models.Actor{ID: p.ID, Role: p.RoleIn(d.ClinicID)}
				return d.CanTransition(to, actor)
			},
			func(d *models.Document) {
				d.ApplyTransition(to, actor, now)
			},
		)
		if err != nil {
			return wrapStoreErr(err, "document")
		}
		moved = doc
		return s.audit.Record(txCtx, transitionEvents[to], p.ID, doc.ClinicID, doc.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		s.refuseTransition(ctx, p, clinicID, docID, to, err)
		return nil, err
	}

	if to == models.StatusPublished {
		s.metrics.IncrementDocumentsPublished()
	}
	s.logger.InfoContext(ctx, "document transitioned",
		"document_id", moved.ID.String(),
		"status", string(moved.Status),
		"version", moved.Version,
		"request_id", requestcontext.RequestID(ctx),
	)
	return moved, nil
}

// refuseTransition records workflow and access refusals. Store failures and
// unknown documents are not refusals.
func (s *Service) refuseTransition(ctx context.Context, p access.Principal, clinicID id.ClinicID, docID id.DocumentID, to models.Status, err error) {
	code := dErrors.CodeOf(err)
	if code != dErrors.CodeInvalidTransition && code != dErrors.CodeForbidden {
		return
	}
	s.metrics.IncrementTransitionsRejected(string(code))
	s.audit.RecordRefusal(ctx, audit.EventTransitionRefused, p.ID, clinicID, docID.String(),
		string(code)+": to "+string(to))
}
