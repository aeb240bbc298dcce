package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"accredis/internal/access"
	"accredis/internal/document/generator"
	"accredis/internal/document/models"
	documentstore "accredis/internal/document/store/document"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/audit"
	"accredis/pkg/requestcontext"
)

const (
	originManual    = "manual"
	originGenerated = "generated"
	originUploaded  = "uploaded"
)

// Upload is the text of a file submitted as a new document.
type Upload struct {
	Filename     string
	Content      []byte
	Category     models.Category
	Jurisdiction models.Jurisdiction
	Tags         []string
}

// ListFilter narrows ListDocuments. A nil ClinicID means the principal's
// own clinic.
type ListFilter struct {
	ClinicID *id.ClinicID
	Status   *models.Status
	Category *models.Category
	Limit    int
}

// CreateDocument stores a new draft written by the principal.
func (s *Service) CreateDocument(ctx context.Context, p access.Principal, clinicID *id.ClinicID, draft models.Draft) (*models.Document, error) {
	ctx, span := tracer.Start(ctx, "document.CreateDocument")
	defer span.End()

	doc, err := s.create(ctx, p, clinicID, draft, originManual)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("document.id", doc.ID.String()))
	return doc, nil
}

// GenerateDocument drafts content with the configured generator and stores
// it as a version 1 draft titled after its first heading.
func (s *Service) GenerateDocument(ctx context.Context, p access.Principal, clinicID *id.ClinicID, req generator.Request) (*models.Document, error) {
	ctx, span := tracer.Start(ctx, "document.GenerateDocument")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	target, err := resolveClinic(p, clinicID)
	if err != nil {
		return nil, err
	}
	// Refuse before paying for a generation the principal cannot store.
	if err := s.enforcer.Check(ctx, p, access.OpInsert, access.EntityDocument, nil,
		access.DocumentRow(id.DocumentID{}, target, p.ID)); err != nil {
		return nil, err
	}

	content, err := s.generator.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "document generation failed",
			"clinic_id", target.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	doc, err := s.create(ctx, p, &target, models.Draft{
		Title:        models.ExtractTitle(content),
		Content:      content,
		Category:     req.Category,
		Jurisdiction: req.Jurisdiction,
	}, originGenerated)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return doc, nil
}

// UploadDocument stores uploaded text as a draft titled with its filename
// and tagged as uploaded.
func (s *Service) UploadDocument(ctx context.Context, p access.Principal, clinicID *id.ClinicID, up Upload) (*models.Document, error) {
	ctx, span := tracer.Start(ctx, "document.UploadDocument")
	defer span.End()

	if len(up.Content) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "uploaded file is empty")
	}
	tags := append([]string{models.TagUploaded}, up.Tags...)
	doc, err := s.create(ctx, p, clinicID, models.Draft{
		Title:        up.Filename,
		Content:      string(up.Content),
		Category:     up.Category,
		Jurisdiction: up.Jurisdiction,
		Tags:         tags,
	}, originUploaded)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return doc, nil
}

func (s *Service) create(ctx context.Context, p access.Principal, clinicID *id.ClinicID, draft models.Draft, origin string) (*models.Document, error) {
	target, err := resolveClinic(p, clinicID)
	if err != nil {
		return nil, err
	}
	docID := id.NewDocumentID()
	if err := s.enforcer.Check(ctx, p, access.OpInsert, access.EntityDocument, nil,
		access.DocumentRow(docID, target, p.ID)); err != nil {
		return nil, err
	}

	var created *models.Document
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		doc, err := models.NewDocument(docID, target, p.ID, draft, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.documents.Create(txCtx, doc); err != nil {
			return wrapStoreErr(err, "document")
		}
		created = doc
		return s.audit.Record(txCtx, audit.EventDocumentCreated, p.ID, doc.ClinicID, doc.ID.String())
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementDocumentsCreated(origin)
	s.logger.InfoContext(ctx, "document created",
		"document_id", created.ID.String(),
		"clinic_id", created.ClinicID.String(),
		"origin", origin,
		"request_id", requestcontext.RequestID(ctx),
	)
	return created, nil
}

// GetDocument returns a document from one of the principal's clinics.
func (s *Service) GetDocument(ctx context.Context, p access.Principal, docID id.DocumentID) (*models.Document, error) {
	doc, err := s.documents.FindByID(ctx, docID)
	if err != nil {
		return nil, wrapStoreErr(err, "document")
	}
	if err := s.enforcer.Check(ctx, p, access.OpSelect, access.EntityDocument,
		access.DocumentRow(doc.ID, doc.ClinicID, doc.CreatedBy), nil); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns a clinic's documents, newest first.
func (s *Service) ListDocuments(ctx context.Context, p access.Principal, f ListFilter) ([]*models.Document, error) {
	clinicID, err := resolveClinic(p, f.ClinicID)
	if err != nil {
		return nil, err
	}
	scope := access.DocumentRow(id.DocumentID{}, clinicID, id.UserID{})
	if err := s.enforcer.Check(ctx, p, access.OpSelect, access.EntityDocument, scope, nil); err != nil {
		return nil, err
	}
	docs, err := s.documents.List(ctx, documentstore.Filter{
		ClinicID: clinicID,
		Status:   f.Status,
		Category: f.Category,
		Limit:    f.Limit,
	})
	if err != nil {
		return nil, wrapStoreErr(err, "document")
	}
	return docs, nil
}

// UpdateDocument applies a partial edit. The creator and the clinic's
// managers may edit; an existing signature is kept.
func (s *Service) UpdateDocument(ctx context.Context, p access.Principal, docID id.DocumentID, edit models.Edit) (*models.Document, error) {
	ctx, span := tracer.Start(ctx, "document.UpdateDocument")
	defer span.End()

	var updated *models.Document
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		doc, err := s.documents.Execute(txCtx, docID,
			func(d *models.Document) error {
				row := access.DocumentRow(d.ID, d.ClinicID, d.CreatedBy)
				if err := s.enforcer.Check(txCtx, p, access.OpUpdate, access.EntityDocument, row, row); err != nil {
					return err
				}
				return d.CanEdit(edit)
			},
			func(d *models.Document) {
				d.ApplyEdit(edit, now)
			},
		)
		if err != nil {
			return wrapStoreErr(err, "document")
		}
		updated = doc
		return s.audit.Record(txCtx, audit.EventDocumentUpdated, p.ID, doc.ClinicID, doc.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return updated, nil
}
