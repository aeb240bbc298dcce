package service

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"

	"accredis/internal/access"
	"accredis/internal/risk/export"
	"accredis/internal/risk/models"
	riskstore "accredis/internal/risk/store"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/audit"
	"accredis/pkg/requestcontext"
)

// ListFilter narrows ListRisks. A nil ClinicID means the principal's own
// clinic.
type ListFilter struct {
	ClinicID *id.ClinicID
	Status   *models.Status
	Category *models.Category
	Limit    int
}

// CreateRisk raises an open risk owned by the principal.
func (s *Service) CreateRisk(ctx context.Context, p access.Principal, clinicID *id.ClinicID, d models.Details) (*models.Risk, error) {
	ctx, span := tracer.Start(ctx, "risk.CreateRisk")
	defer span.End()

	target, err := resolveClinic(p, clinicID)
	if err != nil {
		return nil, err
	}
	riskID := id.NewRiskID()
	if err := s.enforcer.Check(ctx, p, access.OpInsert, access.EntityRisk, nil, access.RiskRow(riskID, target)); err != nil {
		return nil, err
	}

	var created *models.Risk
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := models.NewRisk(riskID, target, p.ID, d, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.checkLinkedDocs(txCtx, target, r.LinkedDocs); err != nil {
			return err
		}
		if err := s.risks.Create(txCtx, r); err != nil {
			return wrapStoreErr(err, "risk")
		}
		created = r
		return s.audit.Record(txCtx, audit.EventRiskCreated, p.ID, r.ClinicID, r.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("risk.score", created.Score()))
	s.metrics.IncrementRisksCreated(created.Tier())
	s.logger.InfoContext(ctx, "risk created",
		"risk_id", created.ID.String(),
		"clinic_id", created.ClinicID.String(),
		"score", created.Score(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return created, nil
}

// GetRisk returns a risk from one of the principal's clinics.
func (s *Service) GetRisk(ctx context.Context, p access.Principal, riskID id.RiskID) (*models.Risk, error) {
	r, err := s.risks.FindByID(ctx, riskID)
	if err != nil {
		return nil, wrapStoreErr(err, "risk")
	}
	if err := s.enforcer.Check(ctx, p, access.OpSelect, access.EntityRisk, access.RiskRow(r.ID, r.ClinicID), nil); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRisks returns a clinic's register, highest score first.
func (s *Service) ListRisks(ctx context.Context, p access.Principal, f ListFilter) ([]*models.Risk, error) {
	clinicID, err := resolveClinic(p, f.ClinicID)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Check(ctx, p, access.OpSelect, access.EntityRisk, access.RiskRow(id.RiskID{}, clinicID), nil); err != nil {
		return nil, err
	}
	risks, err := s.risks.List(ctx, riskstore.Filter{
		ClinicID: clinicID,
		Status:   f.Status,
		Category: f.Category,
		Limit:    f.Limit,
	})
	if err != nil {
		return nil, wrapStoreErr(err, "risk")
	}
	return risks, nil
}

// UpdateRisk applies a partial update. Any member of the risk's clinic may
// update it; linked documents must stay within that clinic.
func (s *Service) UpdateRisk(ctx context.Context, p access.Principal, riskID id.RiskID, c models.Changes) (*models.Risk, error) {
	ctx, span := tracer.Start(ctx, "risk.UpdateRisk")
	defer span.End()

	var updated *models.Risk
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		r, err := s.risks.Execute(txCtx, riskID,
			func(r *models.Risk) error {
				row := access.RiskRow(r.ID, r.ClinicID)
				if err := s.enforcer.Check(txCtx, p, access.OpUpdate, access.EntityRisk, row, row); err != nil {
					return err
				}
				if err := r.CanApply(c); err != nil {
					return err
				}
				if c.LinkedDocs != nil {
					linked, _ := models.NormalizeLinkedDocs(*c.LinkedDocs)
					return s.checkLinkedDocs(txCtx, r.ClinicID, linked)
				}
				return nil
			},
			func(r *models.Risk) {
				r.Apply(c, now)
			},
		)
		if err != nil {
			return wrapStoreErr(err, "risk")
		}
		updated = r
		return s.audit.Record(txCtx, audit.EventRiskUpdated, p.ID, r.ClinicID, r.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.metrics.IncrementRisksUpdated()
	return updated, nil
}

// ExportRisks writes the filtered register as an XLSX workbook.
func (s *Service) ExportRisks(ctx context.Context, p access.Principal, f ListFilter, w io.Writer) error {
	ctx, span := tracer.Start(ctx, "risk.ExportRisks")
	defer span.End()

	risks, err := s.ListRisks(ctx, p, f)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := export.WriteRegister(w, risks); err != nil {
		span.RecordError(err)
		return err
	}
	s.metrics.IncrementExports()
	return nil
}
