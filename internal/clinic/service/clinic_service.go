package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"accredis/internal/access"
	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/audit"
	"accredis/pkg/platform/sentinel"
	"accredis/pkg/requestcontext"
)

// maxSlugAttempts bounds the numeric suffixes tried for a colliding slug.
const maxSlugAttempts = 50

// CreateClinic registers a clinic owned by the principal. The slug derives
// from the name with a numeric suffix on collision. When the principal's
// profile has no clinic yet it is linked to the new one.
func (s *Service) CreateClinic(ctx context.Context, p access.Principal, details models.ClinicDetails) (*models.Clinic, error) {
	ctx, span := tracer.Start(ctx, "clinic.CreateClinic")
	defer span.End()

	clinicID := id.NewClinicID()
	if err := s.enforcer.Check(ctx, p, access.OpInsert, access.EntityClinic, nil, access.ClinicRow(clinicID, p.ID)); err != nil {
		return nil, err
	}

	var created *models.Clinic
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		base := models.Slugify(details.Name)

		for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
			c, err := models.NewClinic(clinicID, details, models.SlugCandidate(base, attempt), p.ID, now)
			if err != nil {
				return err
			}
			err = s.clinics.Create(txCtx, c)
			if err == nil {
				created = c
				break
			}
			if !errors.Is(err, sentinel.ErrAlreadyUsed) {
				return wrapStoreErr(err, "clinic")
			}
			s.metrics.IncrementSlugCollisions()
		}
		if created == nil {
			return dErrors.New(dErrors.CodeConflict, "could not allocate a unique clinic slug")
		}

		if err := s.linkOwnerProfile(txCtx, p.ID, created.ID); err != nil {
			return err
		}
		return s.audit.Record(txCtx, audit.EventClinicCreated, p.ID, created.ID, created.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("clinic.id", created.ID.String()), attribute.String("clinic.slug", created.Slug))
	s.invalidate(ctx, p.ID)
	s.metrics.IncrementClinicsCreated()
	s.logger.InfoContext(ctx, "clinic created",
		"clinic_id", created.ID.String(),
		"slug", created.Slug,
		"request_id", requestcontext.RequestID(ctx),
	)
	return created, nil
}

// linkOwnerProfile attaches the owner's existing unaffiliated profile to the
// new clinic. Absence of a profile is fine.
func (s *Service) linkOwnerProfile(ctx context.Context, owner id.UserID, clinicID id.ClinicID) error {
	now := requestcontext.Now(ctx)
	_, err := s.profiles.Execute(ctx, owner,
		func(pr *models.Profile) error {
			if pr.HasClinic() {
				return errAlreadyLinked
			}
			return nil
		},
		func(pr *models.Profile) {
			pr.LinkClinic(clinicID, now)
		},
	)
	if err == nil || errors.Is(err, errAlreadyLinked) || errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	return wrapStoreErr(err, "profile")
}

var errAlreadyLinked = errors.New("profile already linked to a clinic")

// GetClinic returns a clinic the principal owns or belongs to.
func (s *Service) GetClinic(ctx context.Context, p access.Principal, clinicID id.ClinicID) (*models.Clinic, error) {
	c, err := s.clinics.FindByID(ctx, clinicID)
	if err != nil {
		return nil, wrapStoreErr(err, "clinic")
	}
	if err := s.enforcer.Check(ctx, p, access.OpSelect, access.EntityClinic, access.ClinicRow(c.ID, c.OwnerID), nil); err != nil {
		return nil, err
	}
	return c, nil
}

// ListClinics returns the clinics the principal owns plus its membership
// clinic, oldest first.
func (s *Service) ListClinics(ctx context.Context, p access.Principal) ([]*models.Clinic, error) {
	clinics, err := s.clinics.ListByIDs(ctx, p.ClinicIDs())
	if err != nil {
		return nil, wrapStoreErr(err, "clinic")
	}
	visible := make([]*models.Clinic, 0, len(clinics))
	for _, c := range clinics {
		if access.CanAccess(p, access.OpSelect, access.EntityClinic, access.ClinicRow(c.ID, c.OwnerID), nil) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// UpdateClinic replaces the editable clinic fields. Owner only.
func (s *Service) UpdateClinic(ctx context.Context, p access.Principal, clinicID id.ClinicID, details models.ClinicDetails) (*models.Clinic, error) {
	ctx, span := tracer.Start(ctx, "clinic.UpdateClinic")
	defer span.End()

	var updated *models.Clinic
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		c, err := s.clinics.Execute(txCtx, clinicID,
			func(c *models.Clinic) error {
				row := access.ClinicRow(c.ID, c.OwnerID)
				if err := s.enforcer.Check(txCtx, p, access.OpUpdate, access.EntityClinic, row, row); err != nil {
					return err
				}
				probe := *c
				return probe.ApplyDetails(details, now)
			},
			func(c *models.Clinic) {
				_ = c.ApplyDetails(details, now)
			},
		)
		if err != nil {
			return wrapStoreErr(err, "clinic")
		}
		updated = c
		return s.audit.Record(txCtx, audit.EventClinicUpdated, p.ID, c.ID, c.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return updated, nil
}
