package service

import (
	"context"

	"accredis/internal/access"
	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/audit"
	"accredis/pkg/requestcontext"
)

// CreateProfile creates the principal's own profile. A referenced clinic
// must exist.
func (s *Service) CreateProfile(ctx context.Context, p access.Principal, details models.ProfileDetails) (*models.Profile, error) {
	ctx, span := tracer.Start(ctx, "clinic.CreateProfile")
	defer span.End()

	if err := s.enforcer.Check(ctx, p, access.OpInsert, access.EntityProfile, nil, access.ProfileRow(p.ID)); err != nil {
		return nil, err
	}

	var created *models.Profile
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireClinic(txCtx, details.ClinicID); err != nil {
			return err
		}
		profile, err := models.NewProfile(p.ID, details, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.profiles.Create(txCtx, profile); err != nil {
			return wrapStoreErr(err, "profile")
		}
		created = profile
		return s.audit.Record(txCtx, audit.EventProfileCreated, p.ID, clinicOf(profile), profile.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	s.metrics.IncrementProfilesCreated()
	return created, nil
}

// GetProfile returns the principal's own profile.
func (s *Service) GetProfile(ctx context.Context, p access.Principal) (*models.Profile, error) {
	if err := s.enforcer.Check(ctx, p, access.OpSelect, access.EntityProfile, access.ProfileRow(p.ID), nil); err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByID(ctx, p.ID)
	if err != nil {
		return nil, wrapStoreErr(err, "profile")
	}
	return profile, nil
}

// UpdateProfile replaces the principal's own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, p access.Principal, details models.ProfileDetails) (*models.Profile, error) {
	ctx, span := tracer.Start(ctx, "clinic.UpdateProfile")
	defer span.End()

	row := access.ProfileRow(p.ID)
	if err := s.enforcer.Check(ctx, p, access.OpUpdate, access.EntityProfile, row, row); err != nil {
		return nil, err
	}

	var updated *models.Profile
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireClinic(txCtx, details.ClinicID); err != nil {
			return err
		}
		now := requestcontext.Now(txCtx)
		profile, err := s.profiles.Execute(txCtx, p.ID,
			func(pr *models.Profile) error {
				probe := *pr
				return probe.ApplyDetails(details, now)
			},
			func(pr *models.Profile) {
				_ = pr.ApplyDetails(details, now)
			},
		)
		if err != nil {
			return wrapStoreErr(err, "profile")
		}
		updated = profile
		return s.audit.Record(txCtx, audit.EventProfileUpdated, p.ID, clinicOf(profile), profile.ID.String())
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.invalidate(ctx, p.ID)
	return updated, nil
}

func (s *Service) requireClinic(ctx context.Context, clinicID *id.ClinicID) error {
	if clinicID == nil || clinicID.IsNil() {
		return nil
	}
	if _, err := s.clinics.FindByID(ctx, *clinicID); err != nil {
		return wrapStoreErr(err, "clinic")
	}
	return nil
}

func clinicOf(p *models.Profile) id.ClinicID {
	if p.ClinicID == nil {
		return id.ClinicID{}
	}
	return *p.ClinicID
}
