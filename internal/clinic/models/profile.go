package models

import (
	"strings"
	"time"

	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

// Profile is per-principal metadata: name, role and optional clinic
// membership. Its id is the principal id.
type Profile struct {
	ID        id.UserID    `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Role      id.Role      `json:"role"`
	ClinicID  *id.ClinicID `json:"clinic_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ProfileDetails carries the self-editable profile fields.
type ProfileDetails struct {
	FirstName string
	LastName  string
	Role      id.Role
	ClinicID  *id.ClinicID
}

func NewProfile(userID id.UserID, details ProfileDetails, now time.Time) (*Profile, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "profile id is required")
	}
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:        userID,
		FirstName: details.FirstName,
		LastName:  details.LastName,
		Role:      details.Role,
		ClinicID:  details.ClinicID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Profile) ApplyDetails(details ProfileDetails, now time.Time) error {
	details, err := details.normalize()
	if err != nil {
		return err
	}
	p.FirstName = details.FirstName
	p.LastName = details.LastName
	p.Role = details.Role
	p.ClinicID = details.ClinicID
	p.UpdatedAt = now
	return nil
}

// HasClinic reports whether the profile is linked to a clinic.
func (p *Profile) HasClinic() bool {
	return p.ClinicID != nil
}

// LinkClinic sets the clinic membership.
func (p *Profile) LinkClinic(clinicID id.ClinicID, now time.Time) {
	p.ClinicID = &clinicID
	p.UpdatedAt = now
}

func (d ProfileDetails) normalize() (ProfileDetails, error) {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	if d.FirstName == "" || d.LastName == "" {
		return d, dErrors.New(dErrors.CodeValidation, "first and last name are required")
	}
	if len(d.FirstName) > 100 || len(d.LastName) > 100 {
		return d, dErrors.New(dErrors.CodeValidation, "names must be 100 characters or less")
	}
	if !d.Role.IsValid() {
		return d, dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	if d.ClinicID != nil && d.ClinicID.IsNil() {
		d.ClinicID = nil
	}
	return d, nil
}
