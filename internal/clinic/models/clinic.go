package models

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

const (
	maxNameLength    = 200
	maxAddressLength = 500
)

// Clinic is the tenant aggregate. Every document and risk is scoped to
// exactly one clinic.
//
// Invariants:
//   - Name and Address are non-empty
//   - State is a valid Australian jurisdiction
//   - Slug is non-empty and unique across clinics (enforced by the store)
//   - OwnerID and CreatedAt never change after construction
type Clinic struct {
	ID        id.ClinicID `json:"id"`
	Name      string      `json:"name"`
	ABN       *string     `json:"abn,omitempty"`
	Address   string      `json:"address"`
	State     id.State    `json:"state"`
	Phone     *string     `json:"phone,omitempty"`
	Email     *string     `json:"email,omitempty"`
	Slug      string      `json:"slug"`
	OwnerID   id.UserID   `json:"owner_id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ClinicDetails carries the owner-editable clinic fields.
type ClinicDetails struct {
	Name    string
	ABN     *string
	Address string
	State   id.State
	Phone   *string
	Email   *string
}

// NewClinic validates details and builds a clinic owned by owner.
func NewClinic(clinicID id.ClinicID, details ClinicDetails, slug string, owner id.UserID, now time.Time) (*Clinic, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "clinic owner is required")
	}
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "clinic slug is required")
	}
	details, err := details.normalize()
	if err != nil {
		return nil, err
	}
	return &Clinic{
		ID:        clinicID,
		Name:      details.Name,
		ABN:       details.ABN,
		Address:   details.Address,
		State:     details.State,
		Phone:     details.Phone,
		Email:     details.Email,
		Slug:      slug,
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyDetails replaces the editable fields. The slug is kept so links
// issued earlier stay valid.
func (c *Clinic) ApplyDetails(details ClinicDetails, now time.Time) error {
	details, err := details.normalize()
	if err != nil {
		return err
	}
	c.Name = details.Name
	c.ABN = details.ABN
	c.Address = details.Address
	c.State = details.State
	c.Phone = details.Phone
	c.Email = details.Email
	c.UpdatedAt = now
	return nil
}

func (d ClinicDetails) normalize() (ClinicDetails, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Address = strings.TrimSpace(d.Address)
	switch {
	case d.Name == "":
		return d, dErrors.New(dErrors.CodeValidation, "clinic name is required")
	case utf8.RuneCountInString(d.Name) > maxNameLength:
		return d, dErrors.New(dErrors.CodeValidation, "clinic name must be 200 characters or less")
	case d.Address == "":
		return d, dErrors.New(dErrors.CodeValidation, "clinic address is required")
	case utf8.RuneCountInString(d.Address) > maxAddressLength:
		return d, dErrors.New(dErrors.CodeValidation, "clinic address must be 500 characters or less")
	case !d.State.IsValid():
		return d, dErrors.New(dErrors.CodeValidation, "invalid state")
	}

	d.ABN = trimOptional(d.ABN)
	if d.ABN != nil && !validABN(*d.ABN) {
		return d, dErrors.New(dErrors.CodeValidation, "abn must be 11 digits")
	}
	d.Phone = trimOptional(d.Phone)
	d.Email = trimOptional(d.Email)
	if d.Email != nil {
		if _, err := mail.ParseAddress(*d.Email); err != nil {
			return d, dErrors.New(dErrors.CodeValidation, "invalid email")
		}
	}
	return d, nil
}

// validABN accepts 11 digits, ignoring spaces.
func validABN(abn string) bool {
	digits := 0
	for _, r := range abn {
		switch {
		case r == ' ':
		case r >= '0' && r <= '9':
			digits++
		default:
			return false
		}
	}
	return digits == 11
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
