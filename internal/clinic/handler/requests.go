package handler

import (
	"strings"

	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

const (
	maxFieldLength   = 500
	maxContactLength = 254
)

// ClinicRequest is the body for POST /clinics and PATCH /clinics/{id}.
type ClinicRequest struct {
	Name    string  `json:"name"`
	ABN     *string `json:"abn,omitempty"`
	Address string  `json:"address"`
	State   string  `json:"state"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`

	parsedState id.State
}

// Validate checks sizes and parses the state. Field rules live in the model.
func (r *ClinicRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Name) > maxFieldLength || len(r.Address) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "name and address must be at most 500 characters")
	}
	if tooLong(r.ABN) || tooLong(r.Phone) || tooLong(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "contact fields must be at most 254 characters")
	}

	state, err := id.ParseState(strings.TrimSpace(r.State))
	if err != nil {
		return err
	}
	r.parsedState = state
	return nil
}

func (r *ClinicRequest) Details() models.ClinicDetails {
	return models.ClinicDetails{
		Name:    r.Name,
		ABN:     r.ABN,
		Address: r.Address,
		State:   r.parsedState,
		Phone:   r.Phone,
		Email:   r.Email,
	}
}

// ProfileRequest is the body for POST and PATCH /profile. An empty
// clinic_id leaves the profile unaffiliated.
type ProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	ClinicID  string `json:"clinic_id,omitempty"`

	parsedRole   id.Role
	parsedClinic *id.ClinicID
}

func (r *ProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.FirstName) > maxFieldLength || len(r.LastName) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, "names must be at most 500 characters")
	}

	role, err := id.ParseRole(strings.TrimSpace(r.Role))
	if err != nil {
		return err
	}
	r.parsedRole = role

	r.ClinicID = strings.TrimSpace(r.ClinicID)
	if r.ClinicID != "" {
		clinicID, err := id.ParseClinicID(r.ClinicID)
		if err != nil {
			return err
		}
		r.parsedClinic = &clinicID
	}
	return nil
}

func (r *ProfileRequest) Details() models.ProfileDetails {
	return models.ProfileDetails{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      r.parsedRole,
		ClinicID:  r.parsedClinic,
	}
}

func tooLong(s *string) bool {
	return s != nil && len(*s) > maxContactLength
}
