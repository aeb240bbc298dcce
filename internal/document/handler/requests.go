package handler

import (
	"strings"

	"accredis/internal/document/generator"
	"accredis/internal/document/models"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

// DocumentRequest is the body for POST /documents.
type DocumentRequest struct {
	ClinicID     string   `json:"clinic_id,omitempty"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Category     string   `json:"category"`
	Jurisdiction string   `json:"jurisdiction,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	parsedClinic       *id.ClinicID
	parsedCategory     models.Category
	parsedJurisdiction models.Jurisdiction
}

func (r *DocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	var err error
	if r.parsedClinic, err = parseClinic(r.ClinicID); err != nil {
		return err
	}
	if r.parsedCategory, err = models.ParseCategory(strings.TrimSpace(r.Category)); err != nil {
		return err
	}
	r.parsedJurisdiction, err = parseJurisdiction(r.Jurisdiction)
	return err
}

func (r *DocumentRequest) Clinic() *id.ClinicID {
	return r.parsedClinic
}

func (r *DocumentRequest) Draft() models.Draft {
	return models.Draft{
		Title:        r.Title,
		Content:      r.Content,
		Category:     r.parsedCategory,
		Jurisdiction: r.parsedJurisdiction,
		Tags:         r.Tags,
	}
}

// GenerateRequest is the body for POST /documents/generate.
type GenerateRequest struct {
	ClinicID     string `json:"clinic_id,omitempty"`
	Prompt       string `json:"prompt"`
	Category     string `json:"category"`
	Jurisdiction string `json:"jurisdiction,omitempty"`

	parsedClinic *id.ClinicID
	request      generator.Request
}

func (r *GenerateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	var err error
	if r.parsedClinic, err = parseClinic(r.ClinicID); err != nil {
		return err
	}
	category, err := models.ParseCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return err
	}
	jurisdiction, err := parseJurisdiction(r.Jurisdiction)
	if err != nil {
		return err
	}
	r.request = generator.Request{Prompt: r.Prompt, Category: category, Jurisdiction: jurisdiction}
	return r.request.Validate()
}

func (r *GenerateRequest) Clinic() *id.ClinicID {
	return r.parsedClinic
}

func (r *GenerateRequest) Request() generator.Request {
	return r.request
}

// UpdateDocumentRequest is the body for PATCH /documents/{id}. Omitted
// fields are left as they are.
type UpdateDocumentRequest struct {
	Title        *string   `json:"title,omitempty"`
	Content      *string   `json:"content,omitempty"`
	Category     *string   `json:"category,omitempty"`
	Jurisdiction *string   `json:"jurisdiction,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	BumpVersion  bool      `json:"bump_version,omitempty"`

	edit models.Edit
}

func (r *UpdateDocumentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.edit = models.Edit{
		Title:       r.Title,
		Content:     r.Content,
		Tags:        r.Tags,
		BumpVersion: r.BumpVersion,
	}
	if r.Category != nil {
		c, err := models.ParseCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return err
		}
		r.edit.Category = &c
	}
	if r.Jurisdiction != nil {
		j, err := models.ParseJurisdiction(strings.TrimSpace(*r.Jurisdiction))
		if err != nil {
			return err
		}
		r.edit.Jurisdiction = &j
	}
	if r.edit.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "no changes supplied")
	}
	return nil
}

func (r *UpdateDocumentRequest) Edit() models.Edit {
	return r.edit
}

// TransitionRequest is the body for POST /documents/{id}/transition.
type TransitionRequest struct {
	Status string `json:"status"`

	parsedStatus models.Status
}

func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := models.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	r.parsedStatus = status
	return nil
}

func (r *TransitionRequest) Target() models.Status {
	return r.parsedStatus
}

func parseClinic(raw string) (*id.ClinicID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	clinicID, err := id.ParseClinicID(raw)
	if err != nil {
		return nil, err
	}
	return &clinicID, nil
}

// parseJurisdiction defaults to national when the field is omitted.
func parseJurisdiction(raw string) (models.Jurisdiction, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.JurisdictionNational, nil
	}
	return models.ParseJurisdiction(raw)
}
