package handler

import (
	"strings"

	"accredis/internal/risk/models"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

// RiskRequest is the body for POST /risks.
type RiskRequest struct {
	ClinicID       string   `json:"clinic_id,omitempty"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Severity       int      `json:"severity"`
	Likelihood     int      `json:"likelihood"`
	MitigationPlan *string  `json:"mitigation_plan,omitempty"`
	LinkedDocs     []string `json:"linked_docs,omitempty"`

	parsedClinic *id.ClinicID
	details      models.Details
}

func (r *RiskRequest) Validate() error {
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
	severity, err := models.NewLevel(r.Severity)
	if err != nil {
		return err
	}
	likelihood, err := models.NewLevel(r.Likelihood)
	if err != nil {
		return err
	}
	linked, err := parseDocIDs(r.LinkedDocs)
	if err != nil {
		return err
	}
	r.details = models.Details{
		Title:          r.Title,
		Description:    r.Description,
		Category:       category,
		Severity:       severity,
		Likelihood:     likelihood,
		MitigationPlan: r.MitigationPlan,
		LinkedDocs:     linked,
	}
	return nil
}

func (r *RiskRequest) Clinic() *id.ClinicID {
	return r.parsedClinic
}

func (r *RiskRequest) Details() models.Details {
	return r.details
}

// UpdateRiskRequest is the body for PATCH /risks/{id}. An empty
// mitigation_plan clears the plan.
type UpdateRiskRequest struct {
	Title          *string   `json:"title,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Severity       *int      `json:"severity,omitempty"`
	Likelihood     *int      `json:"likelihood,omitempty"`
	Status         *string   `json:"status,omitempty"`
	MitigationPlan *string   `json:"mitigation_plan,omitempty"`
	OwnerID        *string   `json:"owner_id,omitempty"`
	LinkedDocs     *[]string `json:"linked_docs,omitempty"`

	changes models.Changes
}

func (r *UpdateRiskRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.changes = models.Changes{
		Title:          r.Title,
		Description:    r.Description,
		MitigationPlan: r.MitigationPlan,
	}
	if r.Category != nil {
		c, err := models.ParseCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return err
		}
		r.changes.Category = &c
	}
	if r.Severity != nil {
		l, err := models.NewLevel(*r.Severity)
		if err != nil {
			return err
		}
		r.changes.Severity = &l
	}
	if r.Likelihood != nil {
		l, err := models.NewLevel(*r.Likelihood)
		if err != nil {
			return err
		}
		r.changes.Likelihood = &l
	}
	if r.Status != nil {
		st, err := models.ParseStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return err
		}
		r.changes.Status = &st
	}
	if r.OwnerID != nil {
		owner, err := id.ParseUserID(strings.TrimSpace(*r.OwnerID))
		if err != nil {
			return err
		}
		r.changes.OwnerID = &owner
	}
	if r.LinkedDocs != nil {
		linked, err := parseDocIDs(*r.LinkedDocs)
		if err != nil {
			return err
		}
		r.changes.LinkedDocs = &linked
	}
	if r.changes.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "no changes supplied")
	}
	return nil
}

func (r *UpdateRiskRequest) Changes() models.Changes {
	return r.changes
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

func parseDocIDs(raw []string) ([]id.DocumentID, error) {
	docs := make([]id.DocumentID, 0, len(raw))
	for _, s := range raw {
		docID, err := id.ParseDocumentID(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		docs = append(docs, docID)
	}
	return docs, nil
}
