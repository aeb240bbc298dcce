// Package models holds the risk-register entry and its scoring rule.
package models

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

const (
	MaxTitleLength       = 300
	MaxDescriptionLength = 10000
	MaxMitigationLength  = 10000
	MaxLinkedDocs        = 50
)

type Category string

const (
	CategoryClinical Category = "clinical"
	CategoryWHS      Category = "WHS"
	CategoryPrivacy  Category = "privacy"
	CategoryBusiness Category = "business"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryClinical, CategoryWHS, CategoryPrivacy, CategoryBusiness:
		return c, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "category cannot be empty")
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid risk category")
}

func (c Category) IsValid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusMonitoring Status = "monitoring"
	StatusClosed     Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusOpen, StatusMonitoring, StatusClosed:
		return st, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "status cannot be empty")
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid risk status")
}

func (s Status) IsValid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Risk is a clinic's risk-register entry. The score is never stored on the
// struct; it is derived from severity and likelihood on demand.
type Risk struct {
	ID             id.RiskID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       Category        `json:"category"`
	Severity       Level           `json:"severity"`
	Likelihood     Level           `json:"likelihood"`
	Status         Status          `json:"status"`
	MitigationPlan *string         `json:"mitigation_plan,omitempty"`
	OwnerID        *id.UserID      `json:"owner_id,omitempty"`
	LinkedDocs     []id.DocumentID `json:"linked_docs"`
	ClinicID       id.ClinicID     `json:"clinic_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (r *Risk) Score() int {
	return Score(r.Severity, r.Likelihood)
}

func (r *Risk) Tier() Tier {
	return TierFor(r.Score())
}

// Details carries the fields supplied when a risk is raised.
type Details struct {
	Title          string
	Description    string
	Category       Category
	Severity       Level
	Likelihood     Level
	MitigationPlan *string
	LinkedDocs     []id.DocumentID
}

// NewRisk raises an open risk owned by its creator.
func NewRisk(riskID id.RiskID, clinicID id.ClinicID, creator id.UserID, d Details, now time.Time) (*Risk, error) {
	if clinicID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "risk clinic is required")
	}
	if creator.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "risk creator is required")
	}
	title, err := normalizeTitle(d.Title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(d.Description); err != nil {
		return nil, err
	}
	if !d.Category.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid risk category")
	}
	if !d.Severity.IsValid() || !d.Likelihood.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "severity and likelihood must be between 1 and 5")
	}
	plan, err := normalizePlan(d.MitigationPlan)
	if err != nil {
		return nil, err
	}
	linked, err := NormalizeLinkedDocs(d.LinkedDocs)
	if err != nil {
		return nil, err
	}

	owner := creator
	return &Risk{
		ID:             riskID,
		Title:          title,
		Description:    strings.TrimSpace(d.Description),
		Category:       d.Category,
		Severity:       d.Severity,
		Likelihood:     d.Likelihood,
		Status:         StatusOpen,
		MitigationPlan: plan,
		OwnerID:        &owner,
		LinkedDocs:     linked,
		ClinicID:       clinicID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Changes is a partial risk update. Nil fields are left as they are; an
// empty mitigation plan clears it.
type Changes struct {
	Title          *string
	Description    *string
	Category       *Category
	Severity       *Level
	Likelihood     *Level
	Status         *Status
	MitigationPlan *string
	OwnerID        *id.UserID
	LinkedDocs     *[]id.DocumentID
}

func (c Changes) IsEmpty() bool {
	return c.Title == nil && c.Description == nil && c.Category == nil && c.Severity == nil &&
		c.Likelihood == nil && c.Status == nil && c.MitigationPlan == nil && c.OwnerID == nil &&
		c.LinkedDocs == nil
}

// CanApply validates changes. Use with Apply in Execute callbacks.
func (r *Risk) CanApply(c Changes) error {
	if c.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "no changes supplied")
	}
	if c.Title != nil {
		if _, err := normalizeTitle(*c.Title); err != nil {
			return err
		}
	}
	if c.Description != nil {
		if err := validateDescription(*c.Description); err != nil {
			return err
		}
	}
	if c.Category != nil && !c.Category.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid risk category")
	}
	if (c.Severity != nil && !c.Severity.IsValid()) || (c.Likelihood != nil && !c.Likelihood.IsValid()) {
		return dErrors.New(dErrors.CodeValidation, "severity and likelihood must be between 1 and 5")
	}
	if c.Status != nil && !c.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid risk status")
	}
	if _, err := normalizePlan(c.MitigationPlan); err != nil {
		return err
	}
	if c.OwnerID != nil && c.OwnerID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "owner_id must not be nil")
	}
	if c.LinkedDocs != nil {
		if _, err := NormalizeLinkedDocs(*c.LinkedDocs); err != nil {
			return err
		}
	}
	return nil
}

// Apply writes validated changes and re-stamps UpdatedAt.
func (r *Risk) Apply(c Changes, now time.Time) {
	if c.Title != nil {
		r.Title, _ = normalizeTitle(*c.Title)
	}
	if c.Description != nil {
		r.Description = strings.TrimSpace(*c.Description)
	}
	if c.Category != nil {
		r.Category = *c.Category
	}
	if c.Severity != nil {
		r.Severity = *c.Severity
	}
	if c.Likelihood != nil {
		r.Likelihood = *c.Likelihood
	}
	if c.Status != nil {
		r.Status = *c.Status
	}
	if c.MitigationPlan != nil {
		r.MitigationPlan, _ = normalizePlan(c.MitigationPlan)
	}
	if c.OwnerID != nil {
		owner := *c.OwnerID
		r.OwnerID = &owner
	}
	if c.LinkedDocs != nil {
		r.LinkedDocs, _ = NormalizeLinkedDocs(*c.LinkedDocs)
	}
	r.UpdatedAt = now
}

// NormalizeLinkedDocs drops nil ids and duplicates, keeping first-seen
// order.
func NormalizeLinkedDocs(docs []id.DocumentID) ([]id.DocumentID, error) {
	out := make([]id.DocumentID, 0, len(docs))
	for _, d := range docs {
		if d.IsNil() || slices.Contains(out, d) {
			continue
		}
		out = append(out, d)
	}
	if len(out) > MaxLinkedDocs {
		return nil, dErrors.New(dErrors.CodeValidation, "too many linked documents")
	}
	return out, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", dErrors.New(dErrors.CodeValidation, "title must be 300 characters or less")
	}
	return title, nil
}

func validateDescription(desc string) error {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return dErrors.New(dErrors.CodeValidation, "description must be 10000 characters or less")
	}
	return nil
}

func normalizePlan(plan *string) (*string, error) {
	if plan == nil {
		return nil, nil
	}
	p := strings.TrimSpace(*plan)
	if p == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(p) > MaxMitigationLength {
		return nil, dErrors.New(dErrors.CodeValidation, "mitigation plan must be 10000 characters or less")
	}
	return &p, nil
}
