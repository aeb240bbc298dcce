package models

import (
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

// Status is the workflow position of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusDraft, StatusReview, StatusPublished, StatusArchived:
		return st, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "status cannot be empty")
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid status")
}

func (s Status) String() string { return string(s) }

// Category classifies what kind of compliance document this is.
type Category string

const (
	CategoryPolicy         Category = "policy"
	CategoryProcedure      Category = "procedure"
	CategoryChecklist      Category = "checklist"
	CategoryRiskAssessment Category = "risk_assessment"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryPolicy, CategoryProcedure, CategoryChecklist, CategoryRiskAssessment:
		return c, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "category cannot be empty")
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid category")
}

func (c Category) IsValid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

func (c Category) String() string { return string(c) }

// Jurisdiction is either national or one Australian state or territory.
type Jurisdiction string

const JurisdictionNational Jurisdiction = "national"

func ParseJurisdiction(s string) (Jurisdiction, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "jurisdiction cannot be empty")
	}
	if Jurisdiction(s) == JurisdictionNational {
		return JurisdictionNational, nil
	}
	if !id.State(s).IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid jurisdiction")
	}
	return Jurisdiction(s), nil
}

func (j Jurisdiction) IsValid() bool {
	_, err := ParseJurisdiction(string(j))
	return err == nil
}

// State returns the state for a state jurisdiction.
func (j Jurisdiction) State() (id.State, bool) {
	st := id.State(j)
	return st, st.IsValid()
}

func (j Jurisdiction) String() string { return string(j) }
