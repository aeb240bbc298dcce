package models

import (
	"maps"
	"slices"
	"time"

	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
)

type IssueSeverity string

const (
	SeverityLow    IssueSeverity = "low"
	SeverityMedium IssueSeverity = "medium"
	SeverityHigh   IssueSeverity = "high"
)

// Issue is one compliance finding.
type Issue struct {
	Code     string        `json:"code"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// Findings is what an auditor produces for a document.
type Findings struct {
	Score           int
	Issues          []Issue
	Recommendations []string
	Coverage        map[string]bool
}

// Audit is an immutable compliance assessment of one document version.
// ClinicID is copied from the document so visibility checks need no join.
type Audit struct {
	ID              id.AuditID      `json:"id"`
	DocumentID      id.DocumentID   `json:"document_id"`
	DocumentVersion int             `json:"document_version"`
	ClinicID        id.ClinicID     `json:"clinic_id"`
	Score           int             `json:"score"`
	Issues          []Issue         `json:"issues"`
	Recommendations []string        `json:"recommendations"`
	Coverage        map[string]bool `json:"coverage"`
	AuditedBy       id.UserID       `json:"audited_by"`
	AuditedAt       time.Time       `json:"audited_at"`
}

func NewAudit(auditID id.AuditID, doc *Document, f Findings, auditor id.UserID, now time.Time) (*Audit, error) {
	if doc == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "audited document is required")
	}
	if auditor.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "auditor is required")
	}
	if f.Score < 0 || f.Score > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "audit score must be between 0 and 100")
	}
	issues := slices.Clone(f.Issues)
	if issues == nil {
		issues = []Issue{}
	}
	recs := slices.Clone(f.Recommendations)
	if recs == nil {
		recs = []string{}
	}
	coverage := maps.Clone(f.Coverage)
	if coverage == nil {
		coverage = map[string]bool{}
	}
	return &Audit{
		ID:              auditID,
		DocumentID:      doc.ID,
		DocumentVersion: doc.Version,
		ClinicID:        doc.ClinicID,
		Score:           f.Score,
		Issues:          issues,
		Recommendations: recs,
		Coverage:        coverage,
		AuditedBy:       auditor,
		AuditedAt:       now,
	}, nil
}
