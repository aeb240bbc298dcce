// Package models holds the document aggregate, its workflow and the
// compliance audits recorded against it.
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
	MaxTitleLength   = 300
	MaxContentBytes  = 20 << 20
	MaxTags          = 20
	MaxTagLength     = 50
	TagUploaded      = "uploaded"
	untitledDocument = "Untitled document"
)

// Document is a clinic-scoped compliance document.
//
// Invariants:
//   - Version starts at 1 and never decreases
//   - Tags hold no duplicates or blanks
//   - Signature is set only on the review→published transition and is
//     never replaced or cleared afterwards
//   - ClinicID, CreatedBy and CreatedAt never change
type Document struct {
	ID           id.DocumentID `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Category     Category      `json:"category"`
	Jurisdiction Jurisdiction  `json:"jurisdiction"`
	Status       Status        `json:"status"`
	Version      int           `json:"version"`
	Tags         []string      `json:"tags"`
	ClinicID     id.ClinicID   `json:"clinic_id"`
	CreatedBy    id.UserID     `json:"created_by"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Signature    *Signature    `json:"signature,omitempty"`
}

// Draft carries the fields supplied when a document is first created.
type Draft struct {
	Title        string
	Content      string
	Category     Category
	Jurisdiction Jurisdiction
	Tags         []string
}

// NewDocument builds a version 1 draft.
func NewDocument(docID id.DocumentID, clinicID id.ClinicID, creator id.UserID, draft Draft, now time.Time) (*Document, error) {
	if clinicID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document clinic is required")
	}
	if creator.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "document creator is required")
	}
	title, err := normalizeTitle(draft.Title)
	if err != nil {
		return nil, err
	}
	if err := validateContent(draft.Content); err != nil {
		return nil, err
	}
	if !draft.Category.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid category")
	}
	if !draft.Jurisdiction.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid jurisdiction")
	}
	tags, err := NormalizeTags(draft.Tags)
	if err != nil {
		return nil, err
	}

	return &Document{
		ID:           docID,
		Title:        title,
		Content:      draft.Content,
		Category:     draft.Category,
		Jurisdiction: draft.Jurisdiction,
		Status:       StatusDraft,
		Version:      1,
		Tags:         tags,
		ClinicID:     clinicID,
		CreatedBy:    creator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Edit is a partial update. Nil fields are left unchanged. Version only
// moves when BumpVersion is set.
type Edit struct {
	Title        *string
	Content      *string
	Category     *Category
	Jurisdiction *Jurisdiction
	Tags         *[]string
	BumpVersion  bool
}

// IsEmpty reports whether the edit changes nothing.
func (e Edit) IsEmpty() bool {
	return e.Title == nil && e.Content == nil && e.Category == nil &&
		e.Jurisdiction == nil && e.Tags == nil && !e.BumpVersion
}

// CanEdit validates an edit against the document.
// Use with ApplyEdit in Execute callbacks.
func (d *Document) CanEdit(e Edit) error {
	if e.IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "no changes supplied")
	}
	if e.Title != nil {
		if _, err := normalizeTitle(*e.Title); err != nil {
			return err
		}
	}
	if e.Content != nil {
		if err := validateContent(*e.Content); err != nil {
			return err
		}
	}
	if e.Category != nil && !e.Category.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid category")
	}
	if e.Jurisdiction != nil && !e.Jurisdiction.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid jurisdiction")
	}
	if e.Tags != nil {
		if _, err := NormalizeTags(*e.Tags); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEdit writes a validated edit. The signature is left as is, so a
// later content change is detectable through Signature.Matches.
func (d *Document) ApplyEdit(e Edit, now time.Time) {
	if e.Title != nil {
		d.Title, _ = normalizeTitle(*e.Title)
	}
	if e.Content != nil {
		d.Content = *e.Content
	}
	if e.Category != nil {
		d.Category = *e.Category
	}
	if e.Jurisdiction != nil {
		d.Jurisdiction = *e.Jurisdiction
	}
	if e.Tags != nil {
		d.Tags, _ = NormalizeTags(*e.Tags)
	}
	if e.BumpVersion {
		d.Version++
	}
	d.UpdatedAt = now
}

func (d *Document) IsSigned() bool {
	return d.Signature != nil
}

// NormalizeTags trims, drops blanks and removes duplicates while keeping
// first-seen order.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		if utf8.RuneCountInString(t) > MaxTagLength {
			return nil, dErrors.New(dErrors.CodeValidation, "tags must be 50 characters or less")
		}
		out = append(out, t)
	}
	if len(out) > MaxTags {
		return nil, dErrors.New(dErrors.CodeValidation, "too many tags")
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

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return dErrors.New(dErrors.CodeValidation, "content is required")
	}
	if len(content) > MaxContentBytes {
		return dErrors.New(dErrors.CodeValidation, "content exceeds 20MB")
	}
	if !utf8.ValidString(content) {
		return dErrors.New(dErrors.CodeValidation, "content must be valid UTF-8 text")
	}
	return nil
}
