// Package generator produces draft compliance document content from a
// free-text prompt.
package generator

import (
	"context"
	"strings"

	"accredis/internal/document/models"
	dErrors "accredis/pkg/domain-errors"
)

const maxPromptLength = 4000

// Request is what a generator needs to draft a document.
type Request struct {
	Prompt       string
	Category     models.Category
	Jurisdiction models.Jurisdiction
}

// Validate trims the prompt and checks the enumerations.
func (r *Request) Validate() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if r.Prompt == "" {
		return dErrors.New(dErrors.CodeValidation, "prompt is required")
	}
	if len(r.Prompt) > maxPromptLength {
		return dErrors.New(dErrors.CodeValidation, "prompt must be 4000 characters or less")
	}
	if !r.Category.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid category")
	}
	if !r.Jurisdiction.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid jurisdiction")
	}
	return nil
}

// Generator returns markdown content for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// JurisdictionLabel names a jurisdiction for prose.
func JurisdictionLabel(j models.Jurisdiction) string {
	if st, ok := j.State(); ok {
		return st.Name()
	}
	return "Australia (national)"
}

var categoryLabels = map[models.Category]string{
	models.CategoryPolicy:         "Policy",
	models.CategoryProcedure:      "Procedure",
	models.CategoryChecklist:      "Checklist",
	models.CategoryRiskAssessment: "Risk Assessment",
}

func categoryLabel(c models.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return "Document"
}
