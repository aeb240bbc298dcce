package generator

import (
	"context"
	"strings"
	"text/template"
	"unicode/utf8"

	"accredis/internal/document/models"
	dErrors "accredis/pkg/domain-errors"
)

const maxSubjectRunes = 80

var documentTemplate = template.Must(template.New("document").Parse(`# {{.Subject}} {{.CategoryLabel}}

**Jurisdiction:** {{.JurisdictionLabel}}
**Status:** Draft for review

## Purpose and Scope

This {{.CategoryNoun}} describes how the practice manages {{.SubjectLower}}. It applies to all clinical and non-clinical team members, contractors and students working at the practice.

## Policy Statement

The practice is committed to managing {{.SubjectLower}} safely and consistently, in line with the RACGP Standards for General Practices (5th edition) and the requirements that apply in {{.JurisdictionLabel}}.

## Procedures

{{range .Steps}}{{.}}
{{end}}
## Responsibilities

- The practice owner approves this {{.CategoryNoun}} and provides resources for it.
- The practice manager maintains this {{.CategoryNoun}} and coordinates staff training.
- All team members follow this {{.CategoryNoun}} and report incidents or near misses.

## References

{{range .References}}- {{.}}
{{end}}
## Review

This {{.CategoryNoun}} is reviewed every 12 months, or sooner after an incident or regulatory change.

## Request

> {{.Prompt}}
`))

// Template fills a fixed document structure from the request. It needs no
// network access and is deterministic.
type Template struct{}

func NewTemplate() *Template {
	return &Template{}
}

type templateData struct {
	Subject           string
	SubjectLower      string
	CategoryLabel     string
	CategoryNoun      string
	JurisdictionLabel string
	Steps             []string
	References        []string
	Prompt            string
}

func (t *Template) Generate(_ context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	subject := subjectOf(req.Prompt)
	label := categoryLabel(req.Category)

	data := templateData{
		Subject:           subject,
		SubjectLower:      strings.ToLower(subject),
		CategoryLabel:     label,
		CategoryNoun:      strings.ToLower(label),
		JurisdictionLabel: JurisdictionLabel(req.Jurisdiction),
		Steps:             stepsFor(req.Category),
		References:        referencesFor(req.Jurisdiction),
		Prompt:            strings.Join(strings.Fields(req.Prompt), " "),
	}

	var b strings.Builder
	if err := documentTemplate.Execute(&b, data); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render document template")
	}
	return b.String(), nil
}

// subjectOf turns the first line of the prompt into a short title-cased
// subject.
func subjectOf(prompt string) string {
	line, _, _ := strings.Cut(prompt, "\n")
	line = strings.TrimRight(strings.TrimSpace(line), ".!?")
	words := strings.Fields(line)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	subject := strings.Join(words, " ")
	if utf8.RuneCountInString(subject) > maxSubjectRunes {
		subject = strings.TrimSpace(string([]rune(subject)[:maxSubjectRunes]))
	}
	return subject
}

var steps = map[models.Category][]string{
	models.CategoryPolicy: {
		"1. Identify the staff roles this policy applies to and record them in the induction checklist.",
		"2. Brief all team members on the policy at induction and at the next team meeting.",
		"3. Record any deviation from the policy in the incident register within 24 hours.",
		"4. Escalate repeated deviations to the practice manager for corrective action.",
	},
	models.CategoryProcedure: {
		"1. Confirm the required equipment and consumables are available before starting.",
		"2. Perform each step in order and document completion in the patient or practice record.",
		"3. Stop and escalate to the supervising clinician if any step cannot be completed safely.",
		"4. Record outcomes and any incidents in the incident register within 24 hours.",
	},
	models.CategoryChecklist: {
		"1. Complete each item at the scheduled frequency and initial the record.",
		"2. Mark any item that fails and note the corrective action taken.",
		"3. Hand failed items to the practice manager the same day.",
		"4. File the completed checklist for at least seven years.",
	},
	models.CategoryRiskAssessment: {
		"1. Describe the hazard and the people who could be harmed.",
		"2. Rate severity and likelihood from 1 to 5 and record the resulting score in the risk register.",
		"3. Agree controls for any risk scoring 10 or more and assign an owner.",
		"4. Reassess the risk after controls are in place and at each scheduled review.",
	},
}

func stepsFor(c models.Category) []string {
	return steps[c]
}

func referencesFor(j models.Jurisdiction) []string {
	refs := []string{
		"RACGP Standards for General Practices, 5th edition",
		"National Vaccine Storage Guidelines: Strive for 5",
		"Australian Commission on Safety and Quality in Health Care guidance",
	}
	if st, ok := j.State(); ok {
		refs = append(refs, st.Name()+" health legislation and Department of Health requirements")
	}
	return refs
}
