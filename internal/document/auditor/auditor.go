// Package auditor scores document content against the section structure
// expected of a clinic compliance document.
package auditor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"accredis/internal/document/markdown"
	"accredis/internal/document/models"
)

// Section is one expected part of a compliance document, found by matching
// a markdown heading.
type Section struct {
	Key            string
	Heading        *regexp.Regexp
	Severity       models.IssueSeverity
	Recommendation string
}

var DefaultSections = []Section{
	{
		Key:            "purpose_scope",
		Heading:        regexp.MustCompile(`(?i)\b(purpose|scope)\b`),
		Severity:       models.SeverityMedium,
		Recommendation: "Add a Purpose and Scope section stating who the document applies to.",
	},
	{
		Key:            "policy_statement",
		Heading:        regexp.MustCompile(`(?i)\bpolicy statement\b`),
		Severity:       models.SeverityHigh,
		Recommendation: "Add a Policy Statement describing the practice's commitment.",
	},
	{
		Key:            "procedures",
		Heading:        regexp.MustCompile(`(?i)\b(procedures?|steps)\b`),
		Severity:       models.SeverityHigh,
		Recommendation: "Add numbered procedures staff can follow.",
	},
	{
		Key:            "responsibilities",
		Heading:        regexp.MustCompile(`(?i)\b(responsibilities|roles)\b`),
		Severity:       models.SeverityMedium,
		Recommendation: "Assign responsibilities to named roles.",
	},
	{
		Key:            "references",
		Heading:        regexp.MustCompile(`(?i)\b(references|standards)\b`),
		Severity:       models.SeverityLow,
		Recommendation: "Reference the RACGP Standards for General Practices and relevant legislation.",
	},
	{
		Key:            "review",
		Heading:        regexp.MustCompile(`(?i)\breview\b`),
		Severity:       models.SeverityMedium,
		Recommendation: "State how often the document is reviewed and by whom.",
	},
}

const minContentRunes = 400

var racgpReference = regexp.MustCompile(`(?i)\bRACGP\b`)

var severityPenalty = map[models.IssueSeverity]int{
	models.SeverityHigh:   10,
	models.SeverityMedium: 5,
	models.SeverityLow:    2,
}

// Auditor runs the section coverage rules.
type Auditor struct {
	sections []Section
}

func New(sections ...Section) *Auditor {
	if len(sections) == 0 {
		sections = DefaultSections
	}
	return &Auditor{sections: sections}
}

// Audit checks which sections are present and a few content rules. The
// score is the share of covered sections less a penalty per other issue,
// clamped to 0..100.
func (a *Auditor) Audit(content string, jurisdiction models.Jurisdiction) models.Findings {
	outline := markdown.Parse(content)
	headings := sectionHeadings(outline)
	coverage := make(map[string]bool, len(a.sections))
	var (
		issues  []models.Issue
		recs    []string
		covered int
	)

	for _, sec := range a.sections {
		found := false
		for _, h := range headings {
			if sec.Heading.MatchString(h) {
				found = true
				break
			}
		}
		coverage[sec.Key] = found
		if found {
			covered++
			continue
		}
		issues = append(issues, models.Issue{
			Code:     "missing_" + sec.Key,
			Severity: sec.Severity,
			Message:  "No " + strings.ReplaceAll(sec.Key, "_", " ") + " section found.",
		})
		recs = append(recs, sec.Recommendation)
	}

	var extra []models.Issue
	if coverage["procedures"] && !outline.HasOrderedList {
		extra = append(extra, models.Issue{
			Code:     "unnumbered_procedures",
			Severity: models.SeverityLow,
			Message:  "Procedures are not written as numbered steps.",
		})
		recs = append(recs, "Write procedures as numbered steps.")
	}
	if !racgpReference.MatchString(content) {
		extra = append(extra, models.Issue{
			Code:     "missing_racgp_reference",
			Severity: models.SeverityMedium,
			Message:  "The RACGP Standards are not referenced.",
		})
		recs = append(recs, "Cite the RACGP Standards for General Practices, 5th edition.")
	}
	if state, ok := jurisdiction.State(); ok && !strings.Contains(content, string(state)) && !strings.Contains(content, state.Name()) {
		extra = append(extra, models.Issue{
			Code:     "missing_jurisdiction",
			Severity: models.SeverityMedium,
			Message:  "The document does not mention its jurisdiction " + state.String() + ".",
		})
		recs = append(recs, "Reference the "+state.String()+" requirements that apply.")
	}
	if utf8.RuneCountInString(content) < minContentRunes {
		extra = append(extra, models.Issue{
			Code:     "content_too_short",
			Severity: models.SeverityLow,
			Message:  "The document is too short to be a complete compliance document.",
		})
		recs = append(recs, "Expand the document with practice-specific detail.")
	}

	score := 100
	if len(a.sections) > 0 {
		score = covered * 100 / len(a.sections)
	}
	for _, is := range extra {
		score -= severityPenalty[is.Severity]
	}
	score = max(0, min(100, score))

	if len(recs) == 0 {
		recs = append(recs, "Review and update annually.")
	}
	return models.Findings{
		Score:           score,
		Issues:          append(issues, extra...),
		Recommendations: recs,
		Coverage:        coverage,
	}
}

// sectionHeadings lists heading texts, skipping a leading level one
// heading which is the document title.
func sectionHeadings(outline markdown.Outline) []string {
	out := make([]string, 0, len(outline.Headings))
	for i, h := range outline.Headings {
		if i == 0 && h.Level == 1 {
			continue
		}
		out = append(out, h.Text)
	}
	return out
}
