package auditor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accredis/internal/document/generator"
	"accredis/internal/document/models"
)

func issueCodes(f models.Findings) []string {
	codes := make([]string, 0, len(f.Issues))
	for _, is := range f.Issues {
		codes = append(codes, is.Code)
	}
	return codes
}

func TestAudit_GeneratedTemplateIsFullyCovered(t *testing.T) {
	content, err := generator.NewTemplate().Generate(context.Background(), generator.Request{
		Prompt: "vaccine cold chain management", Category: models.CategoryPolicy, Jurisdiction: "VIC",
	})
	require.NoError(t, err)

	f := New().Audit(content, "VIC")

	assert.Equal(t, 100, f.Score)
	assert.Empty(t, f.Issues)
	assert.Equal(t, []string{"Review and update annually."}, f.Recommendations)
	for _, sec := range DefaultSections {
		assert.True(t, f.Coverage[sec.Key], sec.Key)
	}
}

func TestAudit_MissingSections(t *testing.T) {
	content := "# Sharps Disposal Procedure\n\n## Purpose\nKeep staff safe.\n\n## Review\nAnnually.\n"

	f := New().Audit(content, models.JurisdictionNational)

	assert.True(t, f.Coverage["purpose_scope"])
	assert.True(t, f.Coverage["review"])
	assert.False(t, f.Coverage["procedures"], "the title heading does not count as a section")
	assert.False(t, f.Coverage["policy_statement"])

	codes := issueCodes(f)
	assert.Contains(t, codes, "missing_policy_statement")
	assert.Contains(t, codes, "missing_procedures")
	assert.Contains(t, codes, "missing_racgp_reference")
	assert.Contains(t, codes, "content_too_short")
	assert.NotContains(t, codes, "missing_jurisdiction")

	// 2 of 6 sections, less medium (5) and low (2) penalties.
	assert.Equal(t, 33-5-2, f.Score)
	assert.Len(t, f.Recommendations, len(f.Issues))
}

func TestAudit_JurisdictionAndNumbering(t *testing.T) {
	body := strings.Repeat("Staff follow the RACGP Standards. ", 20)
	content := "## Procedures\n- wash hands\n- wear gloves\n\n" + body

	f := New().Audit(content, "TAS")

	codes := issueCodes(f)
	assert.Contains(t, codes, "unnumbered_procedures")
	assert.Contains(t, codes, "missing_jurisdiction")

	f = New().Audit(content+"\nApplies in Tasmania.", "TAS")
	assert.NotContains(t, issueCodes(f), "missing_jurisdiction")
}

func TestAudit_ScoreIsClamped(t *testing.T) {
	f := New().Audit("", "NSW")
	assert.Equal(t, 0, f.Score)
	assert.Len(t, f.Coverage, len(DefaultSections))
}

func TestAudit_HeadingsInCodeBlocksAreNotSections(t *testing.T) {
	content := "# Hand Hygiene Policy\n\n" +
		"```markdown\n## Purpose and Scope\n## Policy Statement\n## Procedures\n1. wash\n```\n"

	f := New().Audit(content, models.JurisdictionNational)

	assert.False(t, f.Coverage["purpose_scope"])
	assert.False(t, f.Coverage["policy_statement"])
	assert.False(t, f.Coverage["procedures"])
	assert.Contains(t, issueCodes(f), "missing_procedures")
	assert.Equal(t, 0, f.Score)
}

func TestAudit_SetextHeadings(t *testing.T) {
	content := "Infection Control Policy\n========================\n\n" +
		"Policy Statement\n----------------\nStaff follow the RACGP Standards.\n\n" +
		"Procedures\n----------\n1. Wash hands.\n2. Wear gloves.\n"

	f := New().Audit(content, models.JurisdictionNational)

	assert.True(t, f.Coverage["policy_statement"])
	assert.True(t, f.Coverage["procedures"])
	assert.False(t, f.Coverage["purpose_scope"], "the title heading does not count as a section")
	assert.NotContains(t, issueCodes(f), "unnumbered_procedures")
	assert.NotContains(t, issueCodes(f), "missing_racgp_reference")
}
