package models

import (
	"strings"
	"unicode/utf8"

	"accredis/internal/document/markdown"
)

const maxSentenceRune = 100

// ExtractTitle picks a title for generated content: the first markdown
// heading, else the first sentence of the first paragraph cut to 100
// characters. Headings inside code blocks do not count and inline markup
// is dropped.
func ExtractTitle(content string) string {
	outline := markdown.Parse(content)

	var title string
	if len(outline.Headings) > 0 {
		title = outline.Headings[0].Text
	} else {
		first, _, _ := strings.Cut(outline.FirstParagraph, ".")
		first = strings.TrimSpace(first)
		if utf8.RuneCountInString(first) > maxSentenceRune {
			first = string([]rune(first)[:maxSentenceRune]) + "..."
		}
		title = first
	}

	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return untitledDocument
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		title = string([]rune(title)[:MaxTitleLength])
	}
	return title
}
