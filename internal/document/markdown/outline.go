// Package markdown reads the structure of document content: headings,
// paragraphs and lists. Code blocks, block quotes and raw HTML are never
// read as structure.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var parser = goldmark.New().Parser()

// Heading is an ATX (#) or setext (=== / ---) heading with its inline
// markup removed.
type Heading struct {
	Level int
	Text  string
}

// Outline is the block structure of a markdown document.
type Outline struct {
	Headings []Heading
	// FirstParagraph is the plain text of the first paragraph outside any
	// code block, list or quote.
	FirstParagraph string
	HasOrderedList bool
}

// Parse builds the outline of content.
func Parse(content string) Outline {
	src := []byte(content)
	doc := parser.Parse(text.NewReader(src))

	var out Outline
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.Blockquote:
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			out.Headings = append(out.Headings, Heading{Level: n.Level, Text: plainText(n, src)})
			return ast.WalkSkipChildren, nil
		case *ast.List:
			if n.IsOrdered() {
				out.HasOrderedList = true
			}
		case *ast.Paragraph:
			if out.FirstParagraph == "" && n.Parent() == doc {
				out.FirstParagraph = plainText(n, src)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

// plainText joins the text of n's inline children, dropping emphasis and
// link markup and folding whitespace.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.AutoLink:
			b.Write(c.Label(src))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
