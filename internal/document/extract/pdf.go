package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the text layer of every page, pages joined by newlines.
// Scanned PDFs without a text layer yield errNoText.
type PDF struct{}

func (PDF) Extract(data []byte) (text string, err error) {
	// the parser panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}

	fonts := make(map[string]*pdf.Font)
	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		content, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("pdf page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(content))
	}

	text = strings.TrimSpace(strings.Join(pages, "\n"))
	if text == "" {
		return "", errNoText
	}
	return text, nil
}
