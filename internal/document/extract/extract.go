// Package extract turns uploaded files into document text. Plain text and
// markdown pass through; PDF and DOCX files have their text pulled out.
package extract

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	dErrors "accredis/pkg/domain-errors"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	errNotUTF8 = errors.New("file is not valid UTF-8 text")
	errNoText  = errors.New("file contains no extractable text")
)

// Extractor returns the text content of a file.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// Registry picks an Extractor by file extension, falling back to the
// part's media type.
type Registry struct {
	byExtension map[string]Extractor
	byMediaType map[string]Extractor
}

// NewRegistry returns the registry for the supported upload formats.
func NewRegistry() *Registry {
	text, pdf, docx := Text{}, PDF{}, DOCX{}
	return &Registry{
		byExtension: map[string]Extractor{
			".md":       text,
			".markdown": text,
			".txt":      text,
			".pdf":      pdf,
			".docx":     docx,
		},
		byMediaType: map[string]Extractor{
			"text/plain":      text,
			"text/markdown":   text,
			"text/x-markdown": text,
			MediaTypePDF:      pdf,
			MediaTypeDOCX:     docx,
		},
	}
}

// For returns the extractor for an uploaded file.
func (r *Registry) For(filename, contentType string) (Extractor, bool) {
	if ex, ok := r.byExtension[strings.ToLower(filepath.Ext(filename))]; ok {
		return ex, true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}
	ex, ok := r.byMediaType[mediaType]
	return ex, ok
}

// Extract reads data with the matching extractor. Unsupported formats are
// validation errors; files that fail to parse are bad requests.
func (r *Registry) Extract(filename, contentType string, data []byte) (string, error) {
	ex, ok := r.For(filename, contentType)
	if !ok {
		return "", dErrors.New(dErrors.CodeValidation, "only text, markdown, PDF and DOCX files are supported")
	}
	text, err := ex.Extract(data)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to process file")
	}
	return text, nil
}

// Text accepts UTF-8 text as is.
type Text struct{}

func (Text) Extract(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errNotUTF8
	}
	return string(data), nil
}
