package extract_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accredis/internal/document/extract"
	"accredis/internal/document/extract/extracttest"
	dErrors "accredis/pkg/domain-errors"
)

func TestRegistry_For(t *testing.T) {
	r := extract.NewRegistry()
	cases := []struct {
		name        string
		filename    string
		contentType string
		want        extract.Extractor
	}{
		{"markdown by extension", "privacy.MD", "application/octet-stream", extract.Text{}},
		{"text by media type", "notes", "text/plain; charset=utf-8", extract.Text{}},
		{"pdf by extension", "policy.pdf", "", extract.PDF{}},
		{"pdf by media type", "policy", extract.MediaTypePDF, extract.PDF{}},
		{"docx by extension", "policy.docx", "application/octet-stream", extract.DOCX{}},
		{"docx by media type", "policy", extract.MediaTypeDOCX, extract.DOCX{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ex, ok := r.For(tc.filename, tc.contentType)
			require.True(t, ok)
			assert.Equal(t, tc.want, ex)
		})
	}

	_, ok := r.For("scan.png", "image/png")
	assert.False(t, ok)
	_, ok = r.For("policy.doc", "application/msword")
	assert.False(t, ok)
}

func TestRegistry_Extract(t *testing.T) {
	r := extract.NewRegistry()

	t.Run("text passes through", func(t *testing.T) {
		text, err := r.Extract("privacy.md", "text/markdown", []byte("# Privacy\nWe protect records."))
		require.NoError(t, err)
		assert.Equal(t, "# Privacy\nWe protect records.", text)
	})

	t.Run("pdf text layer", func(t *testing.T) {
		text, err := r.Extract("policy.pdf", extract.MediaTypePDF,
			extracttest.PDF("Hand Hygiene Policy", "Staff wash hands (always)."))
		require.NoError(t, err)
		assert.Contains(t, text, "Hand Hygiene Policy")
		assert.Contains(t, text, "Staff wash hands (always).")
	})

	t.Run("docx paragraphs become lines", func(t *testing.T) {
		text, err := r.Extract("policy.docx", extract.MediaTypeDOCX,
			extracttest.DOCX("Sharps Disposal Procedure", "Use the yellow bin & never recap."))
		require.NoError(t, err)
		assert.Equal(t, "Sharps Disposal Procedure\nUse the yellow bin & never recap.", text)
	})

	t.Run("unsupported format is a validation error", func(t *testing.T) {
		_, err := r.Extract("scan.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	corrupt := map[string]struct {
		filename string
		data     []byte
	}{
		"truncated pdf":     {"policy.pdf", []byte("%PDF-1.7\n1 0 obj\n<<")},
		"not a pdf":         {"policy.pdf", []byte("hello")},
		"docx is not a zip": {"policy.docx", []byte("PK\x03\x04 broken")},
		"docx without body": {"policy.docx", emptyZip(t)},
		"binary as text":    {"notes.txt", []byte{0xff, 0xfe, 0x00}},
		"docx with no text": {"policy.docx", extracttest.DOCX()},
	}
	for name, tc := range corrupt {
		t.Run(name, func(t *testing.T) {
			_, err := r.Extract(tc.filename, "", tc.data)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), "got %v", err)
		})
	}
}

func emptyZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("docProps/app.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<Properties/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
