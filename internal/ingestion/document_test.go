package ingestion

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"notes.txt":       FormatText,
		"notes":           FormatText,
		"README.Markdown": FormatMarkdown,
		"bio.md":          FormatMarkdown,
		"cv.PDF":          FormatPDF,
		"cv.docx":         FormatDOCX,
		"page.htm":        FormatHTML,
		"sheet.xlsx":      "xlsx",
	}
	for path, want := range tests {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestFormatFromMIME(t *testing.T) {
	assert.Equal(t, FormatHTML, FormatFromMIME("text/html; charset=utf-8"))
	assert.Equal(t, FormatPDF, FormatFromMIME("application/pdf"))
	assert.Equal(t, FormatDOCX, FormatFromMIME("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.Equal(t, "image/png", FormatFromMIME("image/png"))
}

func TestLoadContext_TextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "background.md")
	require.NoError(t, os.WriteFile(path, []byte("# Ada\n\n\n\n- Built   engines  \r\n"), 0o644))

	text, metadata, err := LoadContext(path)
	require.NoError(t, err)

	assert.Equal(t, "# Ada\n\n- Built   engines", text)
	assert.Equal(t, FormatMarkdown, metadata.Format)
	assert.Equal(t, path, metadata.Source)
	assert.Equal(t, computeHash(text), metadata.Hash)
}

func TestLoadContext_Errors(t *testing.T) {
	dir := t.TempDir()
	unsupported := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(unsupported, []byte{0x89, 'P', 'N', 'G'}, 0o644))
	brokenPDF := filepath.Join(dir, "cv.pdf")
	require.NoError(t, os.WriteFile(brokenPDF, []byte("not a pdf"), 0o644))
	brokenDocx := filepath.Join(dir, "cv.docx")
	require.NoError(t, os.WriteFile(brokenDocx, []byte("not a zip"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantMsg string
	}{
		{"missing", filepath.Join(dir, "missing.txt"), "file not found"},
		{"unsupported", unsupported, "unsupported document format"},
		{"broken pdf", brokenPDF, "failed to read pdf"},
		{"broken docx", brokenDocx, "failed to parse docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, metadata, err := LoadContext(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, text)
			assert.Nil(t, metadata)
		})
	}
}

func TestLoadContext_UnsupportedFormatError(t *testing.T) {
	_, err := ExtractText("xlsx", []byte("data"))

	var formatErr *UnsupportedFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "xlsx", formatErr.Format)
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml":            `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
	}
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtractText_Docx(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p><w:p><w:r><w:t>R&amp;D lead</w:t></w:r></w:p>`)

	text, err := ExtractText(FormatDOCX, data)
	require.NoError(t, err)

	assert.Contains(t, text, "Ada Lovelace\n")
	assert.Contains(t, text, "R&D lead")
	assert.NotContains(t, text, "<w:")
}
