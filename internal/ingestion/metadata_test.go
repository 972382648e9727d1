package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMetadata(t *testing.T) {
	before := time.Now().UTC()
	metadata := NewMetadata("café notes", "notes.md", FormatMarkdown)

	assert.Equal(t, "notes.md", metadata.Source)
	assert.Equal(t, FormatMarkdown, metadata.Format)
	assert.Equal(t, 10, metadata.Chars, "characters, not bytes")
	assert.Len(t, metadata.Hash, 64)
	assert.False(t, metadata.LoadedAt.Before(before))
}

func TestMetadata_Summary(t *testing.T) {
	m := NewMetadata("text", "cv.pdf", FormatPDF)
	m.Pages = 2

	assert.Equal(t, "cv.pdf (pdf, 4 chars, 2 pages, sha256 "+m.Hash[:12]+")", m.Summary())

	m.Pages = 0
	assert.NotContains(t, m.Summary(), "pages")
}

func TestComputeHash(t *testing.T) {
	assert.Equal(t, computeHash("same"), computeHash("same"))
	assert.NotEqual(t, computeHash("test content"), computeHash("different content"))
}
