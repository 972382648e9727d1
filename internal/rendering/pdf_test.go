package rendering

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPDFRenderer_Options(t *testing.T) {
	t.Setenv("CHROME_PATH", "/opt/chrome/from-env")

	r := NewPDFRenderer(NewHTMLRenderer())
	assert.Equal(t, "/opt/chrome/from-env", r.execPath)
	assert.Equal(t, DefaultPDFTimeout, r.timeout)

	r = NewPDFRenderer(NewHTMLRenderer(), WithChromePath("/usr/bin/chromium"), WithPDFTimeout(5*time.Second))
	assert.Equal(t, "/usr/bin/chromium", r.execPath)
	assert.Equal(t, 5*time.Second, r.timeout)

	assert.Equal(t, "application/pdf", r.ContentType())
	assert.Equal(t, ".pdf", r.Extension())
}

func TestPDFRenderer_MissingBrowser(t *testing.T) {
	r := NewPDFRenderer(NewHTMLRenderer(),
		WithChromePath(filepath.Join(t.TempDir(), "no-such-chrome")),
		WithPDFTimeout(5*time.Second),
	)

	_, err := r.Render(context.Background(), sampleRecord(), "Ada")

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "failed to print PDF", renderErr.Message)
}
