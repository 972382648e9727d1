package rendering

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/chat-resume/internal/types"
)

// DefaultPDFTimeout bounds one browser print, including browser startup
const DefaultPDFTimeout = 60 * time.Second

// PDFRenderer prints the HTML rendering to PDF with headless Chrome
type PDFRenderer struct {
	html     *HTMLRenderer
	execPath string
	timeout  time.Duration
}

// PDFOption configures a PDFRenderer
type PDFOption func(*PDFRenderer)

// WithChromePath sets the browser executable. CHROME_PATH is used when unset.
func WithChromePath(path string) PDFOption {
	return func(r *PDFRenderer) { r.execPath = path }
}

// WithPDFTimeout overrides DefaultPDFTimeout
func WithPDFTimeout(d time.Duration) PDFOption {
	return func(r *PDFRenderer) { r.timeout = d }
}

// NewPDFRenderer creates a PDFRenderer printing pages produced by html
func NewPDFRenderer(html *HTMLRenderer, opts ...PDFOption) *PDFRenderer {
	r := &PDFRenderer{
		html:     html,
		execPath: os.Getenv("CHROME_PATH"),
		timeout:  DefaultPDFTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ContentType implements Renderer
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension implements Renderer
func (r *PDFRenderer) Extension() string { return ".pdf" }

// Render implements Renderer
func (r *PDFRenderer) Render(ctx context.Context, record types.ResumeRecord, title string) ([]byte, error) {
	html, err := r.html.Render(ctx, record, title)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, r.timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return nil, &RenderError{Message: "failed to create temp dir", Cause: err}
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return nil, &RenderError{Message: "failed to write HTML", Cause: err}
	}

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4: 8.27 x 11.69 inches
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "failed to print PDF", Cause: err}
	}
	return pdf, nil
}
