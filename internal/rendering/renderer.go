// Package rendering turns validated records into downloadable documents: LaTeX source,
// standalone HTML, and PDF printed from the HTML by a headless browser.
package rendering

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/chat-resume/internal/types"
)

// Renderer produces one document format from a record. Renderers never modify the record.
type Renderer interface {
	Render(ctx context.Context, record types.ResumeRecord, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// Supported formats
const (
	FormatTeX  = "tex"
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// New returns the renderer for format
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case FormatTeX, "latex":
		return NewLaTeXRenderer(""), nil
	case FormatHTML:
		return NewHTMLRenderer(), nil
	case FormatPDF:
		return NewPDFRenderer(NewHTMLRenderer()), nil
	default:
		return nil, &RenderError{Message: fmt.Sprintf("unsupported format %q", format)}
	}
}

// TemplateError represents an error parsing or executing a template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
