package rendering

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"strings"
	"sync"

	"github.com/jonathan/chat-resume/internal/enhance"
	"github.com/jonathan/chat-resume/internal/types"
)

//go:embed templates/resume.html
var defaultHTMLTemplate string

// htmlData is passed to the HTML template. html/template escapes every field.
type htmlData struct {
	Title   string
	Contact []string
	Record  types.ResumeRecord
}

// HTMLRenderer renders a standalone HTML page with inline styles
type HTMLRenderer struct {
	once sync.Once
	tmpl *template.Template
	err  error
}

// NewHTMLRenderer creates an HTMLRenderer using the built-in template
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// ContentType implements Renderer
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Extension implements Renderer
func (r *HTMLRenderer) Extension() string { return ".html" }

// Render implements Renderer
func (r *HTMLRenderer) Render(_ context.Context, record types.ResumeRecord, title string) ([]byte, error) {
	r.once.Do(func() {
		r.tmpl, r.err = template.New("resume.html").Funcs(template.FuncMap{
			"join":        strings.Join,
			"stripBullet": StripBullet,
			"dateRange":   dateRange,
		}).Parse(defaultHTMLTemplate)
		if r.err != nil {
			r.err = &TemplateError{Message: "failed to parse HTML template", Cause: r.err}
		}
	})
	if r.err != nil {
		return nil, r.err
	}

	if title == "" {
		title = record.PersonalInfo.Name
	}
	info := record.PersonalInfo
	var contact []string
	for _, c := range []string{info.Email, info.Phone, info.Location, info.LinkedIn, info.Website} {
		if c != "" {
			contact = append(contact, c)
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, htmlData{Title: title, Contact: contact, Record: record}); err != nil {
		return nil, &TemplateError{Message: "failed to execute HTML template", Cause: err}
	}
	return buf.Bytes(), nil
}

func dateRange(start, end string) string {
	switch {
	case enhance.IsPresent(end):
		return start + " – Present"
	case end == "":
		return start
	default:
		return start + " – " + end
	}
}
