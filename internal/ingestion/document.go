package ingestion

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported document formats
const (
	FormatText     = "txt"
	FormatMarkdown = "md"
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
	FormatHTML     = "html"
)

// MaxContextBytes bounds the size of a background document read from disk
const MaxContextBytes = 10 << 20

// UnsupportedFormatError is returned for documents that cannot be read as text
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %q", e.Format)
}

// FormatFromPath detects the document format from the file extension
func FormatFromPath(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "", "text":
		return FormatText
	case "markdown":
		return FormatMarkdown
	case "htm":
		return FormatHTML
	default:
		return ext
	}
}

// FormatFromMIME maps a MIME type to a document format
func FormatFromMIME(mime string) string {
	mime, _, _ = strings.Cut(mime, ";")
	switch strings.TrimSpace(mime) {
	case "text/plain":
		return FormatText
	case "text/markdown":
		return FormatMarkdown
	case "text/html":
		return FormatHTML
	case "application/pdf":
		return FormatPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FormatDOCX
	default:
		return mime
	}
}

// LoadContext reads a background document from disk, extracts its text and cleans it
func LoadContext(path string) (string, *Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	if info.Size() > MaxContextBytes {
		return "", nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), MaxContextBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	format := FormatFromPath(path)
	text, pages, err := extract(format, data)
	if err != nil {
		return "", nil, err
	}

	cleaned := CleanText(text)
	metadata := NewMetadata(cleaned, path, format)
	metadata.Pages = pages
	return cleaned, metadata, nil
}

// ExtractText returns the raw text of a document held in memory
func ExtractText(format string, data []byte) (string, error) {
	text, _, err := extract(format, data)
	return text, err
}

func extract(format string, data []byte) (string, int, error) {
	switch format {
	case FormatText, FormatMarkdown:
		return string(data), 0, nil
	case FormatHTML:
		text, err := extractHTMLText(string(data))
		return text, 0, err
	case FormatPDF:
		return extractPDFText(data)
	case FormatDOCX:
		text, err := extractDocxText(data)
		return text, 0, err
	default:
		return "", 0, &UnsupportedFormatError{Format: format}
	}
}

func extractPDFText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read pdf: %w", err)
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		text.WriteString(content)
		text.WriteString("\n")
	}
	return text.String(), numPages, nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxTab          = regexp.MustCompile(`<w:tab/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer func() { _ = doc.Close() }()

	// GetContent returns the raw document.xml body
	content := doc.Editable().GetContent()
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return html.UnescapeString(content), nil
}
