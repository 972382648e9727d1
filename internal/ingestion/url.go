package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultFetchTimeout is the default HTTP request timeout
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests
const DefaultUserAgent = "Mozilla/5.0 (compatible; ChatResume/1.0)"

// FetchError represents an error during URL fetching
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// contentSelectors are tried in order; the body is used when none match
var contentSelectors = []string{"main", "article", ".content", "#content", ".main-content", "#main-content"}

// LoadURL fetches a web page (a portfolio or profile page) and returns its cleaned main text
func LoadURL(ctx context.Context, client *http.Client, urlStr string) (string, *Metadata, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", nil, &FetchError{URL: urlStr, Message: "invalid URL", Cause: err}
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", nil, &FetchError{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", nil, &FetchError{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, &FetchError{URL: urlStr, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxContextBytes))
	if err != nil {
		return "", nil, &FetchError{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	format := FormatFromMIME(resp.Header.Get("Content-Type"))
	if format == "" {
		format = FormatHTML
	}
	text, err := ExtractText(format, body)
	if err != nil {
		return "", nil, &FetchError{URL: urlStr, Message: "content extraction failed", Cause: err}
	}

	cleaned := CleanText(text)
	return cleaned, NewMetadata(cleaned, urlStr, format), nil
}

// extractHTMLText parses HTML and returns the main body text with page chrome removed
func extractHTMLText(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .sidebar, .cookie-banner, .popup").Remove()

	main := doc.Find("body")
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			main = selection.First()
			break
		}
	}

	// Block elements end lines so CleanText sees the page structure
	main.Find("p, li, h1, h2, h3, h4, h5, h6, div, br").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return main.Text(), nil
}
