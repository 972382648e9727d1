package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadURL_ExtractsMainContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>
<nav>Home | Blog</nav>
<main><h1>Ada Lovelace</h1><p>Wrote the first   program.</p><script>track()</script></main>
<footer>© 1843</footer>
</body></html>`))
	}))
	defer server.Close()

	text, metadata, err := LoadURL(context.Background(), server.Client(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "Wrote the first program.")
	assert.NotContains(t, text, "Home | Blog")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "1843")
	assert.Equal(t, FormatHTML, metadata.Format)
	assert.Equal(t, server.URL, metadata.Source)
}

func TestLoadURL_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Plain   bio"))
	}))
	defer server.Close()

	text, _, err := LoadURL(context.Background(), nil, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Plain bio", text)
}

func TestLoadURL_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{"invalid url", "not-a-url", "invalid URL"},
		{"http status", server.URL, "HTTP status 404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadURL(context.Background(), server.Client(), tt.url)
			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
