package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
	"unicode/utf8"
)

// Metadata describes an ingested background document
type Metadata struct {
	Source   string    `json:"source"` // file path or URL
	Format   string    `json:"format"`
	Chars    int       `json:"chars"`
	Pages    int       `json:"pages,omitempty"` // PDF only
	Hash     string    `json:"hash"`            // SHA-256 of the cleaned text
	LoadedAt time.Time `json:"loaded_at"`
}

// NewMetadata describes cleaned text loaded from source
func NewMetadata(cleaned, source, format string) *Metadata {
	return &Metadata{
		Source:   source,
		Format:   format,
		Chars:    utf8.RuneCountInString(cleaned),
		Hash:     computeHash(cleaned),
		LoadedAt: time.Now().UTC(),
	}
}

// Summary is a one-line description for logs and verbose output
func (m *Metadata) Summary() string {
	s := fmt.Sprintf("%s (%s, %d chars", m.Source, m.Format, m.Chars)
	if m.Pages > 0 {
		s += fmt.Sprintf(", %d pages", m.Pages)
	}
	return s + ", sha256 " + m.Hash[:12] + ")"
}

func computeHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
