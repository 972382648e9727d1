// Package prompts holds the extraction and update prompt templates. The templates live
// in resume.json and are embedded at compile time.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

//go:embed resume.json
var resumeJSON []byte

// Template keys in resume.json
const (
	KeyExtract           = "extract-resume-data"
	KeySystemContext     = "system-context-section"
	KeyConversation      = "conversation-section"
	KeyContextPrecedence = "context-precedence"
	KeyRespondJSONOnly   = "respond-json-only"
	KeyUpdate            = "update-resume-data"
)

var templates = sync.OnceValues(func() (map[string]string, error) {
	return parse(resumeJSON)
})

func parse(data []byte) (map[string]string, error) {
	var set map[string]string
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates: %w", err)
	}
	return set, nil
}

// Get returns the template stored under key
func Get(key string) (string, error) {
	set, err := templates()
	if err != nil {
		return "", err
	}

	tmpl, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt template %q not found", key)
	}
	return tmpl, nil
}

// MustGet returns the template stored under key and panics when it is missing.
// Every key constant in this package is present in the embedded file.
func MustGet(key string) string {
	tmpl, err := Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return tmpl
}

// Render fills the template stored under key with data
func Render(key string, data map[string]string) (string, error) {
	tmpl, err := Get(key)
	if err != nil {
		return "", err
	}
	return Format(tmpl, data), nil
}

// Format replaces {{.Key}} placeholders with values from data in a single pass, so
// placeholder-like text inside a value is left alone. Unknown placeholders remain.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Keys lists the template keys in sorted order
func Keys() ([]string, error) {
	set, err := templates()
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(set)), nil
}
