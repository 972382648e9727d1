// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// ExtractJSONObject returns the substring from the first '{' to the last '}' of text.
// The match is greedy so nested objects and trailing prose after an inner brace are
// kept together; ok is false when no such span exists.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(text, "}")
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}
