package types

import "fmt"

// Violation is a single schema failure at a dotted JSON field path
// (e.g. "experience.0.title").
type Violation struct {
	FieldPath string `json:"fieldPath"`
	Message   string `json:"message"`
}

// String renders the violation as "fieldPath: message"
func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.FieldPath, v.Message)
}

// Violations is an ordered collection of schema failures
type Violations []Violation

// Strings renders every violation in order
func (vs Violations) Strings() []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.String())
	}
	return out
}

// HasPath reports whether a violation was already recorded for path
func (vs Violations) HasPath(path string) bool {
	for _, v := range vs {
		if v.FieldPath == path {
			return true
		}
	}
	return false
}
