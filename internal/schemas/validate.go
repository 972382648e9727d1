// Package schemas validates resume candidates against the ResumeRecord shape and
// fills missing sections from an empty baseline.
package schemas

import (
	"cmp"
	_ "embed"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/chat-resume/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchemaJSON string

// ResumeSchema returns the embedded JSON Schema for ResumeRecord
func ResumeSchema() string {
	return resumeSchemaJSON
}

// ValidationResult is the outcome of validating a candidate. On success Data holds the
// decoded record; on failure Errors holds every violation rendered as "fieldPath: message".
type ValidationResult struct {
	Success    bool                `json:"success"`
	Data       *types.ResumeRecord `json:"data,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
	Violations types.Violations    `json:"violations,omitempty"`
}

// ResumeValidator checks candidates in two stages: structural (types and required keys)
// against the embedded JSON Schema, then content rules on the decoded record.
type ResumeValidator struct {
	schema   *gojsonschema.Schema
	validate *validator.Validate
}

// NewResumeValidator compiles the embedded schema and configures the content rules
func NewResumeValidator() (*ResumeValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(resumeSchemaJSON))
	if err != nil {
		return nil, &SchemaLoadError{Path: "resume.schema.json", Message: "failed to compile embedded schema", Cause: err}
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ResumeValidator{schema: schema, validate: v}, nil
}

var defaultValidator = sync.OnceValues(NewResumeValidator)

const rootContext = "(root)"

// Validate checks candidate with the default ResumeValidator. candidate may be a decoded
// JSON value (such as types.Candidate), a ResumeRecord, or raw JSON bytes.
func Validate(candidate any) ValidationResult {
	rv, err := defaultValidator()
	if err != nil {
		return failed(types.Violations{{Message: err.Error()}})
	}
	return rv.Validate(candidate)
}

// Validate collects every violation in candidate. It never mutates candidate.
func (rv *ResumeValidator) Validate(candidate any) ValidationResult {
	data, err := toJSON(candidate)
	if err != nil {
		return failed(types.Violations{{Message: fmt.Sprintf("Invalid JSON: %v", err)}})
	}

	violations, err := rv.structural(data)
	if err != nil {
		return failed(types.Violations{{Message: err.Error()}})
	}

	// A type mismatch leaves the affected field zero-valued and decoding continues,
	// so content rules still run everywhere else.
	var record types.ResumeRecord
	_ = json.Unmarshal(data, &record)

	violations = append(violations, rv.content(&record, violations)...)
	if len(violations) > 0 {
		return failed(violations)
	}

	return ValidationResult{Success: true, Data: &record}
}

func failed(violations types.Violations) ValidationResult {
	return ValidationResult{Success: false, Errors: violations.Strings(), Violations: violations}
}

func toJSON(candidate any) ([]byte, error) {
	switch c := candidate.(type) {
	case []byte:
		if !json.Valid(c) {
			return nil, fmt.Errorf("malformed document")
		}
		return c, nil
	case json.RawMessage:
		return toJSON([]byte(c))
	default:
		return json.Marshal(candidate)
	}
}

func (rv *ResumeValidator) structural(data []byte) (types.Violations, error) {
	result, err := rv.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed during load: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make(types.Violations, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		path := desc.Field()
		if path == rootContext {
			path = ""
		}

		switch desc.Type() {
		case "required":
			property, _ := desc.Details()["property"].(string)
			if path != property && !strings.HasSuffix(path, "."+property) {
				path = joinPath(path, property)
			}
			violations = append(violations, types.Violation{FieldPath: path, Message: "Required"})
		case "invalid_type":
			violations = append(violations, types.Violation{
				FieldPath: path,
				Message:   fmt.Sprintf("Expected %v, received %v", desc.Details()["expected"], desc.Details()["given"]),
			})
		default:
			violations = append(violations, types.Violation{FieldPath: path, Message: desc.Description()})
		}
	}

	// gojsonschema walks object properties in map order
	sort.SliceStable(violations, func(i, j int) bool {
		return comparePaths(violations[i].FieldPath, violations[j].FieldPath) < 0
	})
	return violations, nil
}

func (rv *ResumeValidator) content(record *types.ResumeRecord, reported types.Violations) types.Violations {
	err := rv.validate.Struct(record)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return types.Violations{{Message: err.Error()}}
	}

	var violations types.Violations
	for _, fe := range fieldErrs {
		path := namespaceToPath(fe.Namespace())
		if covered(reported, path) {
			continue
		}
		violations = append(violations, types.Violation{FieldPath: path, Message: contentMessage(path, fe.Tag())})
	}
	return violations
}

// namespaceToPath turns "ResumeRecord.experience[0].title" into "experience.0.title"
func namespaceToPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}

// comparePaths orders dotted field paths segment by segment, comparing array indexes
// numerically so that "experience.2" sorts before "experience.10"
func comparePaths(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		ai, aErr := strconv.Atoi(as[i])
		bi, bErr := strconv.Atoi(bs[i])
		if aErr == nil && bErr == nil {
			return cmp.Compare(ai, bi)
		}
		return strings.Compare(as[i], bs[i])
	}
	return cmp.Compare(len(as), len(bs))
}

// covered reports whether path, or one of its ancestors, already has a violation
func covered(reported types.Violations, path string) bool {
	for _, v := range reported {
		if v.FieldPath == "" || v.FieldPath == path || strings.HasPrefix(path, v.FieldPath+".") {
			return true
		}
	}
	return false
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

var contentMessages = map[string]string{
	"personalInfo.name":      "Name is required",
	"personalInfo.email":     "Valid email is required",
	"summary":                "Summary should be at least 10 characters",
	"experience.title":       "Job title is required",
	"experience.company":     "Company name is required",
	"experience.startDate":   "Start date is required",
	"experience.description": "At least one description point is required",
	"education.degree":       "Degree is required",
	"education.institution":  "Institution is required",
	"skills.category":        "Skill category is required",
	"skills.items":           "At least one skill is required",
	"projects.name":          "Project name is required",
	"projects.description":   "Project description is required",
	"certifications.name":    "Certification name is required",
	"certifications.issuer":  "Issuer is required",
}

// contentMessage looks up the user-facing message for a rule failure. Indices are
// dropped from path so every list element shares one message.
func contentMessage(path, tag string) string {
	if tag == "url" {
		return "Invalid url"
	}

	parts := strings.Split(path, ".")
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			continue
		}
		kept = append(kept, p)
	}
	if msg, ok := contentMessages[strings.Join(kept, ".")]; ok {
		return msg
	}

	switch tag {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "min":
		return "Too short"
	default:
		return fmt.Sprintf("failed %s rule", tag)
	}
}

// SchemaLoadError is returned when the embedded schema does not compile
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}
