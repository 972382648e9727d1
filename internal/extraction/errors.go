package extraction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/chat-resume/internal/conversation"
)

// Kind classifies an extraction-path failure
type Kind string

// Failure kinds reported by the extraction and update paths
const (
	KindNone               Kind = ""
	KindEmptyTranscript    Kind = "EmptyTranscript"
	KindNoStructuredOutput Kind = "NoStructuredOutput"
	KindMalformedOutput    Kind = "MalformedOutput"
	KindValidationFailed   Kind = "ValidationFailed"
	KindServiceError       Kind = "ServiceError"
)

// serviceFailureMessage replaces completion service details in user-facing text
const serviceFailureMessage = "the completion service could not be reached"

// ServiceError represents a failure of the completion call itself
type ServiceError struct {
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("completion service failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("completion service failed: %s", e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NoStructuredOutputError is returned when the response contains no {...} span
type NoStructuredOutputError struct {
	Raw string
}

func (e *NoStructuredOutputError) Error() string {
	return "no JSON object found in response"
}

// MalformedOutputError is returned when the {...} span is not valid JSON.
// Raw holds the full response text for diagnostics.
type MalformedOutputError struct {
	Raw   string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse extracted resume data: %v", e.Cause)
	}
	return "failed to parse extracted resume data"
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// ValidationFailedError carries the ordered "fieldPath: message" list of the first
// validation attempt
type ValidationFailedError struct {
	Errors []string
}

func (e *ValidationFailedError) Error() string {
	return "invalid resume data structure: " + strings.Join(e.Errors, ", ")
}

// KindOf maps an error onto the failure taxonomy
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		serviceErr    *ServiceError
		noOutputErr   *NoStructuredOutputError
		malformedErr  *MalformedOutputError
		validationErr *ValidationFailedError
	)
	switch {
	case errors.Is(err, conversation.ErrEmptyTranscript):
		return KindEmptyTranscript
	case errors.As(err, &noOutputErr):
		return KindNoStructuredOutput
	case errors.As(err, &malformedErr):
		return KindMalformedOutput
	case errors.As(err, &validationErr):
		return KindValidationFailed
	case errors.As(err, &serviceErr):
		return KindServiceError
	default:
		return KindServiceError
	}
}

// UserMessage returns the text shown to users for err. Service failures, including
// unclassified errors, never expose the underlying cause; it stays in logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindServiceError {
		return serviceFailureMessage
	}
	return err.Error()
}
