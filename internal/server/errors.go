package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/chat-resume/internal/extraction"
	"github.com/jonathan/chat-resume/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotConfigured indicates an optional backend the endpoint needs is disabled
type ErrNotConfigured struct {
	Feature string
}

func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		configErr     *ErrNotConfigured
		invalidErr    *extraction.ValidationFailedError
		malformedErr  *extraction.MalformedOutputError
	)

	switch {
	case errors.Is(err, pipeline.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoStore), errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &invalidErr), errors.As(err, &malformedErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
