package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/chat-resume/internal/extraction"
	"github.com/jonathan/chat-resume/internal/pipeline"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", pipeline.ErrDocumentNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", pipeline.ErrDocumentNotFound), http.StatusNotFound},
		{"no store", pipeline.ErrNoStore, http.StatusServiceUnavailable},
		{"not configured", &ErrNotConfigured{Feature: "job queue"}, http.StatusServiceUnavailable},
		{"request validation", &ErrValidation{Field: "title", Message: "required"}, http.StatusBadRequest},
		{"stored record invalid", &extraction.ValidationFailedError{Errors: []string{"summary: Required"}}, http.StatusUnprocessableEntity},
		{"stored record malformed", &extraction.MalformedOutputError{Raw: "{"}, http.StatusUnprocessableEntity},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation error: title - title is required", (&ErrValidation{Field: "title", Message: "title is required"}).Error())
	assert.Equal(t, "object storage is not configured", (&ErrNotConfigured{Feature: "object storage"}).Error())
}
