package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/chat-resume/internal/pipeline"
)

// Event names of a generation stream
const (
	EventProgress = "progress"
	EventError    = "error"
	EventComplete = "complete"
)

// errStreamingUnsupported is returned for writers that cannot flush
var errStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter writes a generation as Server-Sent Events: progress events while the
// pipeline runs, then an error event for unsuccessful outcomes, then complete.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sets the event-stream headers on w
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one event with a JSON payload
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteProgress sends a pipeline progress event
func (s *SSEWriter) WriteProgress(event pipeline.ProgressEvent) error {
	return s.WriteEvent(EventProgress, event)
}

// streamError is the payload of the error event
type streamError struct {
	Error  string   `json:"error"`
	Kind   string   `json:"kind,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// streamComplete is the payload of the complete event
type streamComplete struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Saved      bool   `json:"saved"`
}

// Finish ends the stream for out
func (s *SSEWriter) Finish(out pipeline.Outcome) error {
	if out.Status != pipeline.StatusSuccess {
		if err := s.WriteEvent(EventError, streamError{
			Error:  out.Message,
			Kind:   string(out.ErrorKind),
			Errors: out.Errors,
		}); err != nil {
			return err
		}
	}
	return s.WriteEvent(EventComplete, streamComplete{
		DocumentID: out.ID,
		Status:     string(out.Status),
		Saved:      out.Saved,
	})
}
