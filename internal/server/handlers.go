package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/db"
	"github.com/jonathan/chat-resume/internal/extraction"
	"github.com/jonathan/chat-resume/internal/objectstore"
	"github.com/jonathan/chat-resume/internal/pipeline"
	"github.com/jonathan/chat-resume/internal/queue"
	"github.com/jonathan/chat-resume/internal/schemas"
	"github.com/jonathan/chat-resume/internal/types"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// CreateResumeRequest represents the request body for POST /resumes
type CreateResumeRequest struct {
	Title                 string          `json:"title"`
	Messages              []types.Message `json:"messages"`
	SystemContext         string          `json:"systemContext,omitempty"`
	Model                 string          `json:"model,omitempty"`
	OwnerID               string          `json:"ownerId,omitempty"`
	IncludeProjects       *bool           `json:"includeProjects,omitempty"`
	IncludeCertifications *bool           `json:"includeCertifications,omitempty"`
}

func (r CreateResumeRequest) validate() error {
	if r.Title == "" {
		return &ErrValidation{Field: "title", Message: "title is required"}
	}
	return nil
}

func (r CreateResumeRequest) generateRequest() pipeline.GenerateRequest {
	return pipeline.GenerateRequest{
		Title:         r.Title,
		Messages:      r.Messages,
		SystemContext: r.SystemContext,
		Model:         r.Model,
		OwnerID:       r.OwnerID,
		Sections: pipeline.Sections{
			IncludeProjects:       r.IncludeProjects,
			IncludeCertifications: r.IncludeCertifications,
		},
	}
}

// UpdateResumeRequest represents the request body for POST /resumes/{id}/update
type UpdateResumeRequest struct {
	Instruction string `json:"instruction"`
	Model       string `json:"model,omitempty"`
}

// JobResponse represents the response for POST /resumes/jobs
type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ResumeResponse represents a stored document with its validated record
type ResumeResponse struct {
	Document *db.Document        `json:"document"`
	Record   *types.ResumeRecord `json:"record"`
}

// ValidateResponse represents the response for POST /validate
type ValidateResponse struct {
	Valid      bool                `json:"valid"`
	Recovered  bool                `json:"recovered,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
	Violations types.Violations    `json:"violations,omitempty"`
	Record     *types.ResumeRecord `json:"record,omitempty"`
}

// ExportResponse represents the response for POST /resumes/{id}/exports/{format}
type ExportResponse struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Key    string `json:"key"`
	Size   int    `json:"size"`
}

// decodeJSON reads a JSON request body into v, writing a 400 on failure
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// outcomeStatus maps a generation outcome to a response status. The body is the
// outcome in every case, so clients always receive a renderable record.
func outcomeStatus(out pipeline.Outcome) int {
	switch {
	case out.Status == pipeline.StatusSuccess:
		return http.StatusCreated
	case out.ErrorKind == extraction.KindEmptyTranscript:
		return http.StatusBadRequest
	case out.ErrorKind == extraction.KindServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// handleCreateResume generates a résumé from a conversation
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	var req CreateResumeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		s.failure(w, err)
		return
	}

	out := s.generator.Generate(r.Context(), req.generateRequest())
	s.jsonResponse(w, outcomeStatus(out), out)
}

// handleCreateResumeStream generates a résumé and streams progress via SSE
func (s *Server) handleCreateResumeStream(w http.ResponseWriter, r *http.Request) {
	var req CreateResumeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		s.failure(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	gen := req.generateRequest()
	gen.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteProgress(event); err != nil {
			s.logger.Warn("error writing SSE event", zap.Error(err))
		}
	}

	out := s.generator.Generate(r.Context(), gen)
	if err := sse.Finish(out); err != nil {
		s.logger.Warn("error finishing SSE stream", zap.String("document_id", out.ID), zap.Error(err))
	}
}

// handleEnqueueResume hands a generation to the background workers
func (s *Server) handleEnqueueResume(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		s.failure(w, &ErrNotConfigured{Feature: "job queue"})
		return
	}

	var req CreateResumeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		s.failure(w, err)
		return
	}

	job := queue.Job{
		ID:                    uuid.NewString(),
		Title:                 req.Title,
		Messages:              req.Messages,
		SystemContext:         req.SystemContext,
		Model:                 req.Model,
		OwnerID:               req.OwnerID,
		IncludeProjects:       req.IncludeProjects,
		IncludeCertifications: req.IncludeCertifications,
	}
	if err := s.queue.Enqueue(r.Context(), job); err != nil {
		s.failure(w, fmt.Errorf("failed to enqueue job: %w", err))
		return
	}

	s.jsonResponse(w, http.StatusAccepted, JobResponse{ID: job.ID, Status: "queued"})
}

// handleListResumes lists stored résumés, newest first
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	store := s.generator.Store()
	if store == nil {
		s.failure(w, pipeline.ErrNoStore)
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.failure(w, &ErrValidation{Field: "limit", Message: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	docs, err := store.ListDocuments(r.Context(), r.URL.Query().Get("owner"), limit)
	if err != nil {
		s.failure(w, fmt.Errorf("failed to list documents: %w", err))
		return
	}
	if docs == nil {
		docs = []db.Document{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleGetResume returns a stored résumé with its validated record
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	doc, record, err := s.generator.LoadRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ResumeResponse{Document: doc, Record: record})
}

// handleUpdateResume applies an edit instruction to a stored résumé. A rejected edit
// leaves the stored document untouched and returns 422 with the kept content.
func (s *Server) handleUpdateResume(w http.ResponseWriter, r *http.Request) {
	var req UpdateResumeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Instruction == "" {
		s.failure(w, &ErrValidation{Field: "instruction", Message: "instruction is required"})
		return
	}

	out, err := s.generator.UpdateDocument(r.Context(), r.PathValue("id"), pipeline.UpdateRequest{
		Instruction: req.Instruction,
		Model:       req.Model,
	})
	if err != nil {
		s.failure(w, err)
		return
	}

	status := http.StatusOK
	if !out.Updated {
		status = http.StatusUnprocessableEntity
	}
	s.jsonResponse(w, status, out)
}

// handleRender returns a handler that downloads a stored résumé in format
func (s *Server) handleRender(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, contentType, ext, err := s.render(r, r.PathValue("id"), format)
		if err != nil {
			s.failure(w, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "resume"+ext))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			s.logger.Warn("error writing rendered document", zap.Error(err))
		}
	}
}

// handleExport renders a stored résumé and uploads it to object storage
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		s.failure(w, &ErrNotConfigured{Feature: "object storage"})
		return
	}

	id, format := r.PathValue("id"), r.PathValue("format")
	data, contentType, ext, err := s.render(r, id, format)
	if err != nil {
		s.failure(w, err)
		return
	}

	key, err := s.uploader.Put(r.Context(), objectstore.RenderedKey(id, ext), data, contentType)
	if err != nil {
		s.failure(w, fmt.Errorf("failed to upload %s: %w", format, err))
		return
	}

	s.logger.Info("resume exported", zap.String("document_id", id), zap.String("key", key))
	s.jsonResponse(w, http.StatusCreated, ExportResponse{ID: id, Format: format, Key: key, Size: len(data)})
}

// render loads the record behind id and renders it in format
func (s *Server) render(r *http.Request, id, format string) (data []byte, contentType, ext string, err error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, "", "", &ErrValidation{Field: "format", Message: fmt.Sprintf("unsupported format %q", format)}
	}

	doc, record, err := s.generator.LoadRecord(r.Context(), id)
	if err != nil {
		return nil, "", "", err
	}

	data, err = renderer.Render(r.Context(), *record, doc.Title)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to render %s: %w", format, err)
	}
	return data, renderer.ContentType(), renderer.Extension(), nil
}

// handleValidate checks a candidate record. With ?merge=true a failing candidate is
// retried once with missing sections filled from the empty baseline.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	merge, _ := strconv.ParseBool(r.URL.Query().Get("merge"))
	if !merge {
		result := schemas.Validate(body)
		s.jsonResponse(w, http.StatusOK, ValidateResponse{
			Valid:      result.Success,
			Errors:     result.Errors,
			Violations: result.Violations,
			Record:     result.Data,
		})
		return
	}

	var candidate types.Candidate
	if err := json.Unmarshal(body, &candidate); err != nil {
		var syntaxErr *json.SyntaxError
		message := "request body must be a JSON object"
		if errors.As(err, &syntaxErr) {
			message = "Invalid request body: " + err.Error()
		}
		s.errorResponse(w, http.StatusBadRequest, message)
		return
	}

	recovery := pipeline.ValidateWithRecovery(candidate)
	s.jsonResponse(w, http.StatusOK, ValidateResponse{
		Valid:      recovery.Success,
		Recovered:  recovery.Recovered,
		Errors:     recovery.Errors,
		Violations: recovery.Violations,
		Record:     recovery.Record,
	})
}

// handleSchema serves the JSON Schema that candidates are checked against
func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = io.WriteString(w, schemas.ResumeSchema())
}
