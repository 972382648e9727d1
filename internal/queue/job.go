// Package queue runs résumé generation jobs delivered over AMQP and publishes their
// status to a topic exchange.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/extraction"
	"github.com/jonathan/chat-resume/internal/pipeline"
	"github.com/jonathan/chat-resume/internal/types"
)

// Job statuses published while a job runs
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusDegraded   = "degraded"
	StatusFailed     = "failed"
	StatusRetrying   = "retrying"
)

// MessageRetrying is published when a job goes back on the queue
const MessageRetrying = "Resume generation was interrupted and will be retried."

// Job is one generation request delivered over the queue
type Job struct {
	ID                    string          `json:"id"`
	Title                 string          `json:"title"`
	Messages              []types.Message `json:"messages"`
	SystemContext         string          `json:"systemContext,omitempty"`
	Model                 string          `json:"model,omitempty"`
	OwnerID               string          `json:"ownerId,omitempty"`
	IncludeProjects       *bool           `json:"includeProjects,omitempty"`
	IncludeCertifications *bool           `json:"includeCertifications,omitempty"`
}

// StatusUpdate is published for every status change of a job
type StatusUpdate struct {
	DocumentID string    `json:"document_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Errors     []string  `json:"errors,omitempty"`
	Saved      bool      `json:"saved,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher delivers status updates
type Publisher interface {
	Publish(ctx context.Context, update StatusUpdate) error
}

// Generator runs the generation path
type Generator interface {
	Generate(ctx context.Context, req pipeline.GenerateRequest) pipeline.Outcome
}

// ErrMalformedJob marks a delivery whose body is not a valid Job. It is never retried.
var ErrMalformedJob = errors.New("malformed job")

// ErrRetryable marks a job that should go back on the queue
var ErrRetryable = errors.New("retryable job failure")

// Handler turns one job body into a generation and its status updates
type Handler struct {
	generator Generator
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a Handler
func NewHandler(generator Generator, publisher Publisher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{generator: generator, publisher: publisher, logger: logger, now: time.Now}
}

// Handle decodes the delivery and runs the job. Degraded and failed generations are
// reported through status updates and are not errors. A job interrupted by ctx, or a
// first delivery that hit a completion service failure, returns ErrRetryable.
func (h *Handler) Handle(ctx context.Context, msg Message) error {
	var job Job
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if job.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedJob)
	}

	logger := h.logger.With(zap.String("document_id", job.ID))
	logger.Info("processing resume job")
	h.publish(ctx, logger, StatusUpdate{DocumentID: job.ID, Status: StatusProcessing, Message: pipeline.MessageAnalyzing})

	out := h.generator.Generate(ctx, pipeline.GenerateRequest{
		ID:            job.ID,
		Title:         job.Title,
		Messages:      job.Messages,
		SystemContext: job.SystemContext,
		Model:         job.Model,
		OwnerID:       job.OwnerID,
		Sections: pipeline.Sections{
			IncludeProjects:       job.IncludeProjects,
			IncludeCertifications: job.IncludeCertifications,
		},
	})

	interrupted := ctx.Err() != nil
	if interrupted || (out.ErrorKind == extraction.KindServiceError && !msg.Redelivered) {
		h.publish(context.WithoutCancel(ctx), logger, StatusUpdate{DocumentID: job.ID, Status: StatusRetrying, Message: MessageRetrying})
		return fmt.Errorf("%w: %s (interrupted=%t)", ErrRetryable, out.ErrorKind, interrupted)
	}

	update := StatusUpdate{DocumentID: job.ID, Message: out.Message, Errors: out.Errors, Saved: out.Saved}
	switch out.Status {
	case pipeline.StatusSuccess:
		update.Status = StatusCompleted
		update.Message = pipeline.MessageComplete
	case pipeline.StatusDegraded:
		update.Status = StatusDegraded
	default:
		update.Status = StatusFailed
	}
	h.publish(ctx, logger, update)
	return nil
}

// publish logs and drops publishing failures; the job outcome is already persisted
func (h *Handler) publish(ctx context.Context, logger *zap.Logger, update StatusUpdate) {
	if h.publisher == nil {
		return
	}
	update.Timestamp = h.now().UTC()
	if err := h.publisher.Publish(ctx, update); err != nil {
		logger.Warn("failed to publish status update", zap.String("status", update.Status), zap.Error(err))
	}
}
