// Package pipeline orchestrates résumé generation: transcript normalization, extraction,
// validation with defaults recovery, enhancement, and persistence.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/conversation"
	"github.com/jonathan/chat-resume/internal/db"
	"github.com/jonathan/chat-resume/internal/enhance"
	"github.com/jonathan/chat-resume/internal/extraction"
	"github.com/jonathan/chat-resume/internal/llm"
	"github.com/jonathan/chat-resume/internal/observability"
	"github.com/jonathan/chat-resume/internal/types"
)

// Status is the explicit result class of a pipeline run
type Status string

const (
	// StatusSuccess means a validated, enhanced record was produced
	StatusSuccess Status = "success"
	// StatusDegraded means validation failed even after defaults recovery; the
	// fallback record is substituted and the first validation errors are reported
	StatusDegraded Status = "degraded"
	// StatusFailed means no candidate could be obtained
	StatusFailed Status = "failed"
)

// Sections selects optional sections. Nil fields default to included.
type Sections struct {
	IncludeProjects       *bool `json:"includeProjects,omitempty"`
	IncludeCertifications *bool `json:"includeCertifications,omitempty"`
}

// Projects reports whether the projects section is kept
func (s Sections) Projects() bool {
	return s.IncludeProjects == nil || *s.IncludeProjects
}

// Certifications reports whether the certifications section is kept
func (s Sections) Certifications() bool {
	return s.IncludeCertifications == nil || *s.IncludeCertifications
}

// apply empties excluded sections
func (s Sections) apply(record *types.ResumeRecord) {
	if !s.Projects() {
		record.Projects = []types.Project{}
	}
	if !s.Certifications() {
		record.Certifications = []types.Certification{}
	}
}

// GenerateRequest holds the input for one generation. ID is optional; a new id is
// generated when it is empty.
type GenerateRequest struct {
	ID            string
	Title         string
	Messages      []types.Message
	SystemContext string
	Model         string
	OwnerID       string
	Sections      Sections
	OnProgress    ProgressCallback
}

// Outcome is the result of one generation. Record is always renderable: on degraded
// and failed outcomes it is the fallback record.
type Outcome struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Kind      string             `json:"kind"`
	Status    Status             `json:"status"`
	Record    types.ResumeRecord `json:"record"`
	Content   string             `json:"content"`
	Message   string             `json:"message"`
	Errors    []string           `json:"errors,omitempty"`
	ErrorKind extraction.Kind    `json:"errorKind,omitempty"`
	Recovered bool               `json:"recovered,omitempty"`
	Saved     bool               `json:"saved"`
}

// Generator runs the generation and update paths. It keeps no per-request state.
type Generator struct {
	extractor *extraction.Extractor
	store     db.Store
	logger    *zap.Logger
	metrics   *observability.Metrics
	newID     func() string
}

// Option configures a Generator
type Option func(*Generator)

// WithStore persists successful records to store
func WithStore(store db.Store) Option {
	return func(g *Generator) { g.store = store }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithMetrics records outcomes and completion latency
func WithMetrics(metrics *observability.Metrics) Option {
	return func(g *Generator) { g.metrics = metrics }
}

// WithIDGenerator overrides document id generation
func WithIDGenerator(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// NewGenerator creates a Generator that calls client for completions
func NewGenerator(client llm.Client, opts ...Option) *Generator {
	g := &Generator{
		logger: zap.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.extractor = extraction.NewExtractor(&timedClient{Client: client, metrics: g.metrics})
	return g
}

// Store returns the configured store, or nil
func (g *Generator) Store() db.Store {
	return g.store
}

// Generate turns a conversation into a validated, enhanced record
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) Outcome {
	id := req.ID
	if id == "" {
		id = g.newID()
	}
	out := Outcome{ID: id, Title: req.Title, Kind: types.DocumentKind}
	logger := g.logger.With(zap.String("document_id", out.ID))
	progress := req.OnProgress

	progress.emit(StepStarted, out.ID, req.Title, map[string]string{"id": out.ID, "title": req.Title, "kind": out.Kind})
	progress.emit(StepExtract, out.ID, MessageAnalyzing, nil)

	transcript, err := conversation.Normalize(req.Messages)
	if err != nil {
		return g.fail(out, err, progress, logger)
	}

	result := g.extractor.Extract(ctx, extraction.Request{
		Transcript:    transcript,
		SystemContext: req.SystemContext,
		Model:         req.Model,
	})
	if !result.Success {
		if result.Raw != "" {
			logger.Debug("unusable completion output", zap.String("raw", result.Raw))
		}
		return g.fail(out, result.Err, progress, logger)
	}

	recovery := ValidateWithRecovery(result.Data)
	if !recovery.Success {
		return g.degrade(out, recovery.Errors, progress, logger)
	}
	if recovery.Recovered {
		logger.Info("candidate accepted after merging defaults")
	}

	progress.emit(StepEnhance, out.ID, MessageEnhancing, nil)

	record := enhance.Enhance(*recovery.Record)
	req.Sections.apply(&record)

	content, err := Serialize(record)
	if err != nil {
		return g.fail(out, err, progress, logger)
	}

	out.Status = StatusSuccess
	out.Record = record
	out.Content = content
	out.Recovered = recovery.Recovered
	out.Message = GenerationSummary(req.Title, record, req.Sections)

	progress.emit(StepContent, out.ID, "", content)
	progress.emit(StepComplete, out.ID, MessageComplete, nil)

	out.Saved = g.save(ctx, db.Document{
		ID:      out.ID,
		Title:   req.Title,
		Content: content,
		Kind:    types.DocumentKind,
		OwnerID: req.OwnerID,
	}, logger)

	g.metrics.ObserveOutcome("generate", string(out.Status), "")
	logger.Info("resume generated",
		zap.Int("experience", len(record.Experience)),
		zap.Int("education", len(record.Education)),
		zap.Bool("recovered", out.Recovered),
		zap.Bool("saved", out.Saved),
	)
	return out
}

// save persists doc when a store is configured. Failures are logged and swallowed so
// that a storage outage never discards a generated record.
func (g *Generator) save(ctx context.Context, doc db.Document, logger *zap.Logger) bool {
	if g.store == nil {
		return false
	}
	if err := g.store.SaveDocument(ctx, doc); err != nil {
		logger.Warn("failed to save resume document", zap.Error(err))
		return false
	}
	return true
}

func (g *Generator) fail(out Outcome, err error, progress ProgressCallback, logger *zap.Logger) Outcome {
	reason := extraction.UserMessage(err)
	out.Status = StatusFailed
	out.ErrorKind = extraction.KindOf(err)
	out.Errors = []string{reason}
	return g.finishWithFallback(out, reason, err, progress, logger)
}

func (g *Generator) degrade(out Outcome, errs []string, progress ProgressCallback, logger *zap.Logger) Outcome {
	validationErr := &extraction.ValidationFailedError{Errors: errs}
	out.Status = StatusDegraded
	out.ErrorKind = extraction.KindValidationFailed
	out.Errors = errs
	return g.finishWithFallback(out, validationErr.Error(), nil, progress, logger)
}

// finishWithFallback substitutes the fallback record. cause is logged only.
func (g *Generator) finishWithFallback(out Outcome, reason string, cause error, progress ProgressCallback, logger *zap.Logger) Outcome {
	out.Record = types.FallbackRecord()
	out.Content, _ = Serialize(out.Record)
	out.Message = FailureMessage(reason)

	progress.emit(StepError, out.ID, fmt.Sprintf("Error generating resume: %s", reason), nil)

	g.metrics.ObserveOutcome("generate", string(out.Status), string(out.ErrorKind))
	logger.Warn("resume generation did not succeed",
		zap.String("status", string(out.Status)),
		zap.String("kind", string(out.ErrorKind)),
		zap.Strings("errors", out.Errors),
		zap.Error(cause),
	)
	return out
}

// Serialize renders a record in its persisted form
func Serialize(record types.ResumeRecord) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize resume: %w", err)
	}
	return string(data), nil
}

// timedClient reports completion latency to metrics
type timedClient struct {
	llm.Client
	metrics *observability.Metrics
}

func (c *timedClient) Complete(ctx context.Context, prompt, modelID string, temperature float64) (string, error) {
	start := time.Now()
	text, err := c.Client.Complete(ctx, prompt, modelID, temperature)
	c.metrics.ObserveCompletion(time.Since(start))
	return text, err
}
