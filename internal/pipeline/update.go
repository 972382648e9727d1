package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/db"
	"github.com/jonathan/chat-resume/internal/enhance"
	"github.com/jonathan/chat-resume/internal/extraction"
	"github.com/jonathan/chat-resume/internal/schemas"
	"github.com/jonathan/chat-resume/internal/types"
)

// ErrDocumentNotFound is returned when an update targets an unknown document
var ErrDocumentNotFound = errors.New("document not found")

// ErrNoStore is returned by document operations on a Generator without a store
var ErrNoStore = errors.New("no document store configured")

// UpdateRequest holds the input for one edit of an existing record
type UpdateRequest struct {
	Content     string
	Instruction string
	Model       string
	OnProgress  ProgressCallback
}

// UpdateOutcome is the result of an update. Content is the original content, byte for
// byte, unless Updated is true.
type UpdateOutcome struct {
	Updated   bool                `json:"updated"`
	Content   string              `json:"content"`
	Record    *types.ResumeRecord `json:"record,omitempty"`
	Message   string              `json:"message"`
	Errors    []string            `json:"errors,omitempty"`
	ErrorKind extraction.Kind     `json:"errorKind,omitempty"`
}

// Update applies a free-form edit instruction to a serialized record. The edited
// candidate must validate as is; there is no defaults recovery on this path.
func (g *Generator) Update(ctx context.Context, req UpdateRequest) UpdateOutcome {
	keep := func(kind extraction.Kind, errs []string, cause error) UpdateOutcome {
		g.metrics.ObserveOutcome("update", string(StatusFailed), string(kind))
		g.logger.Warn("resume update failed; keeping current content",
			zap.String("kind", string(kind)), zap.Strings("errors", errs), zap.Error(cause))
		return UpdateOutcome{
			Content:   req.Content,
			Message:   fmt.Sprintf("Failed to update resume: %s. The previous version was kept.", errs[0]),
			Errors:    errs,
			ErrorKind: kind,
		}
	}

	result := g.extractor.Update(ctx, extraction.UpdateRequest{
		Current:     req.Content,
		Instruction: req.Instruction,
		Model:       req.Model,
	})
	if !result.Success {
		return keep(result.Kind, []string{result.Error}, result.Err)
	}

	validation := schemas.Validate(result.Data)
	if !validation.Success {
		return keep(extraction.KindValidationFailed, validation.Errors, nil)
	}

	record := enhance.Enhance(*validation.Data)
	content, err := Serialize(record)
	if err != nil {
		return keep(extraction.KindMalformedOutput, []string{err.Error()}, err)
	}

	req.OnProgress.emit(StepUpdate, "", MessageUpdated, nil)
	g.metrics.ObserveOutcome("update", string(StatusSuccess), "")
	return UpdateOutcome{Updated: true, Content: content, Record: &record, Message: MessageUpdated}
}

// UpdateDocument loads a stored document, applies the instruction, and saves the
// result when it changed. Store failures are returned; update failures are reported
// in the outcome and leave the stored document untouched.
func (g *Generator) UpdateDocument(ctx context.Context, id string, req UpdateRequest) (UpdateOutcome, error) {
	if g.store == nil {
		return UpdateOutcome{}, ErrNoStore
	}

	doc, err := g.store.GetDocument(ctx, id)
	if err != nil {
		return UpdateOutcome{}, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return UpdateOutcome{}, ErrDocumentNotFound
	}

	req.Content = doc.Content
	out := g.Update(ctx, req)
	if !out.Updated {
		return out, nil
	}

	doc.Content = out.Content
	if err := g.store.SaveDocument(ctx, *doc); err != nil {
		return out, fmt.Errorf("failed to save document: %w", err)
	}
	return out, nil
}

// LoadRecord reads a stored document back through validation with defaults recovery
func (g *Generator) LoadRecord(ctx context.Context, id string) (*db.Document, *types.ResumeRecord, error) {
	if g.store == nil {
		return nil, nil, ErrNoStore
	}

	doc, err := g.store.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		return nil, nil, ErrDocumentNotFound
	}

	var candidate types.Candidate
	if err := json.Unmarshal([]byte(doc.Content), &candidate); err != nil {
		return doc, nil, &extraction.MalformedOutputError{Raw: doc.Content, Cause: err}
	}

	recovery := ValidateWithRecovery(candidate)
	if !recovery.Success {
		return doc, nil, &extraction.ValidationFailedError{Errors: recovery.Errors}
	}
	return doc, recovery.Record, nil
}
