// Package extraction builds extraction prompts, calls the completion service, and recovers
// raw resume candidates from free-form model output.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/chat-resume/internal/llm"
	"github.com/jonathan/chat-resume/internal/prompts"
	"github.com/jonathan/chat-resume/internal/types"
)

// Extractor runs single-shot extraction and update requests against a completion service.
// It holds no per-request state and is safe for concurrent use.
type Extractor struct {
	client llm.Client
}

// NewExtractor creates an Extractor backed by client
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Request is the input to Extract
type Request struct {
	Transcript    string
	SystemContext string
	Model         string
}

// Result is the typed outcome of an extraction or update call. Error is safe to show
// to users; Err is the typed error behind it and is never serialized.
type Result struct {
	Success bool            `json:"success"`
	Data    types.Candidate `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Kind    Kind            `json:"kind,omitempty"`
	Raw     string          `json:"-"`
	Err     error           `json:"-"`
}

func failure(err error, raw string) Result {
	return Result{
		Success: false,
		Error:   UserMessage(err),
		Kind:    KindOf(err),
		Raw:     raw,
		Err:     err,
	}
}

// Extract builds the extraction prompt for req, calls the completion service once,
// and recovers the raw candidate from its response.
func (e *Extractor) Extract(ctx context.Context, req Request) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(&ServiceError{Message: fmt.Sprintf("panic during extraction: %v", r)}, "")
		}
	}()

	prompt := BuildExtractionPrompt(req.SystemContext, req.Transcript)
	return e.complete(ctx, prompt, req.Model)
}

// complete performs the single completion call and the brace-scan recovery shared by
// extraction and update
func (e *Extractor) complete(ctx context.Context, prompt, model string) Result {
	if model == "" {
		model = llm.ModelChat
	}

	responseText, err := e.client.Complete(ctx, prompt, model, llm.ExtractionTemperature)
	if err != nil {
		return failure(&ServiceError{Message: "failed to generate content from LLM", Cause: err}, "")
	}

	candidate, err := ParseCandidate(responseText)
	if err != nil {
		return failure(err, responseText)
	}

	return Result{Success: true, Data: candidate, Raw: responseText}
}

// ParseCandidate recovers the first top-level object span from text and decodes it.
// The span is decoded as a generic object so that shape problems surface in validation.
func ParseCandidate(text string) (types.Candidate, error) {
	jsonText, ok := llm.ExtractJSONObject(text)
	if !ok {
		return nil, &NoStructuredOutputError{Raw: text}
	}

	var candidate types.Candidate
	if err := json.Unmarshal([]byte(jsonText), &candidate); err != nil {
		return nil, &MalformedOutputError{Raw: text, Cause: err}
	}
	return candidate, nil
}

// BuildExtractionPrompt assembles instructions, optional background context, and the
// transcript into one prompt
func BuildExtractionPrompt(systemContext, transcript string) string {
	var sb strings.Builder

	sb.WriteString(prompts.MustGet(prompts.KeyExtract))

	hasContext := strings.TrimSpace(systemContext) != ""
	if hasContext {
		sb.WriteString("\n\n")
		sb.WriteString(prompts.Format(prompts.MustGet(prompts.KeySystemContext), map[string]string{
			"SystemContext": systemContext,
		}))
	}

	sb.WriteString("\n\n")
	sb.WriteString(prompts.Format(prompts.MustGet(prompts.KeyConversation), map[string]string{
		"Transcript": transcript,
	}))

	if hasContext {
		sb.WriteString("\n\n")
		sb.WriteString(prompts.MustGet(prompts.KeyContextPrecedence))
	}

	sb.WriteString("\n\n")
	sb.WriteString(prompts.MustGet(prompts.KeyRespondJSONOnly))
	sb.WriteString("\n")

	return sb.String()
}
