package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/chat-resume/internal/prompts"
)

// UpdateRequest is the input to Update. Current is the persisted JSON of the record
// being edited.
type UpdateRequest struct {
	Current     string
	Instruction string
	Model       string
}

// Update asks the completion service to apply a free-form edit instruction to the
// current record and recovers the edited candidate. Callers keep the current record
// whenever the result is not successful.
func (e *Extractor) Update(ctx context.Context, req UpdateRequest) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(&ServiceError{Message: fmt.Sprintf("panic during update: %v", r)}, "")
		}
	}()

	prompt, err := BuildUpdatePrompt(req.Current, req.Instruction)
	if err != nil {
		return failure(err, "")
	}
	return e.complete(ctx, prompt, req.Model)
}

// BuildUpdatePrompt embeds the pretty-printed current record and the instruction
func BuildUpdatePrompt(current, instruction string) (string, error) {
	var currentData any
	if err := json.Unmarshal([]byte(current), &currentData); err != nil {
		return "", &MalformedOutputError{Raw: current, Cause: fmt.Errorf("invalid resume data format: %w", err)}
	}

	pretty, err := json.MarshalIndent(currentData, "", "  ")
	if err != nil {
		return "", &MalformedOutputError{Raw: current, Cause: err}
	}

	return prompts.Format(prompts.MustGet(prompts.KeyUpdate), map[string]string{
		"CurrentResume": string(pretty),
		"Instruction":   instruction,
	}), nil
}
