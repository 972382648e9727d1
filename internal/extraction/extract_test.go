package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/chat-resume/internal/conversation"
	"github.com/jonathan/chat-resume/internal/llm"
	"github.com/jonathan/chat-resume/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const transcript = "USER: My name is Ada Lovelace, ada@example.com.\n\nASSISTANT: Great, tell me about your work."

func TestExtract_Success(t *testing.T) {
	client := &llmtest.Client{
		Response: "Here is the data:\n```json\n{\"personalInfo\": {\"name\": \"Ada Lovelace\", \"email\": \"ada@example.com\"}, \"summary\": \"Pioneer\"}\n```",
	}
	extractor := NewExtractor(client)

	result := extractor.Extract(context.Background(), Request{Transcript: transcript, Model: llm.ModelChatReasoning})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, KindNone, result.Kind)
	assert.Empty(t, result.Error)
	info, ok := result.Data["personalInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", info["name"])
	assert.Equal(t, "Pioneer", result.Data["summary"])

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.ModelChatReasoning, calls[0].Model)
	assert.InDelta(t, 0.1, calls[0].Temperature, 1e-9)
	assert.Contains(t, calls[0].Prompt, transcript)
}

func TestExtract_DefaultModel(t *testing.T) {
	client := &llmtest.Client{Response: `{}`}

	result := NewExtractor(client).Extract(context.Background(), Request{Transcript: transcript})

	require.True(t, result.Success)
	assert.Equal(t, llm.ModelChat, client.Calls()[0].Model)
}

func TestExtract_NoStructuredOutput(t *testing.T) {
	client := &llmtest.Client{Response: "Sorry, I could not find any resume details."}

	result := NewExtractor(client).Extract(context.Background(), Request{Transcript: transcript})

	assert.False(t, result.Success)
	assert.Equal(t, KindNoStructuredOutput, result.Kind)
	assert.Nil(t, result.Data)
	assert.Equal(t, client.Response, result.Raw)

	var target *NoStructuredOutputError
	assert.True(t, errors.As(result.Err, &target))
}

func TestExtract_MalformedOutput(t *testing.T) {
	raw := "Result: {\"personalInfo\": {\"name\": \"Ada\",}, summary: oops}"
	client := &llmtest.Client{Response: raw}

	result := NewExtractor(client).Extract(context.Background(), Request{Transcript: transcript})

	assert.False(t, result.Success)
	assert.Equal(t, KindMalformedOutput, result.Kind)
	assert.Equal(t, raw, result.Raw, "raw response must be retained for diagnostics")

	var target *MalformedOutputError
	require.True(t, errors.As(result.Err, &target))
	assert.Equal(t, raw, target.Raw)
	assert.Contains(t, result.Error, "failed to parse extracted resume data")
}

func TestExtract_ServiceError(t *testing.T) {
	client := &llmtest.Client{Err: errors.New("503 model overloaded")}

	result := NewExtractor(client).Extract(context.Background(), Request{Transcript: transcript})

	assert.False(t, result.Success)
	assert.Equal(t, KindServiceError, result.Kind)
	assert.Equal(t, "the completion service could not be reached", result.Error)
	assert.Contains(t, result.Err.Error(), "503 model overloaded", "cause kept for logging")
	assert.Equal(t, 1, client.CallCount(), "no internal retry")
}

func TestExtract_PanicIsContained(t *testing.T) {
	client := &llmtest.Client{Handler: func(string, string) (string, error) {
		panic("boom")
	}}

	var result Result
	assert.NotPanics(t, func() {
		result = NewExtractor(client).Extract(context.Background(), Request{Transcript: transcript})
	})
	assert.False(t, result.Success)
	assert.Equal(t, KindServiceError, result.Kind)
}

func TestBuildExtractionPrompt_WithContext(t *testing.T) {
	prompt := BuildExtractionPrompt("Ada lives in London.", transcript)

	contextIdx := strings.Index(prompt, "## System Context (Background Information):\nAda lives in London.")
	convIdx := strings.Index(prompt, "## Conversation History:\n"+transcript)
	precedenceIdx := strings.Index(prompt, "**Instructions**")
	jsonOnlyIdx := strings.LastIndex(prompt, "Respond with ONLY the JSON object")

	require.GreaterOrEqual(t, contextIdx, 0)
	require.GreaterOrEqual(t, convIdx, 0)
	require.GreaterOrEqual(t, precedenceIdx, 0)
	require.GreaterOrEqual(t, jsonOnlyIdx, 0)
	assert.Less(t, contextIdx, convIdx, "context precedes transcript")
	assert.Less(t, convIdx, precedenceIdx)
	assert.Less(t, precedenceIdx, jsonOnlyIdx, "json-only instruction comes last")
}

func TestBuildExtractionPrompt_PolicyVerbatim(t *testing.T) {
	prompt := BuildExtractionPrompt("", transcript)

	assert.Contains(t, prompt, "Conversation-stated facts override background-context facts whenever they conflict.")
	assert.Contains(t, prompt, "Background context supplies values absent from the conversation.")
	assert.Contains(t, prompt, "Fields absent from both sources are omitted rather than inferred.")
}

func TestBuildExtractionPrompt_WithoutContext(t *testing.T) {
	prompt := BuildExtractionPrompt("   ", transcript)

	assert.NotContains(t, prompt, "## System Context")
	assert.NotContains(t, prompt, "**Instructions**")
	assert.Contains(t, prompt, "## Conversation History:")
	assert.True(t, strings.HasPrefix(prompt, "You are a resume data extraction specialist."))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindEmptyTranscript, KindOf(conversation.ErrEmptyTranscript))
	assert.Equal(t, KindNoStructuredOutput, KindOf(&NoStructuredOutputError{}))
	assert.Equal(t, KindMalformedOutput, KindOf(&MalformedOutputError{}))
	assert.Equal(t, KindValidationFailed, KindOf(&ValidationFailedError{Errors: []string{"summary: Required"}}))
	assert.Equal(t, KindServiceError, KindOf(&ServiceError{Message: "x"}))
	assert.Equal(t, KindServiceError, KindOf(errors.New("unknown")))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"service error hides cause", &ServiceError{Message: "call failed", Cause: errors.New(`{"error":{"code":400}}`)}, "the completion service could not be reached"},
		{"unclassified error hides text", errors.New("dial tcp 10.0.0.1:443"), "the completion service could not be reached"},
		{"no structured output", &NoStructuredOutputError{Raw: "hello"}, "no JSON object found in response"},
		{"validation", &ValidationFailedError{Errors: []string{"summary: Required"}}, "invalid resume data structure: summary: Required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestValidationFailedError_Message(t *testing.T) {
	err := &ValidationFailedError{Errors: []string{"summary: Required", "personalInfo.email: Valid email is required"}}
	assert.Equal(t, "invalid resume data structure: summary: Required, personalInfo.email: Valid email is required", err.Error())
}
