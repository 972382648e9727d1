package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/chat-resume/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentResume = `{"personalInfo":{"name":"Ada Lovelace","email":"ada@example.com"},"summary":"Mathematician and writer.","experience":[],"education":[],"skills":[]}`

func TestUpdate_Success(t *testing.T) {
	client := &llmtest.Client{
		Response: `{"personalInfo":{"name":"Ada King","email":"ada@example.com"},"summary":"Mathematician and writer.","experience":[],"education":[],"skills":[]}`,
	}

	result := NewExtractor(client).Update(context.Background(), UpdateRequest{
		Current:     currentResume,
		Instruction: "Change my name to Ada King",
	})

	require.True(t, result.Success, result.Error)
	info := result.Data["personalInfo"].(map[string]any)
	assert.Equal(t, "Ada King", info["name"])

	prompt := client.Calls()[0].Prompt
	assert.Contains(t, prompt, "Change my name to Ada King")
	assert.Contains(t, prompt, "\"name\": \"Ada Lovelace\"", "current record is pretty-printed into the prompt")
}

func TestUpdate_Failures(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		client   *llmtest.Client
		wantKind Kind
		wantCall bool
	}{
		{
			name:     "service error",
			current:  currentResume,
			client:   &llmtest.Client{Err: errors.New("timeout")},
			wantKind: KindServiceError,
			wantCall: true,
		},
		{
			name:     "no JSON in response",
			current:  currentResume,
			client:   &llmtest.Client{Response: "I made the change."},
			wantKind: KindNoStructuredOutput,
			wantCall: true,
		},
		{
			name:     "malformed JSON in response",
			current:  currentResume,
			client:   &llmtest.Client{Response: "{name: Ada}"},
			wantKind: KindMalformedOutput,
			wantCall: true,
		},
		{
			name:     "current content is not JSON",
			current:  "not json",
			client:   &llmtest.Client{Response: currentResume},
			wantKind: KindMalformedOutput,
			wantCall: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewExtractor(tt.client).Update(context.Background(), UpdateRequest{
				Current:     tt.current,
				Instruction: "make it better",
			})

			assert.False(t, result.Success)
			assert.Equal(t, tt.wantKind, result.Kind)
			assert.Nil(t, result.Data)
			assert.Equal(t, tt.wantCall, tt.client.CallCount() == 1)
		})
	}
}

func TestBuildUpdatePrompt(t *testing.T) {
	prompt, err := BuildUpdatePrompt(`{"summary":"x"}`, "shorten the summary")
	require.NoError(t, err)

	assert.Contains(t, prompt, "Current Resume Data:\n{\n  \"summary\": \"x\"\n}")
	assert.Contains(t, prompt, "User's Update Request:\nshorten the summary")
	assert.NotContains(t, prompt, "{{.")
}
