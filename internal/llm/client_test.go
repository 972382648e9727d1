package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	for _, cfg := range []*Config{DefaultGeminiConfig(), DefaultOpenAIConfig(), nil} {
		client, err := NewClient(context.Background(), cfg, "")
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Nil(t, client)
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "cohere"}, "key")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported provider "cohere"`)
}

func TestNewClient_OpenAI(t *testing.T) {
	cfg := DefaultOpenAIConfig()
	cfg.BaseURL = "http://localhost:1/v1/"

	client, err := NewClient(context.Background(), cfg, "test-key")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	_, ok := client.(*OpenAIClient)
	assert.True(t, ok, "openai provider should build an OpenAIClient")
}

func TestOpenAIClient_NoModelConfigured(t *testing.T) {
	client, err := NewOpenAIClient(&Config{Provider: ProviderOpenAI, Models: map[string]string{}}, "key")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "prompt", ModelChat, ExtractionTemperature)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no model configured")
}

func textCandidate(parts ...genai.Part) *genai.Candidate {
	return &genai.Candidate{Content: &genai.Content{Parts: parts}, FinishReason: genai.FinishReasonStop}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr string
	}{
		{name: "nil", resp: nil, wantErr: ErrEmptyResponse.Error()},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: ErrEmptyResponse.Error()},
		{
			name: "joins text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				textCandidate(genai.Text(`{"summary": `), genai.Blob{MIMEType: "image/png"}, genai.Text(`"x"}`)),
			}},
			want: `{"summary": "x"}`,
		},
		{
			name:    "no text parts",
			resp:    &genai.GenerateContentResponse{Candidates: []*genai.Candidate{textCandidate()}},
			wantErr: ErrEmptyResponse.Error(),
		},
		{
			name: "blocked prompt",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
			},
			wantErr: "prompt blocked",
		},
		{
			name: "safety stop",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{FinishReason: genai.FinishReasonSafety},
			}},
			wantErr: "response stopped",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := responseText(tt.resp)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
