package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for OpenAI and OpenAI-compatible gateways
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client. config.BaseURL, when set, points the
// client at a compatible gateway.
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts := []openaioption.RequestOption{openaioption.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: config,
	}, nil
}

// Complete sends a single user message and returns the first choice's content
func (c *OpenAIClient) Complete(ctx context.Context, prompt, modelID string, temperature float64) (string, error) {
	modelName := c.config.GetModel(modelID)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for %q", modelID)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(modelName),
		Temperature: openai.F(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the HTTP client holds no long-lived resources
func (c *OpenAIClient) Close() error {
	return nil
}
