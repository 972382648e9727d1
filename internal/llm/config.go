// Package llm provides centralized LLM configuration and client abstractions.
// Chat model identifiers selected by the user are mapped onto provider model names here.
package llm

// Chat model identifiers exposed to callers
const (
	// ModelChat is the default all-purpose chat model
	ModelChat = "chat-model"
	// ModelChatReasoning is the slower reasoning-capable chat model
	ModelChatReasoning = "chat-model-reasoning"
)

// ExtractionTemperature is used for every extraction and update call
const ExtractionTemperature = 0.1

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI (or OpenAI-compatible) provider
	ProviderOpenAI Provider = "openai"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways only)
	BaseURL string
	Models  map[string]string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[string]string{
			ModelChat:          "gemini-2.5-flash",
			ModelChatReasoning: "gemini-2.5-pro",
		},
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[string]string{
			ModelChat:          "gpt-4o-mini",
			ModelChatReasoning: "gpt-4o",
		},
	}
}

// ConfigForProvider returns the default configuration for a provider name.
// Unknown names fall back to Gemini.
func ConfigForProvider(name string) *Config {
	switch Provider(name) {
	case ProviderOpenAI:
		return DefaultOpenAIConfig()
	default:
		return DefaultGeminiConfig()
	}
}

// GetModel returns the provider model name for a chat model id
func (c *Config) GetModel(modelID string) string {
	if model, ok := c.Models[modelID]; ok {
		return model
	}
	// Unknown ids use the default chat model
	if model, ok := c.Models[ModelChat]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific provider model for a chat model id
func (c *Config) WithModel(modelID, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Models:   make(map[string]string, len(c.Models)+1),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[modelID] = model
	return newConfig
}
