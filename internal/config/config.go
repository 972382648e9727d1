// Package config provides configuration loading and validation for the CLI and
// the long-running services.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/chat-resume/internal/llm"
	"github.com/jonathan/chat-resume/internal/objectstore"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values come from the environment, CLI flags,
// or Defaults.
type Config struct {
	// Completion provider
	Provider string            `json:"provider,omitempty" yaml:"provider,omitempty"` // gemini or openai
	APIKey   string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL  string            `json:"base_url,omitempty" yaml:"base_url,omitempty"` // OpenAI-compatible gateway
	Models   map[string]string `json:"models,omitempty" yaml:"models,omitempty"`     // chat model id -> provider model

	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`

	// HTTP server
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Background jobs
	RabbitMQURL    string `json:"rabbitmq_url,omitempty" yaml:"rabbitmq_url,omitempty"`
	JobQueue       string `json:"job_queue,omitempty" yaml:"job_queue,omitempty"`
	UpdateExchange string `json:"update_exchange,omitempty" yaml:"update_exchange,omitempty"`
	Workers        int    `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Rendering
	Template   string             `json:"template,omitempty" yaml:"template,omitempty"` // Path to LaTeX template
	ChromePath string             `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	S3         objectstore.Config `json:"s3,omitempty" yaml:"s3,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the values used when nothing else sets a field
func Defaults() Config {
	return Config{
		Provider:       string(llm.ProviderGemini),
		Port:           8080,
		JobQueue:       "resume_jobs",
		UpdateExchange: "resume_updates",
		Workers:        3,
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// FromEnv reads the configuration from environment variables. The API key is read
// from the variable of the provider named by provider, or LLM_PROVIDER when empty.
func FromEnv(provider string) Config {
	if provider == "" {
		provider = os.Getenv("LLM_PROVIDER")
	}

	cfg := Config{
		Provider:       provider,
		BaseURL:        os.Getenv("OPENAI_BASE_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		Port:           getEnvInt("PORT"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		JobQueue:       os.Getenv("RESUME_JOB_QUEUE"),
		UpdateExchange: os.Getenv("RESUME_UPDATE_EXCHANGE"),
		Workers:        getEnvInt("RESUME_WORKERS"),
		Template:       os.Getenv("RESUME_TEMPLATE"),
		ChromePath:     os.Getenv("CHROME_PATH"),
		S3: objectstore.Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Prefix:    os.Getenv("S3_PREFIX"),
		},
	}
	cfg.S3.UsePathStyle, _ = strconv.ParseBool(os.Getenv("S3_USE_PATH_STYLE"))

	if llm.Provider(provider) == llm.ProviderOpenAI {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	} else {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return cfg
}

// Resolve layers c over the environment over Defaults
func (c *Config) Resolve() Config {
	provider := c.Provider
	if provider == "" {
		provider = os.Getenv("LLM_PROVIDER")
	}
	env := FromEnv(provider)
	merged := c.MergeWithDefaults(env)
	return merged.MergeWithDefaults(Defaults())
}

func getEnvInt(key string) int {
	n, _ := strconv.Atoi(os.Getenv(key))
	return n
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on the command.
func (c *Config) Validate() error {
	if c.Provider != "" && c.Provider != string(llm.ProviderGemini) && c.Provider != string(llm.ProviderOpenAI) {
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}

	// Validate mutually exclusive fields
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("config error: 'database_url' and 'sqlite_path' are mutually exclusive")
	}

	// Validate numeric ranges
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}

	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("config error: 's3.access_key' and 's3.secret_key' must be set together")
	}

	// Validate file paths exist (if specified)
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer CLI flags over the config file over the environment.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	fill(&result.Provider, defaults.Provider)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.BaseURL, defaults.BaseURL)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.SQLitePath, defaults.SQLitePath)
	fill(&result.RabbitMQURL, defaults.RabbitMQURL)
	fill(&result.JobQueue, defaults.JobQueue)
	fill(&result.UpdateExchange, defaults.UpdateExchange)
	fill(&result.Template, defaults.Template)
	fill(&result.ChromePath, defaults.ChromePath)
	fill(&result.S3.Bucket, defaults.S3.Bucket)
	fill(&result.S3.Region, defaults.S3.Region)
	fill(&result.S3.Endpoint, defaults.S3.Endpoint)
	fill(&result.S3.AccessKey, defaults.S3.AccessKey)
	fill(&result.S3.SecretKey, defaults.S3.SecretKey)
	fill(&result.S3.Prefix, defaults.S3.Prefix)

	// The storage backend chosen by c wins over the one in defaults
	if c.DatabaseURL != "" && c.SQLitePath == "" {
		result.SQLitePath = ""
	}
	if c.SQLitePath != "" && c.DatabaseURL == "" {
		result.DatabaseURL = ""
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Model overrides: entries in c win
	if len(defaults.Models) > 0 {
		models := make(map[string]string, len(defaults.Models)+len(c.Models))
		for k, v := range defaults.Models {
			models[k] = v
		}
		for k, v := range c.Models {
			models[k] = v
		}
		result.Models = models
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLMConfig returns the completion client configuration
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigForProvider(c.Provider)
	cfg.BaseURL = c.BaseURL
	for id, model := range c.Models {
		cfg = cfg.WithModel(id, model)
	}
	return cfg
}
