package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/config"
	"github.com/jonathan/chat-resume/internal/db"
	"github.com/jonathan/chat-resume/internal/llm"
	"github.com/jonathan/chat-resume/internal/observability"
	"github.com/jonathan/chat-resume/internal/pipeline"
)

// newCompletionClient creates the completion client. Tests replace it.
var newCompletionClient = func(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q", cfg.Provider)
	}
	return llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
}

// loadConfig layers the config file over the environment over the defaults
func loadConfig() (config.Config, error) {
	var file config.Config
	if configFile != "" {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			return config.Config{}, err
		}
		file = *loaded
	}

	cfg := file.Resolve()
	if verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// app holds the shared dependencies of a command
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	store     db.Store
	client    llm.Client
	generator *pipeline.Generator
}

// newApp builds the generator and its dependencies. The store is nil when no
// database is configured.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, metrics: observability.NewMetrics()}

	a.store, err = db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}

	a.client, err = newCompletionClient(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger), pipeline.WithMetrics(a.metrics)}
	if a.store != nil {
		opts = append(opts, pipeline.WithStore(a.store))
	}
	a.generator = pipeline.NewGenerator(a.client, opts...)
	return a, nil
}

// Close releases the client and the store
func (a *app) Close() {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Sync()
}
