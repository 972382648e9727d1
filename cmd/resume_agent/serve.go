package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/config"
	"github.com/jonathan/chat-resume/internal/objectstore"
	"github.com/jonathan/chat-resume/internal/queue"
	"github.com/jonathan/chat-resume/internal/rendering"
	"github.com/jonathan/chat-resume/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that generates resumes from conversations, stores them,
and renders them for download. Exports to object storage are enabled when an S3
bucket is configured; background jobs are enabled when RABBITMQ_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		a.logger.Warn("no database configured; generated resumes are not stored")
	}

	srvCfg := server.Config{
		Port:      cfg.Port,
		Generator: a.generator,
		Logger:    a.logger,
		Metrics:   a.metrics,
		Renderers: renderers(cfg),
	}

	if cfg.S3.Enabled() {
		store, err := objectstore.New(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to create object store: %w", err)
		}
		srvCfg.Uploader = store
		a.logger.Info("exports enabled", zap.String("bucket", store.Bucket()))
	}

	if cfg.RabbitMQURL != "" {
		broker, err := queue.Dial(queueConfig(cfg))
		if err != nil {
			return fmt.Errorf("failed to connect to queue: %w", err)
		}
		defer broker.Close()
		srvCfg.Queue = broker
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// renderers builds the renderers with the configured template and browser
func renderers(cfg config.Config) map[string]rendering.Renderer {
	html := rendering.NewHTMLRenderer()
	pdfOpts := []rendering.PDFOption{}
	if cfg.ChromePath != "" {
		pdfOpts = append(pdfOpts, rendering.WithChromePath(cfg.ChromePath))
	}
	return map[string]rendering.Renderer{
		rendering.FormatTeX:  rendering.NewLaTeXRenderer(cfg.Template),
		rendering.FormatHTML: html,
		rendering.FormatPDF:  rendering.NewPDFRenderer(html, pdfOpts...),
	}
}

// queueConfig maps the configuration onto the broker settings
func queueConfig(cfg config.Config) queue.Config {
	return queue.Config{
		URL:            cfg.RabbitMQURL,
		Queue:          cfg.JobQueue,
		UpdateExchange: cfg.UpdateExchange,
		Workers:        cfg.Workers,
	}.WithDefaults()
}
