package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume generation jobs from RabbitMQ",
	Long: `Consumes generation jobs from the configured RabbitMQ queue and publishes a status
update for each job to the update exchange. Requires RABBITMQ_URL.`,
	RunE: runWorker,
}

var workerConcurrency int

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "workers", 0, "Concurrent jobs (default from config)")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for the worker")
	}
	if workerConcurrency > 0 {
		cfg.Workers = workerConcurrency
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	broker, err := queue.Dial(queueConfig(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = broker.Close() }()

	publisher, err := broker.Publisher()
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	handler := queue.NewHandler(a.generator, publisher, a.logger)
	worker := queue.NewWorker(broker, handler, a.logger)

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info("queue worker stopped", zap.String("queue", cfg.JobQueue))
	return nil
}
