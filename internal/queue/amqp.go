package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Defaults for queue topology
const (
	DefaultJobQueue       = "resume_jobs"
	DefaultUpdateExchange = "resume_updates"
	DefaultWorkers        = 3
)

// RoutingKey is the topic routing key of a document's status updates
func RoutingKey(documentID string) string {
	return "resume." + documentID
}

// Config holds the broker address and topology names
type Config struct {
	URL            string `json:"url" yaml:"url"`
	Queue          string `json:"queue,omitempty" yaml:"queue,omitempty"`
	UpdateExchange string `json:"update_exchange,omitempty" yaml:"update_exchange,omitempty"`
	Workers        int    `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// WithDefaults fills unset names and worker count
func (c Config) WithDefaults() Config {
	if c.Queue == "" {
		c.Queue = DefaultJobQueue
	}
	if c.UpdateExchange == "" {
		c.UpdateExchange = DefaultUpdateExchange
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return c
}

// Broker owns one AMQP connection. Channels are not shared between goroutines.
type Broker struct {
	conn   *amqp.Connection
	config Config
}

// Dial connects to the broker and declares the job queue and update exchange
func Dial(cfg Config) (*Broker, error) {
	cfg = cfg.WithDefaults()
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	b := &Broker{conn: conn, config: cfg}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := b.declare(ch); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return b, nil
}

func (b *Broker) declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		b.config.Queue, // queue name
		true,           // durable (survives broker restarts)
		false,          // auto-delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	err = ch.ExchangeDeclare(
		b.config.UpdateExchange, // exchange name
		"topic",                 // kind
		true,                    // durable
		false,                   // auto-delete
		false,                   // internal
		false,                   // no-wait
		nil,                     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// Close closes the connection
func (b *Broker) Close() error {
	return b.conn.Close()
}

// Enqueue publishes a job to the job queue as a persistent message
func (b *Broker) Enqueue(_ context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	return ch.Publish(
		"",             // default exchange
		b.config.Queue, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Body:         body,
		},
	)
}

// Publisher returns a Publisher writing to the update exchange on its own channel
func (b *Broker) Publisher() (*ExchangePublisher, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &ExchangePublisher{ch: ch, exchange: b.config.UpdateExchange}, nil
}

// ExchangePublisher publishes status updates keyed by RoutingKey
type ExchangePublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// Publish implements Publisher
func (p *ExchangePublisher) Publish(_ context.Context, update StatusUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to encode status update: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Publish(
		p.exchange,
		RoutingKey(update.DocumentID),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close closes the publisher's channel
func (p *ExchangePublisher) Close() error {
	return p.ch.Close()
}

// Worker consumes jobs with a fixed pool of goroutines
type Worker struct {
	broker  *Broker
	handler *Handler
	logger  *zap.Logger
}

// NewWorker creates a Worker
func NewWorker(broker *Broker, handler *Handler, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{broker: broker, handler: handler, logger: logger}
}

// Run consumes until ctx is cancelled or the broker closes the delivery channel
func (w *Worker) Run(ctx context.Context) error {
	ch, err := w.broker.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	workers := w.broker.config.Workers
	if err := ch.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := ch.Consume(
		w.broker.config.Queue, // queue name
		"",                    // consumer tag
		false,                 // auto-ack
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to consume queue: %w", err)
	}

	deliveries := make(chan Message)
	go func() {
		defer close(deliveries)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				deliveries <- Message{Body: msg.Body, Redelivered: msg.Redelivered, Acknowledger: msg}
			}
		}
	}()

	w.logger.Info("queue worker started", zap.String("queue", w.broker.config.Queue), zap.Int("workers", workers))
	Consume(ctx, deliveries, workers, w.handler, w.logger)
	return ctx.Err()
}

// Acknowledger settles a delivery. amqp.Delivery implements it.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Message is one job delivery. Redelivered is set by the broker when the delivery
// was requeued before.
type Message struct {
	Body         []byte
	Redelivered  bool
	Acknowledger Acknowledger
}

// Consume runs handler over messages with n goroutines and blocks until messages is
// closed. Handled jobs are acked, retryable failures are requeued, and jobs the handler
// rejects are dropped.
func Consume(ctx context.Context, messages <-chan Message, n int, handler *Handler, logger *zap.Logger) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func(id int) {
			defer wg.Done()
			workerLogger := logger.With(zap.Int("worker", id+1))
			for msg := range messages {
				if err := handler.Handle(ctx, msg); err != nil {
					requeue := errors.Is(err, ErrRetryable)
					if requeue {
						workerLogger.Warn("requeueing job", zap.Error(err))
					} else {
						workerLogger.Error("dropping job", zap.Error(err))
					}
					if nackErr := msg.Acknowledger.Nack(false, requeue); nackErr != nil {
						workerLogger.Warn("failed to nack job", zap.Error(nackErr))
					}
					continue
				}
				if ackErr := msg.Acknowledger.Ack(false); ackErr != nil {
					workerLogger.Warn("failed to ack job", zap.Error(ackErr))
				}
			}
		}(i)
	}
	wg.Wait()
}
