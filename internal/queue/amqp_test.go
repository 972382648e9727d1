package queue

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/llm/llmtest"
)

type fakeAck struct {
	mu       sync.Mutex
	acked    bool
	nacked   bool
	requeued bool
}

func (a *fakeAck) Ack(bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = true
	return nil
}

func (a *fakeAck) Nack(_, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = !requeue
	a.requeued = requeue
	return nil
}

func TestConsume_AcksHandledAndDropsMalformed(t *testing.T) {
	publisher := &recordingPublisher{}
	handler := newHandler(&llmtest.Client{Response: validCompletion}, publisher)

	good := &fakeAck{}
	bad := &fakeAck{}
	messages := make(chan Message, 2)
	messages <- Message{Body: jobBody(t, sampleJob()), Acknowledger: good}
	messages <- Message{Body: []byte("garbage"), Acknowledger: bad}
	close(messages)

	Consume(context.Background(), messages, 2, handler, zap.NewNop())

	assert.True(t, good.acked)
	assert.False(t, good.nacked)
	assert.True(t, bad.nacked)
	assert.False(t, bad.acked)
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{URL: "amqp://localhost"}.WithDefaults()

	assert.Equal(t, DefaultJobQueue, cfg.Queue)
	assert.Equal(t, DefaultUpdateExchange, cfg.UpdateExchange)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, "resume.doc-1", RoutingKey("doc-1"))
}

// TestBroker_Integration needs a running broker at RABBITMQ_URL
func TestBroker_Integration(t *testing.T) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL not set")
	}

	broker, err := Dial(Config{URL: url, Queue: "resume_jobs_test", Workers: 1})
	require.NoError(t, err)
	defer broker.Close()

	publisher, err := broker.Publisher()
	require.NoError(t, err)
	defer publisher.Close()

	require.NoError(t, broker.Enqueue(context.Background(), sampleJob()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	handler := newHandler(&llmtest.Client{Response: validCompletion}, publisher)
	err = NewWorker(broker, handler, zap.NewNop()).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConsume_RequeuesInterruptedJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &llmtest.Client{Handler: func(string, string) (string, error) {
		cancel()
		return "", ctx.Err()
	}}
	publisher := &recordingPublisher{}
	handler := newHandler(client, publisher)

	ack := &fakeAck{}
	messages := make(chan Message, 1)
	messages <- Message{Body: jobBody(t, sampleJob()), Acknowledger: ack}
	close(messages)

	Consume(ctx, messages, 1, handler, zap.NewNop())

	assert.False(t, ack.acked)
	assert.True(t, ack.requeued)
	assert.NotContains(t, publisher.statuses(), StatusFailed)
}

func TestConsume_ServiceErrorRetriedOnce(t *testing.T) {
	tests := []struct {
		name         string
		redelivered  bool
		wantAcked    bool
		wantRequeued bool
		wantStatus   string
	}{
		{"first delivery is requeued", false, false, true, StatusRetrying},
		{"redelivery is settled as failed", true, true, false, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &recordingPublisher{}
			handler := newHandler(&llmtest.Client{Err: errors.New("503 overloaded")}, publisher)

			ack := &fakeAck{}
			messages := make(chan Message, 1)
			messages <- Message{Body: jobBody(t, sampleJob()), Redelivered: tt.redelivered, Acknowledger: ack}
			close(messages)

			Consume(context.Background(), messages, 1, handler, zap.NewNop())

			assert.Equal(t, tt.wantAcked, ack.acked)
			assert.Equal(t, tt.wantRequeued, ack.requeued)
			assert.Equal(t, []string{StatusProcessing, tt.wantStatus}, publisher.statuses())
		})
	}
}
