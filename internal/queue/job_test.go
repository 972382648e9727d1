package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/chat-resume/internal/llm/llmtest"
	"github.com/jonathan/chat-resume/internal/pipeline"
	"github.com/jonathan/chat-resume/internal/types"
)

const validCompletion = `{
  "personalInfo": {"name": "Ada Lovelace", "email": "ada@example.com"},
  "summary": "Engineer who builds analytical engines.",
  "experience": [{"title": "Lead", "company": "Engines Ltd", "startDate": "2019", "endDate": "Present", "description": ["Led the team"]}],
  "education": [],
  "skills": [{"category": "Math", "items": ["Analysis"]}]
}`

type recordingPublisher struct {
	mu      sync.Mutex
	updates []StatusUpdate
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, update StatusUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
	return p.err
}

func (p *recordingPublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.updates))
	for i, u := range p.updates {
		out[i] = u.Status
	}
	return out
}

func jobBody(t *testing.T, job Job) []byte {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return body
}

func sampleJob() Job {
	no := false
	return Job{
		ID:              "job-1",
		Title:           "Queued",
		Messages:        []types.Message{types.TextMessage(types.RoleUser, "I'm Ada, lead at Engines Ltd.")},
		IncludeProjects: &no,
	}
}

func newHandler(client *llmtest.Client, publisher Publisher) *Handler {
	h := NewHandler(pipeline.NewGenerator(client), publisher, zap.NewNop())
	h.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return h
}

func TestHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		client     *llmtest.Client
		wantStatus string
	}{
		{"completed", &llmtest.Client{Response: validCompletion}, StatusCompleted},
		{"degraded", &llmtest.Client{Response: `{"personalInfo": {"name": "Ada", "email": "ada@example.com"}}`}, StatusDegraded},
		{"failed on redelivery", &llmtest.Client{Err: errors.New("quota exceeded")}, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &recordingPublisher{}

			err := newHandler(tt.client, publisher).Handle(context.Background(), Message{Body: jobBody(t, sampleJob()), Redelivered: true})
			require.NoError(t, err)

			assert.Equal(t, []string{StatusProcessing, tt.wantStatus}, publisher.statuses())
			last := publisher.updates[1]
			assert.Equal(t, "job-1", last.DocumentID)
			assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), last.Timestamp)
			if tt.wantStatus == StatusCompleted {
				assert.Equal(t, pipeline.MessageComplete, last.Message)
				assert.Empty(t, last.Errors)
			} else {
				assert.NotEmpty(t, last.Errors)
				assert.Contains(t, last.Message, "Failed to generate resume")
			}
		})
	}
}

func TestHandler_PassesJobFields(t *testing.T) {
	client := &llmtest.Client{Response: validCompletion}
	job := sampleJob()
	job.Model = "chat-model-reasoning"
	job.SystemContext = "Ada lives in London."

	require.NoError(t, newHandler(client, nil).Handle(context.Background(), Message{Body: jobBody(t, job)}))

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "chat-model-reasoning", calls[0].Model)
	assert.Contains(t, calls[0].Prompt, "Ada lives in London.")
}

func TestHandler_MalformedJobs(t *testing.T) {
	tests := map[string][]byte{
		"not json":   []byte("{"),
		"missing id": []byte(`{"title": "x", "messages": []}`),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			client := &llmtest.Client{Response: validCompletion}
			publisher := &recordingPublisher{}

			err := newHandler(client, publisher).Handle(context.Background(), Message{Body: body})

			assert.ErrorIs(t, err, ErrMalformedJob)
			assert.Empty(t, publisher.statuses())
			assert.Equal(t, 0, client.CallCount())
		})
	}
}

func TestHandler_PublishFailureIsNotAnError(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("channel closed")}

	err := newHandler(&llmtest.Client{Response: validCompletion}, publisher).Handle(context.Background(), Message{Body: jobBody(t, sampleJob())})

	require.NoError(t, err)
	assert.Len(t, publisher.statuses(), 2)
}

func TestHandler_ServiceErrorOnFirstDeliveryIsRetryable(t *testing.T) {
	publisher := &recordingPublisher{}

	err := newHandler(&llmtest.Client{Err: errors.New("503 overloaded")}, publisher).Handle(context.Background(), Message{Body: jobBody(t, sampleJob())})

	assert.ErrorIs(t, err, ErrRetryable)
	assert.Equal(t, []string{StatusProcessing, StatusRetrying}, publisher.statuses())
}

func TestHandler_InterruptedJobIsRetryable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &llmtest.Client{Handler: func(string, string) (string, error) {
		cancel()
		return "", ctx.Err()
	}}
	publisher := &recordingPublisher{}

	err := newHandler(client, publisher).Handle(ctx, Message{Body: jobBody(t, sampleJob()), Redelivered: true})

	assert.ErrorIs(t, err, ErrRetryable)
	assert.Equal(t, []string{StatusProcessing, StatusRetrying}, publisher.statuses())
	assert.Equal(t, MessageRetrying, publisher.updates[1].Message)
}
