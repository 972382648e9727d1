// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"sync"
)

// Call records one Complete invocation
type Call struct {
	Prompt      string
	Model       string
	Temperature float64
}

// Client returns Response (or Err) from every Complete call and records the calls.
// Handler, when set, takes precedence over Response and Err.
type Client struct {
	Response string
	Err      error
	Handler  func(prompt, model string) (string, error)

	mu     sync.Mutex
	calls  []Call
	closed bool
}

// Complete implements llm.Client
func (c *Client) Complete(_ context.Context, prompt, model string, temperature float64) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Prompt: prompt, Model: model, Temperature: temperature})
	c.mu.Unlock()

	if c.Handler != nil {
		return c.Handler(prompt, model)
	}
	return c.Response, c.Err
}

// Close implements llm.Client
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Calls returns a copy of the recorded calls
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallCount returns the number of Complete calls so far
func (c *Client) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Closed reports whether Close was called
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
