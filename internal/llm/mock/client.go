package mock

import (
	"context"

	"github.com/kiranshivaraju/chainwatch/internal/llm"
)

// Client satisfies llm.Client for testing.
type Client struct {
	Name_      string
	InvokeFunc func(ctx context.Context, prompt string) (string, error)

	// Prompts records every prompt passed to Invoke, for assertions.
	Prompts []string
}

func (c *Client) Name() string { return c.Name_ }

func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	c.Prompts = append(c.Prompts, prompt)
	if c.InvokeFunc != nil {
		return c.InvokeFunc(ctx, prompt)
	}
	return "", nil
}

// NewClient returns a mock that always replies with the given text.
func NewClient(response string) *Client {
	return &Client{
		Name_: "mock",
		InvokeFunc: func(_ context.Context, _ string) (string, error) {
			return response, nil
		},
	}
}

// NewFailingClient returns a mock that always returns the given error.
func NewFailingClient(err error) *Client {
	return &Client{
		Name_: "mock-failing",
		InvokeFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutClient returns a mock that blocks until context is cancelled.
func NewTimeoutClient() *Client {
	return &Client{
		Name_: "mock-timeout",
		InvokeFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", llm.ErrInferenceTimeout
		},
	}
}

// Compile-time check that Client implements llm.Client.
var _ llm.Client = (*Client)(nil)
