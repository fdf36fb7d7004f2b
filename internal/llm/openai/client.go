package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kiranshivaraju/chainwatch/internal/config"
)

// Client invokes OpenAI chat completions.
type Client struct {
	api   *goopenai.Client
	model string
}

func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		api:   goopenai.NewClient(cfg.APIKey),
		model: cfg.Model,
	}
}

func (c *Client) Name() string { return "openai" }

func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
