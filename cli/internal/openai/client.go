// Package openai wraps the OpenAI chat-completion API for commit message
// generation. Credentials are never read here; the caller resolves the key
// (config, environment, or OS keychain) and passes it in.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// _defaultTemperature keeps responses close to deterministic; commit
	// messages should not vary much between runs on the same diff.
	_defaultTemperature = 0.2
	// _maxResponseTokens caps the completion size. A commit message is
	// short; anything past this is the model rambling.
	_maxResponseTokens = 500
)

// ErrNoChoices indicates the API returned an empty choices list.
var ErrNoChoices = errors.New("openai returned no choices")

// Client calls the OpenAI chat-completion API. Zero value is not valid; use NewClient.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a client for the given model. baseURL overrides the API
// endpoint when non-empty (used for tests and OpenAI-compatible gateways).
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Generate sends system and user prompts as one chat completion and returns
// the first choice's text, trimmed.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: _defaultTemperature,
		MaxTokens:   _maxResponseTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
