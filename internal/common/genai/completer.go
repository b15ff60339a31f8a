// Package genai wraps the text completion service used for symptom triage.
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrNotConfigured = errors.New("completion client not initialized")
	ErrEmptyResponse = errors.New("completion returned no choices")
)

// Completer is a text-in, text-out completion call.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options are the generation parameters sent with every request.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
	Timeout     time.Duration
	// HTTPClient replaces the SDK's default client when set.
	HTTPClient *http.Client
}

// OpenAICompleter calls an OpenAI-compatible chat completions endpoint.
type OpenAICompleter struct {
	client *openai.Client
	opts   Options
}

func NewOpenAICompleter(opts Options) *OpenAICompleter {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts,
	}
}

// Complete sends prompt as a single user message and returns the first choice.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", ErrNotConfigured
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
		TopP:        c.opts.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
