// Package llm wraps langchaingo chat models behind a minimal completion
// interface for the research agents.
//
// Credentials and model names are injected through configuration; this
// package never reads the process environment.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fyrsmithlabs/researchd/internal/config"
)

// ErrEmptyResponse indicates the model returned no choices.
var ErrEmptyResponse = errors.New("model returned empty response")

// Client issues chat completions against a langchaingo model with fixed
// model and temperature settings.
type Client struct {
	model       llms.Model
	modelName   string
	temperature float64
}

// NewClient wraps an existing model. Used directly by tests; production
// code goes through NewOpenAI or NewGoogleAI.
func NewClient(model llms.Model, modelName string, temperature float64) *Client {
	return &Client{model: model, modelName: modelName, temperature: temperature}
}

// NewOpenAI creates a client for an OpenAI-compatible chat backend.
func NewOpenAI(cfg config.OpenAIConfig) (*Client, error) {
	if cfg.APIKey.Value() == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey.Value()),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return NewClient(model, cfg.Model, cfg.Temperature), nil
}

// NewGoogleAI creates a client for a Google generative model.
func NewGoogleAI(ctx context.Context, cfg config.GoogleConfig) (*Client, error) {
	if cfg.APIKey.Value() == "" {
		return nil, fmt.Errorf("google api key is required")
	}

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey.Value()),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating googleai client: %w", err)
	}
	return NewClient(model, cfg.Model, 0.3), nil
}

// Complete sends a system and user message pair and returns the first
// choice's text content.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	resp, err := c.model.GenerateContent(ctx, messages,
		llms.WithModel(c.modelName),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
