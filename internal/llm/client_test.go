package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/fyrsmithlabs/researchd/internal/config"
)

// fakeModel satisfies llms.Model with canned content.
type fakeModel struct {
	content  string
	err      error
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.content}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	model := &fakeModel{content: "the answer"}
	c := NewClient(model, "gpt-4", 0.7)

	out, err := c.Complete(context.Background(), "be helpful", "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)

	// System then user message, in that order.
	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
}

func TestCompleteWrapsModelError(t *testing.T) {
	sentinel := errors.New("rate limited")
	c := NewClient(&fakeModel{err: sentinel}, "gpt-4", 0.7)

	_, err := c.Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "model call failed")
}

func TestCompleteEmptyResponse(t *testing.T) {
	c := NewClient(&fakeModel{content: ""}, "gpt-4", 0.7)

	_, err := c.Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(config.OpenAIConfig{Model: "gpt-4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestNewOpenAI(t *testing.T) {
	c, err := NewOpenAI(config.OpenAIConfig{
		APIKey:      "sk-test",
		Model:       "gpt-4o",
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", c.modelName)
	assert.Equal(t, 0.2, c.temperature)
}

func TestNewGoogleAIRequiresKey(t *testing.T) {
	_, err := NewGoogleAI(context.Background(), config.GoogleConfig{Model: "gemini-pro"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}
