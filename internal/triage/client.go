package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ErrMissingAPIKey indicates the completion endpoint cannot be used at all.
// Fatal at startup: no category or summary can ever be produced without it.
var ErrMissingAPIKey = errors.New("OpenAI API key is not configured")

// CompletionClient is the narrow completion surface the triage components
// need. Tests substitute a fake.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, maxTokens int64) (string, error)
}

// OpenAIClient implements CompletionClient against the OpenAI chat-completion
// API.
type OpenAIClient struct {
	client openai.Client
	model  shared.ChatModel
}

// NewOpenAIClient creates the one completion client shared by Classifier and
// Summarizer. Returns ErrMissingAPIKey when apiKey is empty.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  shared.ChatModelGPT4oMini,
	}, nil
}

// Complete sends one system+user exchange and returns the raw reply text.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:     c.model,
		MaxTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
