package generator

import (
	"context"
	"errors"
	"fmt"
	"sparkbot/internal/core/domain"

	"github.com/revrost/go-openrouter"
)

var ErrNoChoices = errors.New("openrouter returned no choices")

type OpenRouterClient interface {
	CreateChatCompletion(ctx context.Context,
		ccr openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

type OpenRouter struct {
	client       OpenRouterClient
	systemPrompt string
	model        string
}

func NewOpenRouterGenerator(apiKey, model, systemPrompt string) *OpenRouter {
	return &OpenRouter{
		systemPrompt: systemPrompt,
		model:        model,
		client: openrouter.NewClient(
			apiKey,
			openrouter.WithXTitle("sparkbot"),
		),
	}
}

// GenerateFromPrompt answers a single prompt. The prompt's model overrides
// the configured default when set.
func (c *OpenRouter) GenerateFromPrompt(ctx context.Context, prompt domain.Prompt) (string, error) {
	if prompt.Prompt == "" {
		return "", domain.ErrEmptyPrompt
	}

	var messages []openrouter.ChatCompletionMessage
	if c.systemPrompt != "" {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleSystem,
			Content: openrouter.Content{Text: c.systemPrompt},
		})
	}

	messages = append(messages, openrouter.ChatCompletionMessage{
		Role:    openrouter.ChatMessageRoleUser,
		Content: openrouter.Content{Text: prompt.Prompt},
	})

	model := c.model
	if prompt.Model != "" {
		model = prompt.Model
	}

	resp, err := c.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Messages: messages,
		Model:    model,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content.Text, nil
}
