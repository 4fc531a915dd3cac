package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// CompatibleProvider talks to any OpenAI-compatible chat completions API.
type CompatibleProvider struct {
	label       string
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewCompatibleProvider uses the official OpenAI endpoint when baseURL is empty.
func NewCompatibleProvider(label, apiKey, baseURL, model string, temperature float32, maxTokens int) *CompatibleProvider {
	if temperature == 0 {
		temperature = 0.7
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &CompatibleProvider{
		label:       label,
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (p *CompatibleProvider) GetProviderName() string {
	return p.label
}

func (p *CompatibleProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s error: %w", strings.ToLower(p.label), err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", p.label)
	}

	return resp.Choices[0].Message.Content, nil
}
