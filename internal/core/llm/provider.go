package llm

import (
	"context"
	"fmt"
)

// Provider generates a single reply for a system prompt and user message.
type Provider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
	GetProviderName() string
}

// ProviderType untuk factory
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
)

// ProviderConfig untuk create provider
type ProviderConfig struct {
	Type   ProviderType
	APIKey string

	// Optional overrides; zero values take the provider defaults.
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

type providerDefaults struct {
	label     string
	baseURL   string
	model     string
	maxTokens int
}

var defaults = map[ProviderType]providerDefaults{
	ProviderOpenAI:   {label: "OpenAI", model: "gpt-4o-mini", maxTokens: 300},
	ProviderGroq:     {label: "Groq", baseURL: "https://api.groq.com/openai/v1", model: "llama-3.1-8b-instant", maxTokens: 2048},
	ProviderDeepSeek: {label: "DeepSeek", baseURL: "https://api.deepseek.com", model: "deepseek-chat", maxTokens: 1024},
}

// NewProvider factory untuk create LLM provider. All supported backends
// speak the OpenAI chat completions API.
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	d, ok := defaults[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for %s", cfg.Type)
	}

	model := cfg.Model
	if model == "" {
		model = d.model
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = d.baseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = d.maxTokens
	}

	return NewCompatibleProvider(d.label, cfg.APIKey, baseURL, model, cfg.Temperature, maxTokens), nil
}
