package llm

import (
	"context"
	"fmt"
	"lingua_backend/internal/config"
)

const (
	ProviderNone      = "none"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// NewProvider 按 ai.provider 创建，ai.model 为空时使用各家默认模型
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.Provider {
	case "", ProviderNone:
		return DisabledProvider{}, nil
	case ProviderGemini:
		p, err = NewGeminiProvider(ctx, firstKey(cfg.GeminiAPIKey, cfg.APIKey), cfg.Model)
	case ProviderOpenAI:
		p, err = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case ProviderAnthropic:
		p, err = NewAnthropicProvider(firstKey(cfg.AnthropicAPIKey, cfg.APIKey), cfg.Model)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return p, nil
}

func firstKey(keys ...string) string {
	for _, k := range keys {
		if k != "" {
			return k
		}
	}
	return ""
}

func modelOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
