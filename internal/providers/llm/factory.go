package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, cfg *config.ProviderConfig) (core.AIProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model), nil
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model), nil
	case "custom":
		if cfg.CustomOpenAIBaseURL == "" {
			return nil, fmt.Errorf("custom provider requires CUSTOM_OPENAI_BASE_URL")
		}
		return NewCustomOpenAI(cfg.CustomOpenAIBaseURL, cfg.CustomOpenAIAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
