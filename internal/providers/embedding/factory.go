package embedding

import (
	"context"
	"fmt"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// New builds the configured backend, wraps it in the cache when enabled and
// returns the dimension-checked Provider. The returned func releases the cache.
func New(ctx context.Context, cfg *config.EmbeddingConfig) (*Provider, func(), error) {
	log.FromCtx(ctx).Info().
		Str("backend", cfg.Backend).
		Str("model", cfg.Model).
		Int("dims", cfg.Dims).
		Msg("starting embedding provider")

	var backend core.Embedder
	switch cfg.Backend {
	case "openai":
		backend = NewOpenAI(OpenAIConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dims,
			MaxTokens:  cfg.MaxTokens,
		})
	case "hash":
		backend = NewHash(cfg.Dims)
	default:
		return nil, nil, fmt.Errorf("unknown embedding backend: %s", cfg.Backend)
	}

	cleanup := func() {}
	if cfg.CacheSize > 0 {
		cached, err := NewCached(backend, cfg.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		backend = cached
		cleanup = cached.Close
	}

	return NewProvider(backend, cfg.Dims), cleanup, nil
}
