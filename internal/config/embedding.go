package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

type EmbeddingConfig struct {
	// Backend is "openai" (any OpenAI-compatible endpoint) or "hash" (offline).
	Backend string `env:"EMBEDDING_BACKEND" envDefault:"openai"`
	BaseURL string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey  string `env:"EMBEDDING_API_KEY"`
	Model   string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dims    int    `env:"EMBEDDING_DIMS" envDefault:"1024"`
	// MaxTokens truncates input before embedding; 0 disables truncation.
	MaxTokens int `env:"EMBEDDING_MAX_TOKENS" envDefault:"8000"`
	// CacheSize is the memoization budget in vectors; 0 disables the cache.
	CacheSize int `env:"EMBEDDING_CACHE_SIZE" envDefault:"0"`
}

func LoadEmbeddingConfig() (*EmbeddingConfig, error) {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c, err := LoadEmbeddingConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}
