package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

type MemoryConfig struct {
	SearchLimit int `env:"MEMORY_SEARCH_LIMIT" envDefault:"5"`
	// CaptureConcurrency bounds parallel add_memory calls per message.
	CaptureConcurrency int `env:"MEMORY_CAPTURE_CONCURRENCY" envDefault:"4"`
	// DedupThreshold enables the optional dedup layer when > 0.
	DedupThreshold float64 `env:"MEMORY_DEDUP_THRESHOLD" envDefault:"0"`
	// MaxRetries is the CLI retry budget for capture; the pipeline itself never retries.
	MaxRetries int `env:"MEMORY_MAX_RETRIES" envDefault:"2"`
}

func LoadMemoryConfig() (*MemoryConfig, error) {
	c := &MemoryConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c, err := LoadMemoryConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Memory config")
	}
	return c
}
