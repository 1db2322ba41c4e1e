package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

type StorageConfig struct {
	// Backend is one of "sqlite", "chromem" or "supabase".
	Backend string `env:"STORAGE_BACKEND" envDefault:"sqlite"`

	DatabaseFile string `env:"SQLITE_DATABASE_FILE" envDefault:"recall.db"`

	// ChromemDir enables on-disk persistence for chromem; empty keeps it in memory.
	ChromemDir      string `env:"CHROMEM_DIR" envDefault:"chromem"`
	ChromemCompress bool   `env:"CHROMEM_COMPRESS" envDefault:"false"`

	SupabaseURL string `env:"SUPABASE_URL"`
	SupabaseKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`
}

func LoadStorageConfig() (*StorageConfig, error) {
	c := &StorageConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	return c, nil
}

func NewStorageConfig(ctx context.Context) *StorageConfig {
	c, err := LoadStorageConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Storage config")
	}
	return c
}

// ResolvePath anchors relative storage paths in the runtime directory.
func (c StorageConfig) ResolvePath(runtimePath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(runtimePath, p)
}
