package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"RECALL_RUNTIME_PATH" envDefault:".recall"`
	// Owner used by the CLI and MCP server when a call does not name one.
	DefaultOwnerID string `env:"RECALL_OWNER_ID" envDefault:"local"`
	LogJSON        bool   `env:"RECALL_LOG_JSON" envDefault:"false"`
}

func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = GetRuntimePath()
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}

func (c AppConfig) GetHistoryPath() string {
	return filepath.Join(c.RuntimePath, "input_history")
}
