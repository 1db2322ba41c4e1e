package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/pkg/env"
)

var initFlags struct {
	force     bool
	provider  string
	model     string
	apiKey    string
	storage   string
	embedding string
	dims      int
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a runtime .env from the current environment and flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}
		providerCfg, err := config.LoadProviderConfig()
		if err != nil {
			return err
		}
		embeddingCfg, err := config.LoadEmbeddingConfig()
		if err != nil {
			return err
		}
		storageCfg, err := config.LoadStorageConfig()
		if err != nil {
			return err
		}
		memoryCfg, err := config.LoadMemoryConfig()
		if err != nil {
			return err
		}

		if err := applyInitFlags(cmd, providerCfg, embeddingCfg, storageCfg); err != nil {
			return err
		}
		if owner != "" {
			appCfg.DefaultOwnerID = owner
		}

		envPath := appCfg.GetEnvPath()
		if _, err := os.Stat(envPath); err == nil && !initFlags.force {
			return fmt.Errorf("%s already exists, use --force to overwrite", envPath)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		// RuntimePath is where the file lives; writing it into the file is circular.
		appCfg.RuntimePath = ""

		content, err := env.MarshalEnv(appCfg, providerCfg, embeddingCfg, storageCfg, memoryCfg)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(config.GetRuntimePath(), 0755); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}
		if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", envPath, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", envPath)
		return nil
	},
}

func applyInitFlags(cmd *cobra.Command, p *config.ProviderConfig, e *config.EmbeddingConfig, s *config.StorageConfig) error {
	flags := cmd.Flags()

	if flags.Changed("provider") {
		p.Provider = initFlags.provider
	}
	if flags.Changed("model") {
		p.Model = initFlags.model
	}
	if flags.Changed("api-key") {
		switch p.Provider {
		case "openai":
			p.OpenAIAPIKey = initFlags.apiKey
		case "anthropic":
			p.AnthropicAPIKey = initFlags.apiKey
		case "openrouter":
			p.OpenRouterAPIKey = initFlags.apiKey
		case "ollama":
			p.OllamaAPIKey = initFlags.apiKey
		case "custom":
			p.CustomOpenAIAPIKey = initFlags.apiKey
		default:
			return fmt.Errorf("unknown llm provider: %s", p.Provider)
		}
	}
	if flags.Changed("storage") {
		s.Backend = initFlags.storage
	}
	if flags.Changed("embedding") {
		e.Backend = initFlags.embedding
	}
	if flags.Changed("dims") {
		e.Dims = initFlags.dims
	}
	return nil
}

func init() {
	f := initCmd.Flags()
	f.BoolVar(&initFlags.force, "force", false, "overwrite an existing .env")
	f.StringVar(&initFlags.provider, "provider", "", "llm provider: openai, anthropic, openrouter, ollama or custom")
	f.StringVar(&initFlags.model, "model", "", "extraction model")
	f.StringVar(&initFlags.apiKey, "api-key", "", "api key for the selected provider")
	f.StringVar(&initFlags.storage, "storage", "", "storage backend: sqlite, chromem or supabase")
	f.StringVar(&initFlags.embedding, "embedding", "", "embedding backend: openai or hash")
	f.IntVar(&initFlags.dims, "dims", 0, "embedding dimensions")

	rootCmd.AddCommand(initCmd)
}
