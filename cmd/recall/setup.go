package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/embedding"
	"github.com/sandevgo/recall/internal/providers/llm"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/internal/storage/chromem"
	"github.com/sandevgo/recall/internal/storage/sqlite"
	"github.com/sandevgo/recall/internal/storage/supabase"
	"github.com/sandevgo/recall/pkg/log"
	"github.com/sandevgo/recall/pkg/srv"
)

// App holds the wired pipeline and the services to shut down on exit.
type App struct {
	Config   *config.AppConfig
	Memory   *config.MemoryConfig
	Pipeline *memory.Pipeline
	Services []srv.Service
}

func (a *App) Owner() string {
	return ownerID(a.Config)
}

func (a *App) Close(ctx context.Context) {
	srv.Stop(ctx, a.Services)
}

func NewApp(ctx context.Context) (*App, error) {
	logger := log.FromCtx(ctx)
	app := &App{}

	// 1. Configuration
	app.Config = config.NewAppConfig(ctx)
	app.Memory = config.NewMemoryConfig(ctx)
	providerCfg := config.NewProviderConfig(ctx)
	embeddingCfg := config.NewEmbeddingConfig(ctx)
	storageCfg := config.NewStorageConfig(ctx)

	if err := os.MkdirAll(app.Config.GetRuntimePath(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	// 2. Storage
	repo, closeRepo, err := initRepository(ctx, app.Config, storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.Services = append(app.Services, srv.NewCleanup("storage", closeRepo))

	// 3. Embedding provider
	embedder, closeEmbedder, err := embedding.New(ctx, embeddingCfg)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	app.Services = append(app.Services, srv.NewCleanup("embedding", func() error {
		closeEmbedder()
		return nil
	}))

	// 4. AI Provider
	aiProvider, err := llm.NewProvider(ctx, providerCfg)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	// 5. Memory pipeline
	store := memory.NewStore(repo, embedder)
	searcher := memory.NewSearcher(repo, embedder)

	var adder memory.Adder = store
	if app.Memory.DedupThreshold > 0 {
		logger.Debug().Float64("threshold", app.Memory.DedupThreshold).Msg("deduplication enabled")
		adder = memory.NewDeduplicator(store, searcher, app.Memory.DedupThreshold)
	}

	app.Pipeline = memory.NewPipeline(memory.NewExtractor(aiProvider), adder, searcher, app.Memory.CaptureConcurrency)
	return app, nil
}

func initRepository(ctx context.Context, appCfg *config.AppConfig, cfg *config.StorageConfig) (core.MemoryRepository, func() error, error) {
	noop := func() error { return nil }
	runtime := appCfg.GetRuntimePath()

	log.FromCtx(ctx).Info().Str("backend", cfg.Backend).Msg("opening memory storage")

	switch cfg.Backend {
	case "sqlite":
		db, err := sqlite.NewDB(ctx, cfg.ResolvePath(runtime, cfg.DatabaseFile))
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewMemoryRepo(db), db.Close, nil
	case "chromem":
		if cfg.ChromemDir == "" {
			return chromem.New(), noop, nil
		}
		repo, err := chromem.NewPersistent(cfg.ResolvePath(runtime, cfg.ChromemDir), cfg.ChromemCompress)
		if err != nil {
			return nil, nil, err
		}
		return repo, noop, nil
	case "supabase":
		repo, err := supabase.Connect(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, nil, err
		}
		return repo, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// initEnv loads <runtime>/.env when present. Variables already set in the
// process environment win.
func initEnv(runtimePath string) error {
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}
