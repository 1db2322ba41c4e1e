package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddingConfig_Defaults(t *testing.T) {
	cfg, err := LoadEmbeddingConfig()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Backend)
	assert.Equal(t, 1024, cfg.Dims)
	assert.Equal(t, 0, cfg.CacheSize)
}

func TestLoadEmbeddingConfig_FromEnv(t *testing.T) {
	t.Setenv("EMBEDDING_BACKEND", "hash")
	t.Setenv("EMBEDDING_DIMS", "256")
	t.Setenv("EMBEDDING_CACHE_SIZE", "500")

	cfg, err := LoadEmbeddingConfig()
	require.NoError(t, err)

	assert.Equal(t, "hash", cfg.Backend)
	assert.Equal(t, 256, cfg.Dims)
	assert.Equal(t, 500, cfg.CacheSize)
}

func TestLoadEmbeddingConfig_InvalidInt(t *testing.T) {
	t.Setenv("EMBEDDING_DIMS", "many")

	_, err := LoadEmbeddingConfig()
	require.Error(t, err)
}

func TestLoadMemoryConfig(t *testing.T) {
	t.Setenv("MEMORY_DEDUP_THRESHOLD", "0.92")

	cfg, err := LoadMemoryConfig()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.SearchLimit)
	assert.Equal(t, 4, cfg.CaptureConcurrency)
	assert.InDelta(t, 0.92, cfg.DedupThreshold, 1e-9)
}

func TestLoadAppConfig_RuntimePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECALL_RUNTIME_PATH", dir)
	t.Setenv("RECALL_OWNER_ID", "alice")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.GetRuntimePath())
	assert.Equal(t, "alice", cfg.DefaultOwnerID)
	assert.Equal(t, filepath.Join(dir, ".env"), cfg.GetEnvPath())
}

func TestStorageConfig_ResolvePath(t *testing.T) {
	cfg := StorageConfig{}

	assert.Equal(t, filepath.Join("/rt", "recall.db"), cfg.ResolvePath("/rt", "recall.db"))
	assert.Equal(t, "/abs/recall.db", cfg.ResolvePath("/rt", "/abs/recall.db"))
	assert.Equal(t, "", cfg.ResolvePath("/rt", ""))
}
