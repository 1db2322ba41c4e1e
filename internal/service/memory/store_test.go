package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/recall/internal/core"
)

func TestStore_AddMemoryReturnsPersistedRow(t *testing.T) {
	s := newStack(t, nil)
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s.store.now = func() time.Time { return fixed }

	mem, err := s.store.AddMemory(context.Background(), "u1", "User's name is Alice", core.CategoryPersonalInfo,
		WithSourceMessage("Hi, I'm Alice"))
	require.NoError(t, err)

	assert.NotEmpty(t, mem.ID)
	assert.Equal(t, "u1", mem.OwnerID)
	assert.Equal(t, "User's name is Alice", mem.Content)
	assert.Equal(t, core.CategoryPersonalInfo, mem.Category)
	assert.Len(t, mem.Embedding, testDims)
	require.NotNil(t, mem.SourceMessage)
	assert.Equal(t, "Hi, I'm Alice", *mem.SourceMessage)
	assert.True(t, fixed.Equal(mem.CreatedAt))
	assert.True(t, mem.CreatedAt.Equal(mem.UpdatedAt))

	other, err := s.store.AddMemory(context.Background(), "u1", "User's name is Alice", core.CategoryPersonalInfo)
	require.NoError(t, err)
	assert.NotEqual(t, mem.ID, other.ID, "the same fact twice yields two rows")
	assert.Nil(t, other.SourceMessage)
}

func TestStore_RejectsInvalidInputBeforeIO(t *testing.T) {
	tests := []struct {
		name     string
		owner    string
		content  string
		category core.Category
	}{
		{name: "blank content", owner: "u1", content: "  \n\t", category: core.CategoryOther},
		{name: "empty content", owner: "u1", content: "", category: core.CategoryOther},
		{name: "unknown category", owner: "u1", content: "fact", category: core.Category("mood")},
		{name: "empty category", owner: "u1", content: "fact", category: ""},
		{name: "blank owner", owner: " ", content: "fact", category: core.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &flakyRepo{}
			s := newStack(t, repo)

			_, err := s.store.AddMemory(context.Background(), tt.owner, tt.content, tt.category)
			require.ErrorIs(t, err, core.ErrInvalidMemoryInput)
			assert.Zero(t, repo.inserts)
		})
	}
}

func TestStore_StorageFailure(t *testing.T) {
	s := newStack(t, &flakyRepo{})

	_, err := s.store.AddMemory(context.Background(), "u1", "User has asthma", core.CategoryHealth)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add memory")
	assert.ErrorIs(t, err, core.ErrAddMemory)
	assert.ErrorIs(t, err, errDiskFull)
}

type brokenEmbedder struct{}

func (brokenEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding service unavailable")
}

func TestStore_EmbeddingFailure(t *testing.T) {
	repo := &flakyRepo{}
	store := NewStore(repo, brokenEmbedder{})

	_, err := store.AddMemory(context.Background(), "u1", "User has asthma", core.CategoryHealth)
	require.ErrorIs(t, err, core.ErrAddMemory)
	assert.Zero(t, repo.inserts)
}
