package chromem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/recall/internal/core"
)

func newMemory(id, owner, content string, cat core.Category, vec []float32) core.NewMemory {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return core.NewMemory{
		ID:        id,
		OwnerID:   owner,
		Content:   content,
		Category:  cat,
		Embedding: vec,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryRepo_Insert(t *testing.T) {
	repo := New()
	ctx := context.Background()

	src := "I'm allergic to peanuts"
	in := newMemory("m1", "u1", "Allergic to peanuts", core.CategoryHealth, []float32{3, 4})
	in.SourceMessage = &src

	got, err := repo.Insert(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "u1", got.OwnerID)
	assert.Equal(t, "Allergic to peanuts", got.Content)
	assert.Equal(t, core.CategoryHealth, got.Category)
	require.NotNil(t, got.SourceMessage)
	assert.Equal(t, src, *got.SourceMessage)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
	assert.Len(t, got.Embedding, 2)

	// The caller's slice is left untouched.
	assert.Equal(t, []float32{3, 4}, in.Embedding)
}

func TestMemoryRepo_Match(t *testing.T) {
	repo := New()
	ctx := context.Background()

	seed := []core.NewMemory{
		newMemory("a", "u1", "close", core.CategoryHealth, []float32{1, 0, 0}),
		newMemory("b", "u1", "medium", core.CategoryWork, []float32{1, 1, 0}),
		newMemory("c", "u1", "far", core.CategoryHealth, []float32{0, 0, 1}),
		newMemory("d", "u2", "other owner", core.CategoryHealth, []float32{1, 0, 0}),
	}
	for _, m := range seed {
		_, err := repo.Insert(ctx, m)
		require.NoError(t, err)
	}

	t.Run("ranked and owner scoped", func(t *testing.T) {
		rows, err := repo.Match(ctx, core.MatchQuery{OwnerID: "u1", Embedding: []float32{1, 0, 0}, Limit: 10})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "a", rows[0].ID)
		assert.Equal(t, "b", rows[1].ID)
		assert.InDelta(t, 1.0, rows[0].Similarity, 1e-5)
		for _, r := range rows {
			assert.NotEqual(t, "d", r.ID)
		}
	})

	t.Run("limit", func(t *testing.T) {
		rows, err := repo.Match(ctx, core.MatchQuery{OwnerID: "u1", Embedding: []float32{1, 0, 0}, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("category filter", func(t *testing.T) {
		rows, err := repo.Match(ctx, core.MatchQuery{OwnerID: "u1", Embedding: []float32{1, 0, 0}, Limit: 5, Category: core.CategoryHealth})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for _, r := range rows {
			assert.Equal(t, "health", r.Category)
		}
	})

	t.Run("unknown owner", func(t *testing.T) {
		rows, err := repo.Match(ctx, core.MatchQuery{OwnerID: "nobody", Embedding: []float32{1, 0, 0}, Limit: 5})
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})
}

func TestNewPersistent_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewPersistent(dir, false)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newMemory("m1", "u1", "kept", core.CategoryOther, []float32{1, 0}))
	require.NoError(t, err)

	reopened, err := NewPersistent(dir, false)
	require.NoError(t, err)

	rows, err := reopened.Match(ctx, core.MatchQuery{OwnerID: "u1", Embedding: []float32{1, 0}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kept", rows[0].Content)
}
