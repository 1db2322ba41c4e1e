package embedding

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/sandevgo/recall/internal/core"
)

// Cached memoizes an embedder by exact input text. Callers receive copies,
// so mutating a returned vector never corrupts the cache.
type Cached struct {
	next  core.Embedder
	cache *ristretto.Cache
}

// NewCached keeps up to size vectors.
func NewCached(next core.Embedder, size int) (*Cached, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,
		// Cost counts vectors, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		if vec, ok := v.([]float32); ok {
			return copyVec(vec), nil
		}
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(text, copyVec(vec), 1)
	c.cache.Wait()
	return vec, nil
}

// EmbedBatch serves cached inputs locally and forwards the rest in one call
// when the wrapped embedder batches.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []int

	for i, text := range texts {
		if v, ok := c.cache.Get(text); ok {
			if vec, ok := v.([]float32); ok {
				out[i] = copyVec(vec)
				continue
			}
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	batch, ok := c.next.(core.BatchEmbedder)
	if !ok {
		for _, i := range missing {
			vec, err := c.Embed(ctx, texts[i])
			if err != nil {
				return nil, err
			}
			out[i] = vec
		}
		return out, nil
	}

	pending := make([]string, len(missing))
	for j, i := range missing {
		pending[j] = texts[i]
	}
	vecs, err := batch.EmbedBatch(ctx, pending)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(pending) {
		return nil, fmt.Errorf("embedding batch returned %d vectors for %d inputs", len(vecs), len(pending))
	}
	for j, i := range missing {
		out[i] = vecs[j]
		c.cache.Set(texts[i], copyVec(vecs[j]), 1)
	}
	c.cache.Wait()
	return out, nil
}

func (c *Cached) Close() {
	c.cache.Close()
}

func copyVec(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
