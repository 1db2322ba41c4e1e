package embedding

import (
	"context"
	"fmt"

	"github.com/sandevgo/recall/internal/core"
)

// Provider fronts an embedding backend and guarantees every vector it hands
// out has the configured dimensionality.
type Provider struct {
	backend core.Embedder
	dims    int
}

func NewProvider(backend core.Embedder, dims int) *Provider {
	return &Provider{backend: backend, dims: dims}
}

func (p *Provider) Dims() int {
	return p.dims
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.backend.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := p.check(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedMany returns one vector per input in input order. Backends that
// support batching get a single call.
func (p *Provider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var vecs [][]float32
	if batch, ok := p.backend.(core.BatchEmbedder); ok {
		out, err := batch.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(out) != len(texts) {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d inputs", len(out), len(texts))
		}
		vecs = out
	} else {
		vecs = make([][]float32, 0, len(texts))
		for _, text := range texts {
			vec, err := p.backend.Embed(ctx, text)
			if err != nil {
				return nil, err
			}
			vecs = append(vecs, vec)
		}
	}

	for _, vec := range vecs {
		if err := p.check(vec); err != nil {
			return nil, err
		}
	}
	return vecs, nil
}

func (p *Provider) check(vec []float32) error {
	if p.dims > 0 && len(vec) != p.dims {
		return fmt.Errorf("%w: got %d, want %d", core.ErrDimensionMismatch, len(vec), p.dims)
	}
	return nil
}
