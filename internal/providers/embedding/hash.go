package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const bigramWeight = 0.5

// Hash is an offline embedder based on feature hashing. Equal text always
// yields the same vector, and texts sharing words point in similar
// directions. It needs no network and no model files.
type Hash struct {
	dims int
}

func NewHash(dims int) *Hash {
	if dims <= 0 {
		dims = 256
	}
	return &Hash{dims: dims}
}

func (h *Hash) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, h.dims)
	words := tokenize(text)

	if len(words) == 0 {
		// Symbol-only or empty input still gets a stable, non-zero vector.
		h.add(vec, "\x00raw:"+text, 1)
	}
	for i, w := range words {
		h.add(vec, w, 1)
		if i > 0 {
			h.add(vec, words[i-1]+" "+w, bigramWeight)
		}
	}

	return normalize(vec), nil
}

func (h *Hash) add(vec []float64, feature string, weight float64) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()

	idx := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(vec []float64) []float32 {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(vec))
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}
