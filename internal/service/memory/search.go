package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/recall/internal/core"
)

// Searcher ranks an owner's memories against a query. Order and scores come
// from the repository unchanged.
type Searcher struct {
	repo     core.MemoryRepository
	embedder core.Embedder
}

func NewSearcher(repo core.MemoryRepository, embedder core.Embedder) *Searcher {
	return &Searcher{repo: repo, embedder: embedder}
}

type searchOptions struct {
	category core.Category
}

type SearchOption func(*searchOptions)

// WithCategory restricts the match to one category.
func WithCategory(c core.Category) SearchOption {
	return func(o *searchOptions) {
		o.category = c
	}
}

// SearchMemories returns at most limit results, best first. No match is an
// empty slice. Failures after validation are reported as core.ErrSearchMemories.
func (s *Searcher) SearchMemories(ctx context.Context, ownerID, query string, limit int, opts ...SearchOption) ([]core.SearchResult, error) {
	var o searchOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case strings.TrimSpace(ownerID) == "":
		return nil, fmt.Errorf("%w: owner id is empty", core.ErrInvalidSearchInput)
	case strings.TrimSpace(query) == "":
		return nil, fmt.Errorf("%w: query is empty", core.ErrInvalidSearchInput)
	case limit <= 0:
		return nil, fmt.Errorf("%w: limit must be positive, got %d", core.ErrInvalidSearchInput, limit)
	case o.category != "" && !o.category.Valid():
		return nil, fmt.Errorf("%w: %w: %q", core.ErrInvalidSearchInput, core.ErrUnknownCategory, o.category)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %w", core.ErrSearchMemories, err)
	}

	rows, err := s.repo.Match(ctx, core.MatchQuery{
		OwnerID:   ownerID,
		Embedding: vec,
		Limit:     limit,
		Category:  o.category,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSearchMemories, err)
	}

	if len(rows) > limit {
		rows = rows[:limit]
	}

	results := make([]core.SearchResult, 0, len(rows))
	for _, row := range rows {
		cat, err := core.ParseCategory(row.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed row %s: %w", core.ErrSearchMemories, row.ID, err)
		}
		results = append(results, core.SearchResult{
			ID:       row.ID,
			Content:  row.Content,
			Category: cat,
			Score:    row.Similarity,
		})
	}
	return results, nil
}
