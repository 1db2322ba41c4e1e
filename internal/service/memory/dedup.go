package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// Deduplicator refuses a memory when the owner already has one in the same
// category scoring at or above Threshold against it. Check and insert run
// under a per-owner lock, so concurrent adds for one owner see each other.
type Deduplicator struct {
	store     *Store
	searcher  *Searcher
	threshold float64

	locks sync.Map // owner id -> *sync.Mutex
}

func NewDeduplicator(store *Store, searcher *Searcher, threshold float64) *Deduplicator {
	return &Deduplicator{store: store, searcher: searcher, threshold: threshold}
}

func (d *Deduplicator) AddMemory(ctx context.Context, ownerID, content string, category core.Category, opts ...AddOption) (core.Memory, error) {
	if err := validateMemoryInput(ownerID, content, category); err != nil {
		return core.Memory{}, err
	}

	mu := d.ownerLock(ownerID)
	mu.Lock()
	defer mu.Unlock()

	matches, err := d.searcher.SearchMemories(ctx, ownerID, content, 1, WithCategory(category))
	if err != nil {
		return core.Memory{}, fmt.Errorf("%w: duplicate check: %w", core.ErrAddMemory, err)
	}

	if len(matches) > 0 && matches[0].Score >= d.threshold {
		log.FromCtx(ctx).Debug().
			Str("existing_id", matches[0].ID).
			Float64("score", matches[0].Score).
			Msg("skipping duplicate memory")
		return core.Memory{}, fmt.Errorf("%w: matches %s (score %.3f)", core.ErrDuplicateMemory, matches[0].ID, matches[0].Score)
	}

	return d.store.AddMemory(ctx, ownerID, content, category, opts...)
}

func (d *Deduplicator) ownerLock(ownerID string) *sync.Mutex {
	mu, _ := d.locks.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
