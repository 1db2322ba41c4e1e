package chromem

import (
	"context"
	"fmt"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

const (
	metaOwner   = "owner_id"
	metaCat     = "category"
	metaSource  = "source_message"
	metaCreated = "created_at"
	metaUpdated = "updated_at"

	timeLayout = time.RFC3339Nano
)

// MemoryRepo stores memories in chromem-go, one collection per owner.
type MemoryRepo struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// New keeps everything in process memory.
func New() *MemoryRepo {
	return newRepo(chromem.NewDB())
}

// NewPersistent stores collections as gob files under dir.
func NewPersistent(dir string, compress bool) (*MemoryRepo, error) {
	db, err := chromem.NewPersistentDB(dir, compress)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	return newRepo(db), nil
}

func newRepo(db *chromem.DB) *MemoryRepo {
	return &MemoryRepo{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}
}

func (r *MemoryRepo) collection(ownerID string) (*chromem.Collection, error) {
	r.mu.RLock()
	col, ok := r.collections[ownerID]
	r.mu.RUnlock()
	if ok {
		return col, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if col, ok := r.collections[ownerID]; ok {
		return col, nil
	}

	// Embeddings are always supplied, so no embedding func is needed.
	col, err := r.db.GetOrCreateCollection("memories_"+ownerID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	r.collections[ownerID] = col
	return col, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, mem core.NewMemory) (core.Memory, error) {
	col, err := r.collection(mem.OwnerID)
	if err != nil {
		return core.Memory{}, err
	}

	meta := map[string]string{
		metaOwner:   mem.OwnerID,
		metaCat:     string(mem.Category),
		metaCreated: mem.CreatedAt.UTC().Format(timeLayout),
		metaUpdated: mem.UpdatedAt.UTC().Format(timeLayout),
	}
	if mem.SourceMessage != nil {
		meta[metaSource] = *mem.SourceMessage
	}

	// chromem may normalise the embedding it is given.
	embedding := make([]float32, len(mem.Embedding))
	copy(embedding, mem.Embedding)

	doc := chromem.Document{
		ID:        mem.ID,
		Content:   mem.Content,
		Embedding: embedding,
		Metadata:  meta,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return core.Memory{}, fmt.Errorf("add document: %w", err)
	}

	stored, err := col.GetByID(ctx, mem.ID)
	if err != nil {
		return core.Memory{}, fmt.Errorf("read back document: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("component", "chromem").
		Str("id", mem.ID).
		Str("owner", mem.OwnerID).
		Msg("memory stored")

	return toMemory(stored.ID, stored.Content, stored.Metadata, stored.Embedding)
}

func (r *MemoryRepo) Match(ctx context.Context, q core.MatchQuery) ([]core.MatchRow, error) {
	col, err := r.collection(q.OwnerID)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection.
	n := q.Limit
	if count := col.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return []core.MatchRow{}, nil
	}

	where := map[string]string{metaOwner: q.OwnerID}
	if q.Category != "" {
		where[metaCat] = string(q.Category)
	}

	results, err := col.QueryEmbedding(ctx, q.Embedding, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	rows := make([]core.MatchRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, core.MatchRow{
			ID:         res.ID,
			Content:    res.Content,
			Category:   res.Metadata[metaCat],
			Similarity: float64(res.Similarity),
		})
	}
	return rows, nil
}

func toMemory(id, content string, meta map[string]string, embedding []float32) (core.Memory, error) {
	cat, err := core.ParseCategory(meta[metaCat])
	if err != nil {
		return core.Memory{}, err
	}

	created, err := time.Parse(timeLayout, meta[metaCreated])
	if err != nil {
		return core.Memory{}, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(timeLayout, meta[metaUpdated])
	if err != nil {
		return core.Memory{}, fmt.Errorf("parse updated_at: %w", err)
	}

	m := core.Memory{
		ID:        id,
		OwnerID:   meta[metaOwner],
		Content:   content,
		Category:  cat,
		Embedding: embedding,
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if src, ok := meta[metaSource]; ok {
		m.SourceMessage = &src
	}
	return m, nil
}
