package core

import (
	"context"
	"time"
)

// MemoryRepository is the contract a conforming memory backend satisfies.
// Insert returns the row as stored. Match ranks the owner's memories against
// an embedding, best first, and never returns another owner's rows.
type MemoryRepository interface {
	Insert(ctx context.Context, mem NewMemory) (Memory, error)
	Match(ctx context.Context, q MatchQuery) ([]MatchRow, error)
}

type NewMemory struct {
	ID            string
	OwnerID       string
	Content       string
	Category      Category
	Embedding     []float32
	SourceMessage *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type MatchQuery struct {
	OwnerID   string
	Embedding []float32
	Limit     int
	// Category restricts matching to one category when non-empty.
	Category Category
}

type MatchRow struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
}
