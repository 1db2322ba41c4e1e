package core

import (
	"time"
)

// Memory is a persisted, categorised fact about one owner.
type Memory struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Content       string    `json:"content"`
	Category      Category  `json:"category"`
	Embedding     []float32 `json:"-"`
	SourceMessage *string   `json:"source_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Candidate is a fact proposed by extraction, not yet persisted.
type Candidate struct {
	Content  string   `json:"content"`
	Category Category `json:"category"`
}

type ExtractionResult struct {
	Memories    []Candidate `json:"memories"`
	HasMemories bool        `json:"has_memories"`
}

// NewExtractionResult keeps HasMemories consistent with the candidate list.
func NewExtractionResult(memories []Candidate) ExtractionResult {
	if memories == nil {
		memories = []Candidate{}
	}
	return ExtractionResult{
		Memories:    memories,
		HasMemories: len(memories) > 0,
	}
}

type SearchResult struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Category Category `json:"category"`
	Score    float64  `json:"score"`
}
