package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// Store writes new memories. It never updates or deletes.
type Store struct {
	repo     core.MemoryRepository
	embedder core.Embedder
	now      func() time.Time
}

func NewStore(repo core.MemoryRepository, embedder core.Embedder) *Store {
	return &Store{
		repo:     repo,
		embedder: embedder,
		now:      time.Now,
	}
}

type addOptions struct {
	sourceMessage *string
}

type AddOption func(*addOptions)

// WithSourceMessage records the raw message a memory was extracted from.
func WithSourceMessage(msg string) AddOption {
	return func(o *addOptions) {
		o.sourceMessage = &msg
	}
}

// AddMemory embeds and persists one fact and returns it as stored.
// Invalid input fails with core.ErrInvalidMemoryInput before any I/O; every
// other failure is reported as core.ErrAddMemory.
func (s *Store) AddMemory(ctx context.Context, ownerID, content string, category core.Category, opts ...AddOption) (core.Memory, error) {
	if err := validateMemoryInput(ownerID, content, category); err != nil {
		return core.Memory{}, err
	}

	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}

	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return core.Memory{}, fmt.Errorf("%w: embed: %w", core.ErrAddMemory, err)
	}

	now := s.now().UTC()
	stored, err := s.repo.Insert(ctx, core.NewMemory{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Content:       content,
		Category:      category,
		Embedding:     vec,
		SourceMessage: o.sourceMessage,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return core.Memory{}, fmt.Errorf("%w: %w", core.ErrAddMemory, err)
	}

	log.FromCtx(ctx).Debug().
		Str("id", stored.ID).
		Str("owner", ownerID).
		Str("category", string(category)).
		Msg("memory stored")

	return stored, nil
}

func validateMemoryInput(ownerID, content string, category core.Category) error {
	switch {
	case strings.TrimSpace(ownerID) == "":
		return fmt.Errorf("%w: owner id is empty", core.ErrInvalidMemoryInput)
	case strings.TrimSpace(content) == "":
		return fmt.Errorf("%w: content is empty", core.ErrInvalidMemoryInput)
	case !category.Valid():
		return fmt.Errorf("%w: %w: %q", core.ErrInvalidMemoryInput, core.ErrUnknownCategory, category)
	}
	return nil
}
