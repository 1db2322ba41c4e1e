package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/embedding"
	"github.com/sandevgo/recall/internal/storage/chromem"
)

const testDims = 512

// scriptedAI answers every Chat call with the same reply or error.
type scriptedAI struct {
	reply string
	err   error

	mu    sync.Mutex
	calls [][]core.Message
}

func (s *scriptedAI) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	s.mu.Lock()
	s.calls = append(s.calls, history)
	s.mu.Unlock()

	if s.err != nil {
		return core.Message{}, s.err
	}
	return core.Message{Role: core.RoleAssistant, Content: s.reply}, nil
}

// flakyRepo delegates to next but fails inserts whose content contains failOn.
type flakyRepo struct {
	next     core.MemoryRepository
	failOn   string
	matchErr error
	rows     []core.MatchRow

	mu      sync.Mutex
	inserts int
}

var errDiskFull = errors.New("disk full")

func (f *flakyRepo) Insert(ctx context.Context, mem core.NewMemory) (core.Memory, error) {
	f.mu.Lock()
	f.inserts++
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(mem.Content, f.failOn) {
		return core.Memory{}, errDiskFull
	}
	if f.next == nil {
		return core.Memory{}, errDiskFull
	}
	return f.next.Insert(ctx, mem)
}

func (f *flakyRepo) Match(ctx context.Context, q core.MatchQuery) ([]core.MatchRow, error) {
	if f.matchErr != nil {
		return nil, f.matchErr
	}
	if f.rows != nil {
		return f.rows, nil
	}
	return f.next.Match(ctx, q)
}

type stack struct {
	repo     core.MemoryRepository
	embedder *embedding.Provider
	store    *Store
	searcher *Searcher
}

func newStack(t *testing.T, repo core.MemoryRepository) stack {
	t.Helper()

	if repo == nil {
		repo = chromem.New()
	}
	emb := embedding.NewProvider(embedding.NewHash(testDims), testDims)

	return stack{
		repo:     repo,
		embedder: emb,
		store:    NewStore(repo, emb),
		searcher: NewSearcher(repo, emb),
	}
}

func (s stack) pipeline(ai core.AIProvider) *Pipeline {
	return NewPipeline(NewExtractor(ai), s.store, s.searcher, 2)
}
