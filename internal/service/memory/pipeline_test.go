package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/recall/internal/core"
)

func TestPipeline_FullCycle(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	p := s.pipeline(&scriptedAI{
		reply: `{"memories":[{"content":"User's name is Alice","category":"personal_info"}],"hasMemories":true}`,
	})

	report, err := p.Capture(ctx, "u1", "Hi! My name is Alice.")
	require.NoError(t, err)
	require.Len(t, report.Stored, 1)
	require.NotNil(t, report.Stored[0].SourceMessage)
	assert.Equal(t, "Hi! My name is Alice.", *report.Stored[0].SourceMessage)

	// Unrelated baseline fact for the same owner.
	_, err = s.store.AddMemory(ctx, "u1", "Peanut allergy diagnosed last spring", core.CategoryHealth)
	require.NoError(t, err)

	results, err := s.searcher.SearchMemories(ctx, "u1", "What is the user's name?", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "User's name is Alice", results[0].Content)
	assert.Equal(t, core.CategoryPersonalInfo, results[0].Category)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestPipeline_MixedCategories(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	p := s.pipeline(&scriptedAI{reply: `{"memories":[
		{"content":"User's name is Maria","category":"personal_info"},
		{"content":"User lives in Lisbon","category":"personal_info"},
		{"content":"User works as a nurse","category":"work"},
		{"content":"User is employed at Santa Maria hospital","category":"work"},
		{"content":"User has type 1 diabetes","category":"health"}
	],"hasMemories":true}`})

	report, err := p.Capture(ctx, "u1", "I'm Maria from Lisbon, a nurse at Santa Maria hospital, and I have type 1 diabetes.")
	require.NoError(t, err)
	require.Len(t, report.Stored, 5)

	want := []core.Category{
		core.CategoryPersonalInfo, core.CategoryPersonalInfo,
		core.CategoryWork, core.CategoryWork,
		core.CategoryHealth,
	}
	for i, mem := range report.Stored {
		assert.Equal(t, want[i], mem.Category, "stored in extraction order")
	}

	results, err := s.searcher.SearchMemories(ctx, "u1", "health", 5, WithCategory(core.CategoryHealth))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.CategoryHealth, results[0].Category)
	assert.Equal(t, "User has type 1 diabetes", results[0].Content)
}

func TestPipeline_GenerationFailureStoresNothing(t *testing.T) {
	repo := &flakyRepo{}
	s := newStack(t, repo)
	cause := errors.New("upstream timeout")

	_, err := s.pipeline(&scriptedAI{err: cause}).Capture(context.Background(), "u1", "My name is Alice")
	require.ErrorIs(t, err, core.ErrGeneration)
	require.ErrorIs(t, err, cause)
	assert.Zero(t, repo.inserts)
}

func TestPipeline_PartialFailure(t *testing.T) {
	s := newStack(t, nil)
	s = newStack(t, &flakyRepo{next: s.repo, failOn: "marathon"})

	p := s.pipeline(&scriptedAI{reply: `{"memories":[
		{"content":"User ran a marathon in April","category":"events"},
		{"content":"User enjoys trail running","category":"interests"}
	]}`})

	report, err := p.Capture(context.Background(), "u1", "I ran a marathon in April, I love trail running")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAddMemory)
	assert.Contains(t, err.Error(), "failed to add memory")

	assert.Len(t, report.Candidates, 2)
	require.Len(t, report.Stored, 1)
	assert.Equal(t, "User enjoys trail running", report.Stored[0].Content)
	assert.Equal(t, 1, report.Failed)
}

func TestPipeline_NothingToCapture(t *testing.T) {
	repo := &flakyRepo{}
	s := newStack(t, repo)

	report, err := s.pipeline(&scriptedAI{reply: "no json here"}).Capture(context.Background(), "u1", "hello")
	require.NoError(t, err)
	assert.Empty(t, report.Candidates)
	assert.Empty(t, report.Stored)
	assert.Zero(t, repo.inserts)

	_, err = s.pipeline(&scriptedAI{}).Capture(context.Background(), "", "hello")
	require.ErrorIs(t, err, core.ErrInvalidMemoryInput)
}

func TestPipeline_Recall(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	p := s.pipeline(&scriptedAI{})

	assert.Equal(t, "", p.Recall(ctx, "u1", "anything", 3))

	_, err := s.store.AddMemory(ctx, "u1", "User prefers green tea", core.CategoryPreferences)
	require.NoError(t, err)

	block := p.Recall(ctx, "u1", "what tea does the user like", 3)
	assert.Contains(t, block, "### Relevant Knowledge")
	assert.Contains(t, block, "- [preferences] User prefers green tea")

	broken := newStack(t, &flakyRepo{matchErr: errors.New("down")}).pipeline(&scriptedAI{})
	assert.Equal(t, "", broken.Recall(ctx, "u1", "tea", 3))
}

func TestDeduplicator(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	d := NewDeduplicator(s.store, s.searcher, 0.99)

	_, err := d.AddMemory(ctx, "u1", "User is vegetarian", core.CategoryPreferences)
	require.NoError(t, err)

	_, err = d.AddMemory(ctx, "u1", "User is vegetarian", core.CategoryPreferences)
	require.ErrorIs(t, err, core.ErrDuplicateMemory)

	// Same text in another category is not a duplicate.
	_, err = d.AddMemory(ctx, "u1", "User is vegetarian", core.CategoryHealth)
	require.NoError(t, err)

	_, err = d.AddMemory(ctx, "u1", "", core.CategoryHealth)
	require.ErrorIs(t, err, core.ErrInvalidMemoryInput)
}

func TestPipeline_CaptureCountsDuplicates(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	p := NewPipeline(
		NewExtractor(&scriptedAI{reply: `{"memories":[{"content":"User owns a cat named Miso","category":"personal_info"}]}`}),
		NewDeduplicator(s.store, s.searcher, 0.99),
		s.searcher,
		1,
	)

	first, err := p.Capture(ctx, "u1", "My cat is called Miso")
	require.NoError(t, err)
	assert.Len(t, first.Stored, 1)

	second, err := p.Capture(ctx, "u1", "Did I mention my cat Miso?")
	require.NoError(t, err)
	assert.Empty(t, second.Stored)
	assert.Equal(t, 1, second.Duplicates)
}

func TestPipeline_CaptureDedupsWithinOneMessage(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	reply := `{"memories":[
		{"content":"User is allergic to peanuts","category":"health"},
		{"content":"User is allergic to peanuts","category":"health"},
		{"content":"User is allergic to peanuts","category":"health"},
		{"content":"User is allergic to peanuts","category":"health"}
	]}`
	p := NewPipeline(
		NewExtractor(&scriptedAI{reply: reply}),
		NewDeduplicator(s.store, s.searcher, 0.99),
		s.searcher,
		4,
	)

	report, err := p.Capture(ctx, "u1", "I'm allergic to peanuts, seriously, peanuts")
	require.NoError(t, err)
	assert.Len(t, report.Stored, 1)
	assert.Equal(t, 3, report.Duplicates)

	results, err := s.searcher.SearchMemories(ctx, "u1", "peanuts", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFormatKnowledge(t *testing.T) {
	assert.Equal(t, "", FormatKnowledge(nil))

	out := FormatKnowledge([]core.SearchResult{
		{Content: "User lives in Oslo", Category: core.CategoryPersonalInfo},
		{Content: "User is a pilot", Category: core.CategoryWork},
	})
	assert.Equal(t, "\n### Relevant Knowledge\n- [personal_info] User lives in Oslo\n- [work] User is a pilot\n", out)
}
