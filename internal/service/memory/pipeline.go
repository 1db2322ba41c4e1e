package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

const defaultCaptureConcurrency = 4

// Adder is satisfied by Store and Deduplicator.
type Adder interface {
	AddMemory(ctx context.Context, ownerID, content string, category core.Category, opts ...AddOption) (core.Memory, error)
}

// Pipeline composes extraction, storage and search for callers at the edge
// (CLI, MCP server).
type Pipeline struct {
	extractor   *Extractor
	adder       Adder
	searcher    *Searcher
	concurrency int
}

func NewPipeline(extractor *Extractor, adder Adder, searcher *Searcher, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = defaultCaptureConcurrency
	}
	return &Pipeline{
		extractor:   extractor,
		adder:       adder,
		searcher:    searcher,
		concurrency: concurrency,
	}
}

func (p *Pipeline) Extractor() *Extractor { return p.extractor }
func (p *Pipeline) Adder() Adder          { return p.adder }
func (p *Pipeline) Searcher() *Searcher   { return p.searcher }

// CaptureReport lists what happened to each extracted candidate. Stored is
// in extraction order and holds only the memories that were written.
type CaptureReport struct {
	Candidates []core.Candidate
	Stored     []core.Memory
	Duplicates int
	Failed     int
}

// Capture extracts memories from message and stores each one. Stored
// memories are kept when others fail; per-fact failures are joined into the
// returned error. A generation failure aborts before anything is stored.
func (p *Pipeline) Capture(ctx context.Context, ownerID, message string) (CaptureReport, error) {
	if strings.TrimSpace(ownerID) == "" {
		return CaptureReport{}, fmt.Errorf("%w: owner id is empty", core.ErrInvalidMemoryInput)
	}

	logger := log.FromCtx(ctx)

	extracted, err := p.extractor.Extract(ctx, message)
	if err != nil {
		return CaptureReport{}, err
	}

	report := CaptureReport{Candidates: extracted.Memories, Stored: []core.Memory{}}
	if !extracted.HasMemories {
		return report, nil
	}

	stored := make([]*core.Memory, len(extracted.Memories))
	errs := make([]error, len(extracted.Memories))

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, c := range extracted.Memories {
		g.Go(func() error {
			mem, err := p.adder.AddMemory(ctx, ownerID, c.Content, c.Category, WithSourceMessage(message))
			if err != nil {
				errs[i] = err
				return nil
			}
			stored[i] = &mem
			return nil
		})
	}
	_ = g.Wait()

	var result *multierror.Error
	for i := range extracted.Memories {
		switch {
		case stored[i] != nil:
			report.Stored = append(report.Stored, *stored[i])
		case errors.Is(errs[i], core.ErrDuplicateMemory):
			report.Duplicates++
		case errs[i] != nil:
			report.Failed++
			result = multierror.Append(result, errs[i])
		}
	}

	logger.Info().
		Int("extracted", len(extracted.Memories)).
		Int("stored", len(report.Stored)).
		Int("duplicates", report.Duplicates).
		Int("failed", report.Failed).
		Msg("capture finished")

	return report, result.ErrorOrNil()
}

// Recall renders the owner's most relevant memories as a context block for
// a prompt. Search failures are logged and yield "".
func (p *Pipeline) Recall(ctx context.Context, ownerID, query string, limit int) string {
	results, err := p.searcher.SearchMemories(ctx, ownerID, query, limit)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("memory recall failed")
		return ""
	}
	return FormatKnowledge(results)
}

// FormatKnowledge renders results as a markdown section, or "" when empty.
func FormatKnowledge(results []core.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n### Relevant Knowledge\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "- [%s] %s\n", r.Category, r.Content)
	}
	return sb.String()
}
