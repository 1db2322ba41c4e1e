package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/pkg/log"
)

const searchPrefix = "/search "

// ReadLine is an interactive loop: every line is captured into memory, and
// lines starting with /search query it instead.
type ReadLine struct {
	pipeline *memory.Pipeline
	owner    string
	limit    int
	rl       *readline.Instance
}

func NewReadLine(pipeline *memory.Pipeline, cfg *config.AppConfig, owner string, limit int) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     cfg.GetHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		pipeline: pipeline,
		owner:    owner,
		limit:    limit,
		rl:       rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	ctx, logger := log.WithComponent(ctx, "chat")
	logger.Info().Str("owner", r.owner).Msg("recall chat started. Type '/search <query>' to search, 'exit' to quit.")

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil // Exit on Ctrl+C
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		HandleLine(ctx, r.rl.Stdout(), r.pipeline, r.owner, r.limit, line)
	}
}

// HandleLine processes one line of chat input and writes the outcome to w.
func HandleLine(ctx context.Context, w io.Writer, pipeline *memory.Pipeline, owner string, limit int, line string) {
	if query, ok := strings.CutPrefix(line, searchPrefix); ok {
		results, err := pipeline.Searcher().SearchMemories(ctx, owner, query, limit)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return
		}
		if len(results) == 0 {
			fmt.Fprintln(w, "No memories found.")
			return
		}
		for _, res := range results {
			fmt.Fprintf(w, "%.3f  [%s] %s\n", res.Score, res.Category, res.Content)
		}
		return
	}

	if block := pipeline.Recall(ctx, owner, line, limit); block != "" {
		fmt.Fprintf(w, "\033[38;5;240m%s\033[0m\n", strings.TrimSpace(block))
	}

	report, err := pipeline.Capture(ctx, owner, line)
	for _, mem := range report.Stored {
		fmt.Fprintf(w, "[Remembered] [%s] %s\n", mem.Category, mem.Content)
	}
	if report.Duplicates > 0 {
		fmt.Fprintf(w, "[Skipped] %d already known\n", report.Duplicates)
	}
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("capture failed")
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}
