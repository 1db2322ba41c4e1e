package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/llm"
	"github.com/sandevgo/recall/internal/service/memory"
	"github.com/sandevgo/recall/pkg/log"
	"github.com/sandevgo/recall/pkg/retry"
)

var (
	addCategory    string
	searchCategory string
	searchLimit    int
)

var extractCmd = &cobra.Command{
	Use:   "extract <message>",
	Short: "Print the facts the model extracts from a message, without storing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		return withApp(os.Stderr, func(ctx context.Context, app *App) error {
			result, err := app.Pipeline.Extractor().Extract(ctx, message)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		})
	},
}

var rememberCmd = &cobra.Command{
	Use:   "remember <message>",
	Short: "Extract facts from a message and store them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		return withApp(os.Stderr, func(ctx context.Context, app *App) error {
			report, err := capture(ctx, app, message)
			if printErr := printJSON(cmd.OutOrStdout(), map[string]any{
				"candidates": report.Candidates,
				"stored":     report.Stored,
				"duplicates": report.Duplicates,
				"failed":     report.Failed,
			}); printErr != nil {
				return printErr
			}
			return err
		})
	},
}

// capture retries only transient generation failures. Once a fact has been
// written, repeating the capture would store it twice.
func capture(ctx context.Context, app *App, message string) (memory.CaptureReport, error) {
	logger := log.FromCtx(ctx)

	cfg := retry.NewDefaultConfig()
	cfg.MaxRetries = app.Memory.MaxRetries
	retrier := retry.NewRetrier(cfg)
	retrier.OnRetry = func(attempt int, err error) {
		logger.Warn().Err(err).Int("attempt", attempt).Msg("capture failed, retrying")
	}

	var report memory.CaptureReport
	err := retrier.Do(ctx, func() error {
		var err error
		report, err = app.Pipeline.Capture(ctx, app.Owner(), message)
		if err != nil && !retryableCapture(err) {
			return retry.Permanent(err)
		}
		return err
	})
	return report, err
}

func retryableCapture(err error) bool {
	return errors.Is(err, core.ErrGeneration) && llm.IsRetryable(err)
}

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Store a single fact directly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		category, err := core.ParseCategoryInput(addCategory)
		if err != nil {
			return err
		}

		return withApp(os.Stderr, func(ctx context.Context, app *App) error {
			mem, err := app.Pipeline.Adder().AddMemory(ctx, app.Owner(), content, category)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mem)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the stored facts most similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		var opts []memory.SearchOption
		if searchCategory != "" {
			category, err := core.ParseCategoryInput(searchCategory)
			if err != nil {
				return err
			}
			opts = append(opts, memory.WithCategory(category))
		}

		return withApp(os.Stderr, func(ctx context.Context, app *App) error {
			limit := searchLimit
			if limit <= 0 {
				limit = app.Memory.SearchLimit
			}
			results, err := app.Pipeline.Searcher().SearchMemories(ctx, app.Owner(), query, limit, opts...)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		})
	},
}

func printResults(w io.Writer, results []core.SearchResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no memories found")
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%.3f  [%s] %s\n", r.Score, r.Category, r.Content); err != nil {
			return err
		}
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", string(core.CategoryOther), "memory category")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "only return memories of this category")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (defaults to MEMORY_SEARCH_LIMIT)")

	rootCmd.AddCommand(extractCmd, rememberCmd, addCmd, searchCmd)
}
