package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// Extractor turns a free-text message into candidate memories. It never
// touches storage.
type Extractor struct {
	ai core.AIProvider
}

func NewExtractor(ai core.AIProvider) *Extractor {
	return &Extractor{ai: ai}
}

// Extract returns core.ErrGeneration when the provider fails. Output that
// cannot be parsed yields an empty result and no error.
func (e *Extractor) Extract(ctx context.Context, message string) (core.ExtractionResult, error) {
	logger := log.FromCtx(ctx)

	if strings.TrimSpace(message) == "" {
		return core.NewExtractionResult(nil), nil
	}

	resp, err := e.ai.Chat(ctx, []core.Message{
		{Role: core.RoleSystem, Content: buildExtractionInstruction()},
		{Role: core.RoleUser, Content: message},
	})
	if err != nil {
		return core.ExtractionResult{}, fmt.Errorf("%w: %w", core.ErrGeneration, err)
	}

	result, err := parseExtractionResponse(ctx, resp.Content)
	if err != nil {
		logger.Warn().Err(err).Int("response_len", len(resp.Content)).Msg("unparseable extraction output")
		logger.Debug().Str("content", resp.Content).Msg("raw extraction output")
		return core.NewExtractionResult(nil), nil
	}

	logger.Debug().Int("count", len(result.Memories)).Msg("memories extracted")
	return result, nil
}
