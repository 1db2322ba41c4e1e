package memory

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

var errNoJSONObject = errors.New("no JSON object found in response")

type rawExtraction struct {
	Memories []struct {
		Content  string `json:"content"`
		Category string `json:"category"`
	} `json:"memories"`
	HasMemories      *bool `json:"hasMemories"`
	HasMemoriesSnake *bool `json:"has_memories"`
}

// maxDecodeAttempts bounds how many '{' offsets are tried on chatty replies.
const maxDecodeAttempts = 32

// parseExtractionResponse decodes the generator output. Candidates with a
// blank content or an unknown category are dropped one by one.
func parseExtractionResponse(ctx context.Context, content string) (core.ExtractionResult, error) {
	body := strings.TrimSpace(content)
	if !strings.HasPrefix(body, "{") {
		body = unwrapCodeFence(body)
	}

	var raw rawExtraction
	if err := decodeFirstObject(body, &raw); err != nil {
		return core.ExtractionResult{}, err
	}

	logger := log.FromCtx(ctx)
	candidates := make([]core.Candidate, 0, len(raw.Memories))

	for _, m := range raw.Memories {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			logger.Warn().Str("category", m.Category).Msg("dropping extracted memory with empty content")
			continue
		}
		cat, err := core.ParseCategory(m.Category)
		if err != nil {
			logger.Warn().Str("category", m.Category).Msg("dropping extracted memory with unknown category")
			continue
		}
		candidates = append(candidates, core.Candidate{Content: text, Category: cat})
	}

	return core.NewExtractionResult(candidates), nil
}

// unwrapCodeFence returns everything after the opening ``` line, or the
// input unchanged when there is no fence. The closing fence is left for the
// decoder to ignore, so fences quoted inside JSON strings survive.
func unwrapCodeFence(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return content
	}

	body := content[start+3:]
	// Drop the info string ("json") up to the end of the fence line.
	if nl := strings.IndexByte(body, '\n'); nl != -1 && !strings.Contains(body[:nl], "{") {
		body = body[nl+1:]
	}
	return body
}

// decodeFirstObject decodes the first complete JSON object in s into v.
// Anything after the object is ignored; a '{' that does not open a valid
// object is skipped.
func decodeFirstObject(s string, v any) error {
	err := errNoJSONObject
	offset := 0

	for attempt := 0; attempt < maxDecodeAttempts; attempt++ {
		i := strings.IndexByte(s[offset:], '{')
		if i == -1 {
			return err
		}
		offset += i

		var obj json.RawMessage
		if err = json.NewDecoder(strings.NewReader(s[offset:])).Decode(&obj); err == nil {
			return json.Unmarshal(obj, v)
		}
		offset++
	}
	return err
}
