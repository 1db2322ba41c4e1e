package embedding

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const tokenEncoding = "cl100k_base"

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding(tokenEncoding)
	})
	return tk, tkErr
}

// TokenLimiter cuts text down to a token budget before it reaches the
// embedding endpoint. A zero budget disables it.
type TokenLimiter struct {
	MaxTokens int
}

func (l TokenLimiter) Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := getTokenizer()
	if err != nil {
		return 0, fmt.Errorf("load tokenizer: %w", err)
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate returns text unchanged when it fits, otherwise the decoded
// prefix of its first MaxTokens tokens.
func (l TokenLimiter) Truncate(text string) (string, bool, error) {
	if l.MaxTokens <= 0 || text == "" {
		return text, false, nil
	}
	// Below this many bytes the text cannot exceed the budget.
	if len(text) <= l.MaxTokens {
		return text, false, nil
	}

	enc, err := getTokenizer()
	if err != nil {
		return "", false, fmt.Errorf("load tokenizer: %w", err)
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= l.MaxTokens {
		return text, false, nil
	}
	return enc.Decode(tokens[:l.MaxTokens]), true, nil
}
