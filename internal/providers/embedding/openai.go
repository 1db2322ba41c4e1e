package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

const defaultTimeout = 60 * time.Second

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	// Dimensions is sent as the "dimensions" request field when > 0.
	Dimensions int
	MaxTokens  int
}

// OpenAI talks to any server exposing the OpenAI /v1/embeddings endpoint.
type OpenAI struct {
	client  *http.Client
	cfg     OpenAIConfig
	limiter TokenLimiter
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenAI{
		client:  &http.Client{Timeout: defaultTimeout},
		cfg:     cfg,
		limiter: TokenLimiter{MaxTokens: cfg.MaxTokens},
	}
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (o *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	input := make([]string, len(texts))
	for i, text := range texts {
		cut, truncated, err := o.limiter.Truncate(text)
		if err != nil {
			return nil, err
		}
		if truncated {
			if ev := log.FromCtx(ctx).Debug(); ev.Enabled() {
				tokens, _ := o.limiter.Count(text)
				ev.Int("index", i).Int("tokens", tokens).Int("max_tokens", o.cfg.MaxTokens).Msg("embedding input truncated")
			}
		}
		input[i] = cut
	}

	payload := map[string]any{
		"model": o.cfg.Model,
		"input": input,
	}
	if o.cfg.Dimensions > 0 {
		payload["dimensions"] = o.cfg.Dimensions
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/v1/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.AppUserAgent)
	if o.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d inputs", len(result.Data), len(texts))
	}

	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})

	vecs := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}
