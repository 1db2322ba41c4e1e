package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sandevgo/recall/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	name         string
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
	jsonMode     bool
}

type OpenAICompatibleConfig struct {
	// Name labels errors, e.g. "openrouter".
	Name         string
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
	// JSONMode asks the server for a JSON object response. Not every
	// OpenAI-compatible server honours it, so it is off unless set.
	JSONMode bool
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		name:         cfg.Name,
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
		jsonMode:     cfg.JSONMode,
	}
}

func (o *OpenAICompatible) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": history,
	}
	if o.jsonMode {
		payload["response_format"] = map[string]string{"type": "json_object"}
	}

	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
	if err != nil {
		return core.Message{}, err
	}
	defer resp.Body.Close()

	return parseOpenAIResponse(o.name, resp)
}

func parseOpenAIResponse(provider string, resp *http.Response) (core.Message, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Message{}, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return core.Message{}, &StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: string(data)}
	}

	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Message{}, fmt.Errorf("%s: decode: %w", provider, err)
	}
	if len(result.Choices) == 0 {
		return core.Message{}, fmt.Errorf("%s: empty choices: %s", provider, string(data))
	}
	return result.Choices[0].Message, nil
}
