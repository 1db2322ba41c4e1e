package llm

import "strings"

// CustomOpenAI targets a self-hosted OpenAI-compatible server (vLLM,
// llama.cpp, LM Studio). JSON mode stays off since support varies.
type CustomOpenAI struct {
	*OpenAICompatible
}

func NewCustomOpenAI(baseURL, apiKey, model string) *CustomOpenAI {
	// Accept both "http://host:8080" and "http://host:8080/v1".
	baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1")

	return &CustomOpenAI{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:       "custom",
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
