package llm

type Ollama struct {
	*OpenAICompatible
}

// NewOllama talks to Ollama's OpenAI-compatible endpoint. The key is only
// sent when set, for instances behind an authenticating proxy.
func NewOllama(baseURL, apiKey, model string) *Ollama {
	return &Ollama{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:       "ollama",
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			JSONMode:   true,
		}),
	}
}
