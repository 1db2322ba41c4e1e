package llm

import "github.com/sandevgo/recall/internal/core"

const openRouterBaseURL = "https://openrouter.ai/api"

type OpenRouter struct {
	*OpenAICompatible
}

// NewOpenRouter leaves JSON mode off: many routed models reject
// response_format, and the extractor tolerates prose around the object.
func NewOpenRouter(apiKey, model string) *OpenRouter {
	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:       "openrouter",
			BaseURL:    openRouterBaseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			// Attribution headers shown on openrouter.ai.
			ExtraHeaders: map[string]string{
				"HTTP-Referer": core.AppRepositoryURL,
				"X-Title":      core.AppName,
			},
		}),
	}
}
