package llm

const openAIBaseURL = "https://api.openai.com"

type OpenAI struct {
	*OpenAICompatible
}

// NewOpenAI asks for JSON mode, which the extraction prompt relies on.
func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Name:       "openai",
			BaseURL:    openAIBaseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			JSONMode:   true,
		}),
	}
}
