package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sandevgo/recall/internal/core"
)

const anthropicMaxTokens = 2048

type Anthropic struct {
	client anthropic.Client
	model  string
}

func NewAnthropic(apiKey, model string, opts ...option.RequestOption) *Anthropic {
	// Retries belong to the caller.
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &Anthropic{
		client: anthropic.NewClient(append(base, opts...)...),
		model:  model,
	}
}

func (a *Anthropic) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, m := range history {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return core.Message{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return core.Message{Role: core.RoleAssistant, Content: text.String()}, nil
}
