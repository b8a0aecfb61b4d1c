package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/lokutor-ai/voxcore/pkg/orchestrator"
)

// AnthropicLLM wraps the real anthropic-sdk-go client rather than a
// hand-rolled HTTP POST, grounded on lookatitude-beluga-ai's
// pkg/llms/anthropic/anthropic.go — the only file anywhere in the example
// pack that directly imports anthropic-sdk-go rather than listing it as an
// unused indirect dependency.
type AnthropicLLM struct {
	apiKey string
	url    string
	model  string
}

func NewAnthropicLLM(apiKey string, model string) *AnthropicLLM {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	return &AnthropicLLM{
		apiKey: apiKey,
		model:  model,
	}
}

func (l *AnthropicLLM) client() anthropic.Client {
	opts := []option.RequestOption{option.WithAPIKey(l.apiKey)}
	if l.url != "" {
		opts = append(opts, option.WithBaseURL(l.url))
	}
	return anthropic.NewClient(opts...)
}

func (l *AnthropicLLM) Complete(ctx context.Context, messages []orchestrator.Message) (string, error) {
	var system string
	var anthropicMessages []anthropic.BetaMessageParam

	for _, msg := range messages {
		if msg.Role == "system" {
			system = msg.Content
			continue
		}
		role := anthropic.BetaMessageParamRoleUser
		if msg.Role == "assistant" {
			role = anthropic.BetaMessageParamRoleAssistant
		}
		anthropicMessages = append(anthropicMessages, anthropic.BetaMessageParam{
			Role: role,
			Content: []anthropic.BetaContentBlockParamUnion{
				{OfText: &anthropic.BetaTextBlockParam{Text: msg.Content}},
			},
		})
	}

	req := anthropic.BetaMessageNewParams{
		Model:     anthropic.Model(l.model),
		MaxTokens: 1024,
		Messages:  anthropicMessages,
	}
	if system != "" {
		req.System = []anthropic.BetaTextBlockParam{{Text: system}}
	}

	client := l.client()
	msg, err := client.Beta.Messages.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic llm error: %w", err)
	}

	for _, block := range msg.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content returned from anthropic")
}

func (l *AnthropicLLM) Name() string {
	return "anthropic-llm"
}
