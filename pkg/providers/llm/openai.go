package llm

import (
	"context"
	"fmt"

	"github.com/lokutor-ai/voxcore/pkg/orchestrator"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAILLM wraps github.com/sashabaranov/go-openai's chat completions
// client, grounded on lookatitude-beluga-ai's direct use of the same client
// package for its OpenAI chat collaborator.
type OpenAILLM struct {
	apiKey string
	url    string
	model  string
}

func NewOpenAILLM(apiKey string, model string) *OpenAILLM {
	if model == "" {
		model = "gpt-4o"
	}
	return &OpenAILLM{
		apiKey: apiKey,
		model:  model,
	}
}

func (l *OpenAILLM) client() *openai.Client {
	if l.url != "" {
		cfg := openai.DefaultConfig(l.apiKey)
		cfg.BaseURL = l.url
		return openai.NewClientWithConfig(cfg)
	}
	return openai.NewClient(l.apiKey)
}

func (l *OpenAILLM) Complete(ctx context.Context, messages []orchestrator.Message) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := l.client().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    l.model,
		Messages: chatMessages,
	})
	if err != nil {
		return "", fmt.Errorf("openai llm error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from openai")
	}

	return resp.Choices[0].Message.Content, nil
}

func (l *OpenAILLM) Name() string {
	return "openai-llm"
}
