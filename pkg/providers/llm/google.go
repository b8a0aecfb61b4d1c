package llm

import (
	"context"
	"fmt"

	"github.com/lokutor-ai/voxcore/pkg/orchestrator"
	"google.golang.org/genai"
)

// GoogleLLM wraps google.golang.org/genai's Gemini Developer API client in
// place of a hand-rolled REST POST, so the Google collaborator exercises a
// real SDK the same way the other two LLM providers do.
type GoogleLLM struct {
	apiKey string
	url    string
	model  string
}

func NewGoogleLLM(apiKey string, model string) *GoogleLLM {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GoogleLLM{
		apiKey: apiKey,
		model:  model,
	}
}

func (l *GoogleLLM) client(ctx context.Context) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  l.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if l.url != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: l.url}
	}
	return genai.NewClient(ctx, cfg)
}

func (l *GoogleLLM) Complete(ctx context.Context, messages []orchestrator.Message) (string, error) {
	client, err := l.client(ctx)
	if err != nil {
		return "", fmt.Errorf("google llm client error: %w", err)
	}

	var contents []*genai.Content
	var systemInstruction *genai.Content
	for _, m := range messages {
		switch m.Role {
		case "system":
			systemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	var genConfig *genai.GenerateContentConfig
	if systemInstruction != nil {
		genConfig = &genai.GenerateContentConfig{SystemInstruction: systemInstruction}
	}

	resp, err := client.Models.GenerateContent(ctx, l.model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("google llm error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no response from google llm")
	}
	return text, nil
}

func (l *GoogleLLM) Name() string {
	return "google-llm"
}
