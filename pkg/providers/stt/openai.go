package stt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/lokutor-ai/voxcore/pkg/audio"
	"github.com/lokutor-ai/voxcore/pkg/orchestrator"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAISTT wraps go-openai's audio transcription call in place of a
// hand-rolled multipart POST, grounded the same way as the OpenAI LLM
// provider: go-openai covers both chat and audio transcription from one
// client.
type OpenAISTT struct {
	apiKey     string
	url        string
	model      string
	sampleRate int
}

func NewOpenAISTT(apiKey string, model string) *OpenAISTT {
	if model == "" {
		model = "whisper-1"
	}
	return &OpenAISTT{
		apiKey:     apiKey,
		model:      model,
		sampleRate: 44100,
	}
}

func (s *OpenAISTT) SetSampleRate(rate int) {
	s.sampleRate = rate
}

func (s *OpenAISTT) Name() string {
	return "openai_stt"
}

func (s *OpenAISTT) client() *openai.Client {
	if s.url != "" {
		cfg := openai.DefaultConfig(s.apiKey)
		cfg.BaseURL = s.url
		return openai.NewClientWithConfig(cfg)
	}
	return openai.NewClient(s.apiKey)
}

func (s *OpenAISTT) Transcribe(ctx context.Context, audioPCM []byte, lang orchestrator.Language) (string, error) {
	wavData := audio.NewWavBuffer(audioPCM, s.sampleRate)

	req := openai.AudioRequest{
		Model:    s.model,
		Reader:   bytes.NewReader(wavData),
		FilePath: "audio.wav",
	}
	if lang != "" {
		req.Language = string(lang)
	}

	resp, err := s.client().CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai stt error: %w", err)
	}

	return resp.Text, nil
}
