package tts

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/lokutor-ai/voxcore/pkg/orchestrator"
	openai "github.com/sashabaranov/go-openai"
)

var voiceMap = map[orchestrator.Voice]openai.SpeechVoice{
	orchestrator.VoiceF1: openai.VoiceAlloy,
	orchestrator.VoiceF2: openai.VoiceNova,
	orchestrator.VoiceF3: openai.VoiceShimmer,
	orchestrator.VoiceM1: openai.VoiceEcho,
	orchestrator.VoiceM2: openai.VoiceOnyx,
	orchestrator.VoiceM3: openai.VoiceFable,
}

// OpenAITTS synthesizes speech via go-openai's audio speech endpoint,
// returning MP3-encoded audio — the teacher's only existing TTS
// collaborator (Lokutor) streams raw PCM/WAV, so this is the module's one
// MP3-producing provider, in the format MP3StreamingDecode accepts.
type OpenAITTS struct {
	apiKey string
	url    string
	model  string

	mu        sync.Mutex
	abortedCh chan struct{}
}

func NewOpenAITTS(apiKey string, model string) *OpenAITTS {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	return &OpenAITTS{apiKey: apiKey, model: model}
}

func (t *OpenAITTS) client() *openai.Client {
	if t.url != "" {
		cfg := openai.DefaultConfig(t.apiKey)
		cfg.BaseURL = t.url
		return openai.NewClientWithConfig(cfg)
	}
	return openai.NewClient(t.apiKey)
}

func (t *OpenAITTS) Name() string {
	return "openai-tts"
}

func (t *OpenAITTS) voiceFor(voice orchestrator.Voice) openai.SpeechVoice {
	if v, ok := voiceMap[voice]; ok {
		return v
	}
	return openai.VoiceAlloy
}

func (t *OpenAITTS) Synthesize(ctx context.Context, text string, voice orchestrator.Voice, lang orchestrator.Language) ([]byte, error) {
	var mp3Data []byte
	err := t.StreamSynthesize(ctx, text, voice, lang, func(chunk []byte) error {
		mp3Data = append(mp3Data, chunk...)
		return nil
	})
	return mp3Data, err
}

func (t *OpenAITTS) StreamSynthesize(ctx context.Context, text string, voice orchestrator.Voice, lang orchestrator.Language, onChunk func([]byte) error) error {
	abortCh := t.resetAbort()

	resp, err := t.client().CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(t.model),
		Input:          text,
		Voice:          t.voiceFor(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("openai tts error: %w", err)
	}
	defer resp.Close()

	buf := make([]byte, 4096)
	for {
		select {
		case <-abortCh:
			return fmt.Errorf("openai tts aborted")
		default:
		}

		n, readErr := resp.Read(buf)
		if n > 0 {
			if cbErr := onChunk(buf[:n]); cbErr != nil {
				return cbErr
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return nil
			}
			return readErr
		}
	}
}

// resetAbort starts a fresh abort channel for a new synthesis call and
// returns it for the read loop to select on.
func (t *OpenAITTS) resetAbort() chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.abortedCh = make(chan struct{})
	return t.abortedCh
}

// Abort signals any in-flight StreamSynthesize call to stop reading further
// chunks — there is no server-side cancel for the speech endpoint, so this
// only short-circuits the local read loop on the next buffer iteration.
func (t *OpenAITTS) Abort() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.abortedCh == nil {
		return nil
	}
	select {
	case <-t.abortedCh:
	default:
		close(t.abortedCh)
	}
	return nil
}
