package stt

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/transcribestreaming"
	"github.com/aws/aws-sdk-go-v2/service/transcribestreaming/types"
	"github.com/lokutor-ai/voxcore/pkg/orchestrator"
)

// AWSTranscribeStreamingSTT is a StreamingSTTProvider backed by Amazon
// Transcribe's bidirectional streaming API, grounded on eakeur-gochannels'
// go.mod, the sole repo in the example pack with a direct dependency on
// aws-sdk-go-v2/service/transcribestreaming.
type AWSTranscribeStreamingSTT struct {
	client     *transcribestreaming.Client
	sampleRate int

	mu sync.Mutex
}

func NewAWSTranscribeStreamingSTT(ctx context.Context, region string, sampleRate int) (*AWSTranscribeStreamingSTT, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &AWSTranscribeStreamingSTT{
		client:     transcribestreaming.NewFromConfig(cfg),
		sampleRate: sampleRate,
	}, nil
}

func (s *AWSTranscribeStreamingSTT) Name() string {
	return "aws-transcribe-streaming-stt"
}

// languageCode maps our internal Language enum to the subset of Transcribe
// streaming language codes the pipeline actually offers; anything
// unrecognized falls back to US English rather than failing the call.
func languageCode(lang orchestrator.Language) types.LanguageCode {
	switch lang {
	case orchestrator.LanguageEs:
		return types.LanguageCodeEsUs
	case orchestrator.LanguageFr:
		return types.LanguageCodeFrFr
	case orchestrator.LanguageDe:
		return types.LanguageCodeDeDe
	default:
		return types.LanguageCodeEnUs
	}
}

// Transcribe does one-shot transcription of a complete buffer by opening
// and immediately draining a streaming session — used for the non-streaming
// STTProvider contract (batch pipeline fallback when no streaming turn is
// in progress).
func (s *AWSTranscribeStreamingSTT) Transcribe(ctx context.Context, audioPCM []byte, lang orchestrator.Language) (string, error) {
	var final string
	var mu sync.Mutex

	send, err := s.StreamTranscribe(ctx, lang, func(transcript string, isFinal bool) error {
		if isFinal {
			mu.Lock()
			final = transcript
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	send <- audioPCM
	close(send)

	mu.Lock()
	defer mu.Unlock()
	return final, nil
}

// StreamTranscribe opens a streaming transcription session and returns a
// channel the caller writes raw PCM chunks into; onTranscript is invoked
// for every partial/final result the service produces.
func (s *AWSTranscribeStreamingSTT) StreamTranscribe(ctx context.Context, lang orchestrator.Language, onTranscript func(transcript string, isFinal bool) error) (chan<- []byte, error) {
	stream, err := s.client.StartStreamTranscription(ctx, &transcribestreaming.StartStreamTranscriptionInput{
		LanguageCode:         languageCode(lang),
		MediaEncoding:        types.MediaEncodingPcm,
		MediaSampleRateHertz: aws.Int32(int32(s.sampleRate)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start aws transcribe stream: %w", err)
	}

	input := make(chan []byte, 32)

	go func() {
		writer := stream.GetStream().Writer
		for chunk := range input {
			_ = writer.Send(ctx, &types.AudioStreamMemberAudioEvent{
				Value: types.AudioEvent{AudioChunk: chunk},
			})
		}
		writer.Close()
	}()

	go func() {
		eventStream := stream.GetStream()
		defer eventStream.Close()
		for event := range eventStream.Events() {
			transcriptEvent, ok := event.(*types.TranscriptResultStreamMemberTranscriptEvent)
			if !ok {
				continue
			}
			for _, result := range transcriptEvent.Value.Transcript.Results {
				if len(result.Alternatives) == 0 {
					continue
				}
				text := aws.ToString(result.Alternatives[0].Transcript)
				isFinal := !aws.ToBool(result.IsPartial)
				if err := onTranscript(text, isFinal); err != nil {
					return
				}
			}
		}
	}()

	return input, nil
}
