package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type fakeTTS struct {
	chunks [][]byte
	err    error
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string, voice Voice, lang Language) ([]byte, error) {
	var all []byte
	for _, c := range f.chunks {
		all = append(all, c...)
	}
	return all, f.err
}

func (f *fakeTTS) StreamSynthesize(ctx context.Context, text string, voice Voice, lang Language, onChunk func([]byte) error) error {
	if f.err != nil {
		return f.err
	}
	for _, c := range f.chunks {
		if err := onChunk(c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTTS) Name() string { return "fake-tts" }
func (f *fakeTTS) Abort() error { return nil }

func TestSynthesizer_CreateSpeechChunksAndMarksLast(t *testing.T) {
	tts := &fakeTTS{chunks: [][]byte{
		make([]byte, 10),
		make([]byte, 10),
		make([]byte, 3),
	}}
	s := NewSynthesizer(tts, TranscriberConfig{Encoding: EncodingLinear16, SampleRate: 8000}, false)

	var results []ChunkResult
	err := s.CreateSpeech(context.Background(), "hello", VoiceF1, LanguageEn, 1000, func(cr ChunkResult) error {
		results = append(results, cr)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// chunkSize = 8000 * 2 * 1000 / 1000 = 16000 bytes, so all 23 bytes come
	// back as a single final (short) chunk.
	if len(results) != 1 || !results[0].IsLast {
		t.Fatalf("expected a single final chunk, got %+v", results)
	}
	if len(results[0].PCM) != 23 {
		t.Fatalf("expected all 23 bytes in the final chunk, got %d", len(results[0].PCM))
	}
}

func TestSynthesizer_CreateSpeechPropagatesProviderError(t *testing.T) {
	tts := &fakeTTS{err: errors.New("boom")}
	s := NewSynthesizer(tts, TranscriberConfig{Encoding: EncodingLinear16, SampleRate: 8000}, false)

	err := s.CreateSpeech(context.Background(), "hello", VoiceF1, LanguageEn, 1000, func(cr ChunkResult) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected the provider error to propagate")
	}
}

func TestSynthesizer_ChunkSizeMulawLocksTo8kHzOneBytePerSample(t *testing.T) {
	s := NewSynthesizer(nil, TranscriberConfig{Encoding: EncodingMulaw, SampleRate: 44100}, false)
	if got := s.chunkSize(1000); got != 8000 {
		t.Fatalf("expected mulaw chunk size to lock to 8000 bytes/sec regardless of configured sample rate, got %d", got)
	}
}

func TestSynthesizer_GetTypingNoiseFillerAudio(t *testing.T) {
	s := NewSynthesizer(nil, TranscriberConfig{}, false)
	if s.GetTypingNoiseFillerAudio() != nil {
		t.Fatal("expected nil filler audio before any is configured")
	}
	s.SetFillerAudios([]PreRenderedAudio{{Phrase: "um", PCM: []byte{1, 2, 3}}})
	got := s.GetTypingNoiseFillerAudio()
	if got == nil || got.Phrase != "um" {
		t.Fatalf("unexpected filler audio: %+v", got)
	}
}

func TestMessageUpToLinear(t *testing.T) {
	text := "hello world this is a test"
	// 100 bytes total at 10 bytes/sec => 10 seconds total; 5 seconds played
	// should yield roughly half the text.
	got := MessageUpToLinear(text, 100, 10, 5)
	if len(got) == 0 || len(got) >= len(text) {
		t.Fatalf("expected a proper prefix of the text, got %q", got)
	}

	if got := MessageUpToLinear(text, 100, 10, 0); got != "" {
		t.Fatalf("expected no text heard at 0 seconds played, got %q", got)
	}

	if got := MessageUpToLinear(text, 100, 10, 100); got != text {
		t.Fatalf("expected the full text once secondsPlayed exceeds total duration, got %q", got)
	}
}

func TestMessageUpToWPM(t *testing.T) {
	text := "one two three four five six"
	got := MessageUpToWPM(text, 60, 3) // 1 word/sec * 3s = 3 words
	if got != "one two three" {
		t.Fatalf("expected first 3 words, got %q", got)
	}

	if got := MessageUpToWPM(text, 60, 0); got != "" {
		t.Fatalf("expected no words heard at 0 seconds, got %q", got)
	}

	if got := MessageUpToWPM(text, 60, 100); got != text {
		t.Fatalf("expected the full text once seconds played exceeds word count, got %q", got)
	}
}

func TestMP3StreamingDecode_NonMP3InputDoesNotPanic(t *testing.T) {
	var sawLast bool
	err := MP3StreamingDecode(context.Background(), bytes.NewReader([]byte("not an mp3 stream at all")), func(cr ChunkResult) error {
		if cr.IsLast {
			sawLast = true
		}
		return nil
	})
	// go-mp3 either rejects the header outright or finds no valid frames and
	// drains to EOF; either way no audio chunk should be misreported as
	// non-final, and the call must return without panicking.
	if err == nil && !sawLast {
		t.Fatal("expected either a decode error or a final chunk signal for non-MP3 input")
	}
}
