package orchestrator

import (
	"bytes"
	"context"
	"testing"
)

func TestSilentChunk_PreservesByteLength(t *testing.T) {
	chunk := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	linear16 := silentChunk(chunk, EncodingLinear16)
	if len(linear16) != len(chunk) {
		t.Fatalf("expected linear16 silent chunk to match input length %d, got %d", len(chunk), len(linear16))
	}
	if !bytes.Equal(linear16, make([]byte, len(chunk))) {
		t.Fatal("expected linear16 silence to be a zero fill")
	}

	mulaw := silentChunk(chunk, EncodingMulaw)
	if len(mulaw) != len(chunk) {
		t.Fatalf("expected mulaw silent chunk to match input length %d, got %d", len(chunk), len(mulaw))
	}
	for _, b := range mulaw {
		if b != mulawSilence {
			t.Fatalf("expected every mulaw silence byte to be 0x%x, got 0x%x", mulawSilence, b)
		}
	}
}

func TestTranscriber_SendAudioSubstitutesSilenceWhenMuted(t *testing.T) {
	var sent []byte
	tr := NewTranscriber(TranscriberConfig{Encoding: EncodingMulaw, SampleRate: 8000}, func(ctx context.Context, chunk []byte) error {
		sent = chunk
		return nil
	})

	chunk := []byte{9, 9, 9, 9}
	tr.Mute()
	if err := tr.SendAudio(context.Background(), chunk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sent) != len(chunk) {
		t.Fatalf("expected substituted silence to preserve byte length, got %d want %d", len(sent), len(chunk))
	}
	for _, b := range sent {
		if b != mulawSilence {
			t.Fatalf("expected muted send to substitute mulaw silence, got 0x%x", b)
		}
	}

	tr.Unmute()
	if err := tr.SendAudio(context.Background(), chunk); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(sent, chunk) {
		t.Fatal("expected unmuted send to pass the original chunk through unchanged")
	}
}

func TestTranscriber_MarkReadyInitializesSideModulesAsync(t *testing.T) {
	tr := NewTranscriber(TranscriberConfig{Encoding: EncodingLinear16, SampleRate: 16000}, func(ctx context.Context, chunk []byte) error { return nil })

	initialized := make(chan struct{})
	tr.MarkReady(context.Background(), func(ctx context.Context) {
		close(initialized)
	})

	<-tr.Ready()
	<-initialized

	if !tr.IsReady() {
		t.Fatal("expected transcriber to report ready after MarkReady completes")
	}
}
