package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lokutor-ai/voxcore/pkg/orchestrator"
)

func TestOpenAITTS_StreamSynthesizeDeliversChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	tts := &OpenAITTS{apiKey: "test-key", url: server.URL, model: "tts-1"}

	var got []byte
	err := tts.StreamSynthesize(context.Background(), "hello", orchestrator.VoiceF1, orchestrator.LanguageEn, func(chunk []byte) error {
		got = append(got, chunk...)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "fake-mp3-bytes" {
		t.Fatalf("unexpected audio payload: %q", got)
	}
	if tts.Name() != "openai-tts" {
		t.Fatalf("unexpected name: %q", tts.Name())
	}
}

func TestOpenAITTS_VoiceForFallsBackToAlloy(t *testing.T) {
	tts := &OpenAITTS{apiKey: "test-key"}
	if tts.voiceFor(orchestrator.Voice("unmapped")) != "alloy" {
		t.Fatalf("expected unmapped voices to fall back to alloy")
	}
	if tts.voiceFor(orchestrator.VoiceM1) != "echo" {
		t.Fatalf("expected VoiceM1 to map to echo")
	}
}

func TestOpenAITTS_AbortStopsInFlightStream(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 1000; i++ {
			select {
			case <-release:
				return
			default:
			}
			w.Write([]byte{0})
			if flusher != nil {
				flusher.Flush()
			}
			time.Sleep(time.Millisecond)
		}
	}))
	defer server.Close()

	tts := &OpenAITTS{apiKey: "test-key", url: server.URL, model: "tts-1"}

	streamDone := make(chan error, 1)
	go func() {
		streamDone <- tts.StreamSynthesize(context.Background(), "hello", orchestrator.VoiceF1, orchestrator.LanguageEn, func(chunk []byte) error {
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	if err := tts.Abort(); err != nil {
		t.Fatalf("unexpected error from Abort: %v", err)
	}

	select {
	case err := <-streamDone:
		if err == nil {
			t.Fatal("expected the aborted stream to return an error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for aborted stream to return")
	}
	close(release)
}
