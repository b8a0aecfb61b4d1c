package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
)

type AudioEncoding string

const (
	EncodingLinear16 AudioEncoding = "linear16"
	EncodingMulaw    AudioEncoding = "mulaw"
)

// mulawSilence is the G.711 mu-law codepoint for zero amplitude under the
// sign-magnitude convention mu-law uses (0xFF, not 0x00 — mu-law inverts and
// offsets the bits, so a raw zero fill decodes to a loud click, not silence).
const mulawSilence = 0xff

// InterruptModel predicts, from a short rolling window of raw audio, whether
// the speaker intends to interrupt — an optional side module, initialized
// asynchronously so it never blocks the transcriber from becoming ready.
type InterruptModel interface {
	Predict(chunk []byte) (likely bool, err error)
}

// BackTrackingModel flags whether the last few seconds of audio contain a
// user correction/backtrack ("wait, no, I meant...").
type BackTrackingModel interface {
	Detect(chunk []byte) (backtrack bool, err error)
}

// VoiceActivityDetector is a transcriber-local VAD hook, distinct from the
// stream-level VADProvider in types.go — some transcriber backends surface
// their own endpointing signal inline with the transcription stream.
type VoiceActivityDetector interface {
	Process(chunk []byte) (*VADEvent, error)
}

// ContextTracker accumulates side information (named entities, topics) used
// to bias downstream transcription/agent behavior.
type ContextTracker interface {
	Update(transcript string)
}

type TranscriberConfig struct {
	Encoding   AudioEncoding
	SampleRate int
	ChunkSize  int
}

// Transcriber is the union of the two base-transcriber shapes found in the
// original source: every optional side module is a nil-able hook on one
// type rather than two separate base classes.
type Transcriber struct {
	config TranscriberConfig

	muted atomic.Bool
	ready atomic.Bool

	InterruptModel        InterruptModel
	BackTrackingModel     BackTrackingModel
	VoiceActivityDetector VoiceActivityDetector
	ContextTracker        ContextTracker

	sendAudio func(ctx context.Context, chunk []byte) error

	readyOnce sync.Once
	readyCh   chan struct{}
}

func NewTranscriber(config TranscriberConfig, sendAudio func(ctx context.Context, chunk []byte) error) *Transcriber {
	return &Transcriber{
		config:    config,
		sendAudio: sendAudio,
		readyCh:   make(chan struct{}),
	}
}

func (t *Transcriber) Mute()   { t.muted.Store(true) }
func (t *Transcriber) Unmute() { t.muted.Store(false) }
func (t *Transcriber) IsMuted() bool { return t.muted.Load() }

// MarkReady initializes any configured side modules asynchronously and then
// signals Ready() — mirrors the original's non-blocking InterruptModel/
// ContextTracker startup so a slow side-module load never stalls the
// primary transcription path.
func (t *Transcriber) MarkReady(ctx context.Context, initSideModules func(ctx context.Context)) {
	go func() {
		if initSideModules != nil {
			initSideModules(ctx)
		}
		t.ready.Store(true)
		t.readyOnce.Do(func() { close(t.readyCh) })
	}()
}

func (t *Transcriber) Ready() <-chan struct{} {
	return t.readyCh
}

func (t *Transcriber) IsReady() bool {
	return t.ready.Load()
}

// SendAudio forwards chunk to the underlying stream, substituting an
// equal-byte-length silent chunk when muted so downstream timing (chunk
// counts, sequence numbers, playback pacing) is unaffected by muting.
func (t *Transcriber) SendAudio(ctx context.Context, chunk []byte) error {
	if t.muted.Load() {
		chunk = silentChunk(chunk, t.config.Encoding)
	}
	return t.sendAudio(ctx, chunk)
}

// silentChunk returns a silent replacement the same byte length as chunk,
// using the correct zero-amplitude codepoint for the given encoding. A
// LINEAR16 zero sample is 0x0000, so a raw zero-fill is already correct
// there; mu-law's zero-amplitude codepoint is 0xff, not 0x00, so mu-law
// needs an explicit fill rather than a zeroed buffer.
func silentChunk(chunk []byte, encoding AudioEncoding) []byte {
	out := make([]byte, len(chunk))
	if encoding == EncodingMulaw {
		for i := range out {
			out[i] = mulawSilence
		}
	}
	return out
}
