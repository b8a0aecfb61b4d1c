package orchestrator

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/hajimehoshi/go-mp3"
	"github.com/lokutor-ai/voxcore/pkg/audio"
)

var fillerPhrases = []string{"um, let me think", "okay, one moment", "sure thing"}
var backTrackingPhrases = []string{"wait, sorry", "actually, let me correct that"}
var followUpPhrases = []string{"anything else?", "does that help?"}

// PreRenderedAudio is a filler/back-tracking/follow-up clip synthesized
// ahead of time so it can be played back with no model-latency delay.
type PreRenderedAudio struct {
	Phrase string
	PCM    []byte
}

// ChunkResult is one piece of a streaming synthesis output: PCM audio paired
// with whether it is the terminal chunk of the response.
type ChunkResult struct {
	PCM    []byte
	IsLast bool
}

// Synthesizer turns agent text into streamed PCM audio, wrapping provider
// TTS calls with chunking, WAV rewrap, and the message_up_to bookkeeping
// needed to compute how much of a response the listener actually heard
// before being interrupted.
type Synthesizer struct {
	tts        TTSProvider
	config     TranscriberConfig // reused for sample rate/encoding of output
	wrapInWav  bool

	fillerAudios       []PreRenderedAudio
	backTrackingAudios []PreRenderedAudio
	followUpAudios     []PreRenderedAudio
}

func NewSynthesizer(tts TTSProvider, config TranscriberConfig, wrapInWav bool) *Synthesizer {
	return &Synthesizer{tts: tts, config: config, wrapInWav: wrapInWav}
}

func (s *Synthesizer) SetFillerAudios(a []PreRenderedAudio)       { s.fillerAudios = a }
func (s *Synthesizer) SetBackTrackingAudios(a []PreRenderedAudio) { s.backTrackingAudios = a }
func (s *Synthesizer) SetFollowUpAudios(a []PreRenderedAudio)     { s.followUpAudios = a }

func (s *Synthesizer) GetTypingNoiseFillerAudio() *PreRenderedAudio {
	if len(s.fillerAudios) == 0 {
		return nil
	}
	return &s.fillerAudios[0]
}

// chunkSize returns the byte length of one synthesis output chunk,
// encoding-correct: LINEAR16 is 2 bytes/sample, mu-law is 1 byte/sample and
// is always locked to 8kHz regardless of the configured sample rate.
func (s *Synthesizer) chunkSize(chunkDurationMS int) int {
	sampleRate := s.config.SampleRate
	bytesPerSample := 2
	if s.config.Encoding == EncodingMulaw {
		sampleRate = 8000
		bytesPerSample = 1
	}
	return sampleRate * bytesPerSample * chunkDurationMS / 1000
}

// CreateSpeech streams provider audio out in encoding-correct chunks, each
// independently rewrapped as its own WAV file when wrapInWav is set (some
// transports need a self-describing header per chunk rather than one header
// for the whole stream).
func (s *Synthesizer) CreateSpeech(ctx context.Context, text string, voice Voice, lang Language, chunkDurationMS int, onChunk func(ChunkResult) error) error {
	cs := s.chunkSize(chunkDurationMS)
	if cs <= 0 {
		cs = 4096
	}

	var buf bytes.Buffer
	err := s.tts.StreamSynthesize(ctx, text, voice, lang, func(pcm []byte) error {
		buf.Write(pcm)
		for buf.Len() >= cs {
			chunk := make([]byte, cs)
			buf.Read(chunk)
			out := chunk
			if s.wrapInWav {
				out = audio.NewWavBuffer(chunk, s.config.SampleRate)
			}
			if err := onChunk(ChunkResult{PCM: out, IsLast: false}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if buf.Len() > 0 {
		rest := buf.Bytes()
		out := rest
		if s.wrapInWav {
			out = audio.NewWavBuffer(rest, s.config.SampleRate)
		}
		return onChunk(ChunkResult{PCM: out, IsLast: true})
	}
	return onChunk(ChunkResult{PCM: nil, IsLast: true})
}

// MessageUpToLinear computes how much of text a listener heard when
// secondsPlayed seconds of a response lasting totalBytes/samplingRate
// seconds had been emitted before interruption. This is the preferred/authoritative
// formula: chars_heard = len(text) * seconds_played / total_seconds.
func MessageUpToLinear(text string, totalBytes int, samplingRate int, secondsPlayed float64) string {
	if totalBytes <= 0 || samplingRate <= 0 {
		return ""
	}
	totalSeconds := float64(totalBytes) / float64(samplingRate)
	if totalSeconds <= 0 {
		return ""
	}
	charsHeard := float64(len(text)) * secondsPlayed / totalSeconds
	if charsHeard <= 0 {
		return ""
	}
	if charsHeard >= float64(len(text)) {
		return text
	}
	return text[:int(charsHeard)]
}

// MessageUpToWPM is the fallback detokenization strategy: estimate how many
// words were heard given a words-per-minute rate and seconds played, then
// return that many leading words of text.
func MessageUpToWPM(text string, wpm float64, secondsPlayed float64) string {
	if wpm <= 0 {
		return ""
	}
	wordsHeard := int(wpm / 60.0 * secondsPlayed)
	words := strings.Fields(text)
	if wordsHeard >= len(words) {
		return text
	}
	if wordsHeard <= 0 {
		return ""
	}
	return strings.Join(words[:wordsHeard], " ")
}

// MP3StreamingDecode decodes body (e.g. a non-seekable HTTP response body)
// incrementally via go-mp3 on the calling goroutine and hands each decoded
// PCM chunk to onChunk along with whether it is the final chunk; a cancelled
// ctx stops it between reads. It starts no producer goroutine and keeps no
// decoder input queue: the decoder pulls from body directly as it decodes.
func MP3StreamingDecode(ctx context.Context, body io.Reader, onChunk func(ChunkResult) error) error {
	decoder, err := mp3.NewDecoder(body)
	if err != nil {
		return err
	}

	const readChunkBytes = 4096
	buf := make([]byte, readChunkBytes)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := decoder.Read(buf)
		if n > 0 {
			pcm := make([]byte, n)
			copy(pcm, buf[:n])
			isLast := err == io.EOF
			if cbErr := onChunk(ChunkResult{PCM: pcm, IsLast: isLast}); cbErr != nil {
				return cbErr
			}
			if isLast {
				return nil
			}
		}
		if err != nil {
			if err == io.EOF {
				return onChunk(ChunkResult{PCM: nil, IsLast: true})
			}
			return err
		}
	}
}
