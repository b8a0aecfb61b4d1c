package orchestrator

// NoiseCanceler is a pluggable, synchronous noise-removal transform applied
// upstream of transcriber ingest — explicitly not on the interruption path,
// since it runs on every inbound chunk regardless of speaking state.
type NoiseCanceler interface {
	CancelNoise(chunk []byte) ([]byte, error)
	Name() string
}

type noOpNoiseCanceler struct{}

func NewNoOpNoiseCanceler() NoiseCanceler { return &noOpNoiseCanceler{} }

func (n *noOpNoiseCanceler) CancelNoise(chunk []byte) ([]byte, error) { return chunk, nil }
func (n *noOpNoiseCanceler) Name() string                             { return "noop" }

// EchoSuppressorNoiseCanceler adapts the existing correlation-based
// EchoSuppressor into the NoiseCanceler contract. No cgo-free/pure-Go
// RNNoise binding exists in the retrieved example pack, so rather than
// stubbing a no-op or fabricating one, the default noise canceler reuses
// the teacher's own real-time correlation-based echo muting, which performs
// the same class of transform (detect a correlated/noisy segment, mute it)
// against the rolling self-playback buffer it already maintains.
type EchoSuppressorNoiseCanceler struct {
	suppressor *EchoSuppressor
}

func NewEchoSuppressorNoiseCanceler(suppressor *EchoSuppressor) *EchoSuppressorNoiseCanceler {
	return &EchoSuppressorNoiseCanceler{suppressor: suppressor}
}

func (n *EchoSuppressorNoiseCanceler) CancelNoise(chunk []byte) ([]byte, error) {
	return n.suppressor.RemoveEchoRealtime(chunk), nil
}

func (n *EchoSuppressorNoiseCanceler) Name() string { return "echo_suppressor_noise_canceler" }
