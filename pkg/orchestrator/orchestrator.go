package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
)


type Orchestrator struct {
	stt    STTProvider
	llm    LLMProvider
	tts    TTSProvider
	vad    VADProvider
	config Config
	logger Logger
	mu     sync.RWMutex

	// agent, when set via SetAgent, takes over the live turn path: a
	// ManagedStream talks to it directly (see ManagedStream.runAgentTurn)
	// so the per-response IsInterruptable flags and AgentResponseStop/
	// AgentResponseFillerAudio variants survive into the synthesis
	// pipeline. GenerateResponse still routes through it for the
	// non-streaming batch callers below, but collapses the result to a
	// single string since ProcessAudio/ProcessAudioStream have no
	// interruption model to preserve fragments for in the first place.
	agent *Agent

	// synthesizer, built lazily by Synthesizer() or set via SetSynthesizer,
	// wraps tts with the chunking/message_up_to bookkeeping ManagedStream's
	// agent-driven turns need; the non-agent path keeps calling
	// SynthesizeStream directly since it has no per-fragment boundaries to
	// track.
	synthesizer *Synthesizer
}



func New(stt STTProvider, llm LLMProvider, tts TTSProvider, config Config) *Orchestrator {
	return NewWithLogger(stt, llm, tts, nil, config, &NoOpLogger{})
}


func NewWithVAD(stt STTProvider, llm LLMProvider, tts TTSProvider, vad VADProvider, config Config) *Orchestrator {
	return NewWithLogger(stt, llm, tts, vad, config, &NoOpLogger{})
}


func NewWithLogger(stt STTProvider, llm LLMProvider, tts TTSProvider, vad VADProvider, config Config, logger Logger) *Orchestrator {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &Orchestrator{
		stt:    stt,
		llm:    llm,
		tts:    tts,
		vad:    vad,
		config: config,
		logger: logger,
	}
}


func (o *Orchestrator) PushAudio(sessionID string, chunk []byte) (*VADEvent, error) {
	if o.vad == nil {
		return nil, fmt.Errorf("VAD provider not configured")
	}
	return o.vad.Process(chunk)
}


func (o *Orchestrator) ProcessAudio(ctx context.Context, session *ConversationSession, audioData []byte) (string, []byte, error) {
	
	transcript, err := o.Transcribe(ctx, audioData, session.GetCurrentLanguage())
	if err != nil {
		return "", nil, fmt.Errorf("transcription failed: %w", err)
	}

	if strings.TrimSpace(transcript) == "" {
		o.logger.Warn("empty transcription received", "sessionID", session.ID)
		return "", nil, ErrEmptyTranscription
	}

	o.logger.Info("transcription completed", "sessionID", session.ID, "length", len(transcript))
	session.AddMessage("user", transcript)

	
	response, err := o.GenerateResponse(ctx, session)
	if err != nil {
		o.logger.Error("LLM generation failed", "sessionID", session.ID, "error", err)
		return transcript, nil, fmt.Errorf("%w: %v", ErrLLMFailed, err)
	}

	o.logger.Info("LLM response generated", "sessionID", session.ID, "length", len(response))
	session.AddMessage("assistant", response)

	
	audioBytes, err := o.Synthesize(ctx, response, session.GetCurrentVoice(), session.GetCurrentLanguage())
	if err != nil {
		o.logger.Error("TTS synthesis failed", "sessionID", session.ID, "error", err)
		return transcript, nil, fmt.Errorf("%w: %v", ErrTTSFailed, err)
	}

	o.logger.Info("TTS synthesis completed", "sessionID", session.ID, "audioSize", len(audioBytes))
	return transcript, audioBytes, nil
}


func (o *Orchestrator) ProcessAudioStream(ctx context.Context, session *ConversationSession, audioData []byte, onAudioChunk func([]byte) error) (string, error) {
	
	transcript, err := o.Transcribe(ctx, audioData, session.GetCurrentLanguage())
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	if strings.TrimSpace(transcript) == "" {
		o.logger.Warn("empty transcription received", "sessionID", session.ID)
		return "", ErrEmptyTranscription
	}

	o.logger.Info("transcription completed", "sessionID", session.ID, "length", len(transcript))
	session.AddMessage("user", transcript)

	
	response, err := o.GenerateResponse(ctx, session)
	if err != nil {
		o.logger.Error("LLM generation failed", "sessionID", session.ID, "error", err)
		return transcript, fmt.Errorf("%w: %v", ErrLLMFailed, err)
	}

	o.logger.Info("LLM response generated", "sessionID", session.ID, "length", len(response))
	session.AddMessage("assistant", response)

	
	err = o.SynthesizeStream(ctx, response, session.GetCurrentVoice(), session.GetCurrentLanguage(), onAudioChunk)
	if err != nil {
		o.logger.Error("TTS streaming failed", "sessionID", session.ID, "error", err)
		return transcript, fmt.Errorf("%w: %v", ErrTTSFailed, err)
	}

	o.logger.Info("TTS streaming completed", "sessionID", session.ID)
	return transcript, nil
}


func (o *Orchestrator) Transcribe(ctx context.Context, audioData []byte, lang Language) (string, error) {
	return o.stt.Transcribe(ctx, audioData, lang)
}


func (o *Orchestrator) GenerateResponse(ctx context.Context, session *ConversationSession) (string, error) {
	o.mu.RLock()
	agent := o.agent
	o.mu.RUnlock()

	if agent == nil {
		return o.llm.Complete(ctx, session.GetContextCopy())
	}

	responses, err := agent.Process(ctx, AgentInput{
		Type:          AgentInputTranscription,
		Transcription: session.GetLastUserMessage(),
	})
	if err != nil {
		return "", err
	}

	var parts []string
	for _, r := range responses {
		if r.Type == AgentResponseMessage && r.Text != "" {
			parts = append(parts, r.Text)
		}
	}
	return strings.Join(parts, " "), nil
}

// SetAgent wires an Agent into the orchestrator so GenerateResponse routes
// turns through its function-call dispatch and goodbye detection instead of
// a bare LLM completion, and so ManagedStream.runLLMAndTTS routes the live
// pipeline through Agent() directly. Pass nil to revert to the plain
// LLMProvider path.
func (o *Orchestrator) SetAgent(agent *Agent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.agent = agent
}

// Agent returns the orchestrator's currently wired Agent, or nil if none has
// been set. ManagedStream uses this to decide whether a turn should go
// through the interruptible-event agent pipeline or the plain LLM path.
func (o *Orchestrator) Agent() *Agent {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.agent
}

// Synthesizer returns the orchestrator's Synthesizer, building a default
// linear16 one around its TTSProvider the first time it's needed.
func (o *Orchestrator) Synthesizer() *Synthesizer {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.synthesizer == nil {
		o.synthesizer = NewSynthesizer(o.tts, TranscriberConfig{
			Encoding:   EncodingLinear16,
			SampleRate: o.config.SampleRate,
		}, false)
	}
	return o.synthesizer
}

// SetSynthesizer overrides the lazily-built default, e.g. to attach
// pre-rendered filler/back-tracking/follow-up clips via its SetXAudios
// methods before any turn runs.
func (o *Orchestrator) SetSynthesizer(s *Synthesizer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.synthesizer = s
}

// NewAgentForConfig builds an Agent whose AllowAgentToBeCutOff is taken from
// the orchestrator's own Config, so the top-level barge-in policy and the
// Agent's own interruptability flag never drift out of sync. It also caps
// dispatcher's in-flight action concurrency at Config.MaxConcurrency.
func (o *Orchestrator) NewAgentForConfig(agentType, modelEngine string, dispatcher *ActionDispatcher, transcript *Transcript, goodbyePhrases []string) *Agent {
	o.mu.RLock()
	cfg := o.config
	o.mu.RUnlock()

	if dispatcher != nil {
		dispatcher.SetMaxConcurrency(cfg.MaxConcurrency)
	}

	return NewAgent(AgentConfig{
		AgentType:            agentType,
		ModelEngine:          modelEngine,
		AllowAgentToBeCutOff: cfg.AllowAgentToBeCutOff,
		GoodbyePhrases:       goodbyePhrases,
	}, o.llm, dispatcher, transcript)
}


func (o *Orchestrator) Synthesize(ctx context.Context, text string, voice Voice, lang Language) ([]byte, error) {
	return o.tts.Synthesize(ctx, text, voice, lang)
}


func (o *Orchestrator) SynthesizeStream(ctx context.Context, text string, voice Voice, lang Language, onChunk func([]byte) error) error {
	return o.tts.StreamSynthesize(ctx, text, voice, lang, onChunk)
}


func (o *Orchestrator) HandleInterruption(session *ConversationSession) {
	o.logger.Info("conversation interrupted", "sessionID", session.ID)
	
}


func (o *Orchestrator) UpdateConfig(cfg Config) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.config = cfg
}


func (o *Orchestrator) GetConfig() Config {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.config
}


func (o *Orchestrator) GetProviders() map[string]string {
	return map[string]string{
		"stt": o.stt.Name(),
		"llm": o.llm.Name(),
		"tts": o.tts.Name(),
	}
}



func (o *Orchestrator) NewSessionWithDefaults(userID string) *ConversationSession {
	session := NewConversationSession(userID)
	session.MaxMessages = o.config.MaxContextMessages
	session.CurrentVoice = o.config.VoiceStyle
	session.CurrentLanguage = o.config.Language
	return session
}



func (o *Orchestrator) SetSystemPrompt(session *ConversationSession, prompt string) {
	session.AddMessage("system", prompt)
}



func (o *Orchestrator) SetVoice(session *ConversationSession, voice Voice) {
	session.CurrentVoice = voice
}



func (o *Orchestrator) SetLanguage(session *ConversationSession, lang Language) {
	session.CurrentLanguage = lang
}



func (o *Orchestrator) ResetSession(session *ConversationSession) {
	session.ClearContext()
}



func (o *Orchestrator) NewManagedStream(ctx context.Context, session *ConversationSession) *ManagedStream {
	return NewManagedStream(ctx, o, session)
}
