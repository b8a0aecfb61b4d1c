package orchestrator

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// goodbyeDetectionTimeout mirrors the original implementation's hard-coded
// asyncio.wait_for(goodbye_task, 0.1) — a deliberately tight, non-configurable
// bound so goodbye detection never meaningfully delays a turn.
const goodbyeDetectionTimeout = 100 * time.Millisecond

type AgentInputType string

const (
	AgentInputTranscription AgentInputType = "TRANSCRIPTION"
	AgentInputActionResult  AgentInputType = "ACTION_RESULT"
)

// AgentInput is a tagged union over the two ways a turn can be kicked off:
// a transcribed human utterance, or the result of a previously dispatched
// action coming back asynchronously. Type holds the discriminator; exactly
// one of Transcription/ActionResult is populated.
type AgentInput struct {
	Type AgentInputType

	Transcription string
	IsInterrupt   bool

	ActionName   string
	ActionResult string
	ActionIsQuiet bool
}

type AgentResponseType string

const (
	AgentResponseMessage        AgentResponseType = "MESSAGE"
	AgentResponseStop           AgentResponseType = "STOP"
	AgentResponseFillerAudio    AgentResponseType = "FILLER_AUDIO"
	AgentResponseBackTracking   AgentResponseType = "BACK_TRACKING_AUDIO"
	AgentResponseFollowUpAudio  AgentResponseType = "FOLLOW_UP_AUDIO"
)

// AgentResponse is the tagged union of everything a turn handler can
// produce. Only the field matching Type is meaningful.
type AgentResponse struct {
	Type AgentResponseType

	Text           string
	FunctionCall   *FunctionCall
	IsInterruptable bool
}

type FunctionCall struct {
	Name string
	Args string // raw JSON
}

// ResponseFragment is one item out of a streaming turn — either a text
// fragment or a function call, paired with whether it may still be cut off.
type ResponseFragment struct {
	Text            string
	FunctionCall    *FunctionCall
	IsInterruptable bool
}

type AgentConfig struct {
	AgentType            string
	ModelEngine          string
	AllowAgentToBeCutOff bool
	GenerateResponses    bool // true => streaming generate_response, false => respond
	SendFillerAudio      bool
	GoodbyePhrases       []string
}

// StreamingLLMProvider is implemented by LLM providers that can emit
// incremental fragments instead of a single completed string. When
// AgentConfig.GenerateResponses is set, Agent uses Stream if the provider
// implements it and otherwise wraps a plain LLMProvider.Complete call in a
// single fragment.
type StreamingLLMProvider interface {
	LLMProvider
	Stream(ctx context.Context, messages []Message) (<-chan ResponseFragment, error)
}

// Agent turns AgentInput into AgentResponse(s). It holds the LLM, the
// dispatcher used to run function calls, and the shared transcript; the
// skip-if-interrupted and cancel-if-interruptable semantics it participates
// in live one layer up, where the pipeline wraps each AgentResponse in an
// AgentResponseEvent and runs it through an InterruptibleWorker.
type Agent struct {
	config     AgentConfig
	llm        LLMProvider
	dispatcher *ActionDispatcher
	transcript *Transcript

	tracerNameStart string
	tracer          trace.Tracer
}

func NewAgent(config AgentConfig, llm LLMProvider, dispatcher *ActionDispatcher, transcript *Transcript) *Agent {
	a := &Agent{
		config:     config,
		llm:        llm,
		dispatcher: dispatcher,
		transcript: transcript,
		tracer:     otel.Tracer("voxcore/agent"),
	}
	a.tracerNameStart = a.getTracerNameStart()
	return a
}

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// getTracerNameStart derives and caches a deterministic span-name prefix
// from the agent's config: base prefix, agent type, and (if present) model
// engine id, with non-alphanumerics stripped so it is safe to use as a span
// name component regardless of what a provider names its models.
func (a *Agent) getTracerNameStart() string {
	parts := []string{"agent", nonAlphaNumeric.ReplaceAllString(a.config.AgentType, "")}
	if a.config.ModelEngine != "" {
		parts = append(parts, nonAlphaNumeric.ReplaceAllString(a.config.ModelEngine, ""))
	}
	return strings.Join(parts, ".")
}

// Process handles one AgentInput and returns the resulting stream of
// responses. Mirrors original_source's process(): a transcription input
// that is empty (whitespace only) is skipped with no responses; an
// action-result input is logged as an action-finish transcript entry and,
// unless quiet, turned into a pseudo-transcription describing the outcome.
func (a *Agent) Process(ctx context.Context, input AgentInput) ([]AgentResponse, error) {
	switch input.Type {
	case AgentInputTranscription:
		if strings.TrimSpace(input.Transcription) == "" {
			return nil, nil
		}
		a.transcript.AddHuman(input.Transcription)
		return a.respondToText(ctx, input.Transcription)

	case AgentInputActionResult:
		a.transcript.AddActionFinish(input.ActionName)
		if input.ActionIsQuiet {
			return nil, nil
		}
		return a.respondToText(ctx, jsonSerializedActionResult(input.ActionResult))

	default:
		return nil, nil
	}
}

// jsonSerializedActionResult turns an action's textual result into the
// pseudo-transcription fed back to the LLM: the result JSON-encoded as a
// string, at an implicit confidence of 1.0 since it never passed through a
// transcriber.
func jsonSerializedActionResult(result string) string {
	encoded, err := json.Marshal(result)
	if err != nil {
		return result
	}
	return string(encoded)
}

func (a *Agent) respondToText(ctx context.Context, text string) ([]AgentResponse, error) {
	messages := []Message{{Role: "user", Content: text}}

	goodbyeCh := a.detectGoodbyeAsync(text)

	var responses []AgentResponse
	if a.config.SendFillerAudio {
		responses = append(responses, AgentResponse{Type: AgentResponseFillerAudio})
	}
	var shouldStop bool

	if a.config.GenerateResponses {
		fragments, err := a.handleGenerateResponse(ctx, messages)
		if err != nil {
			return nil, err
		}
		// Only the last function call of the stream is ever dispatched: a
		// model may emit several as it reasons towards its final pick, and
		// dispatching each one as it arrives would run actions the model
		// immediately abandoned. Wait for the stream to end.
		var lastCall *FunctionCall
		for frag := range fragments {
			if frag.FunctionCall != nil {
				lastCall = frag.FunctionCall
				continue
			}
			a.transcript.AddBot(frag.Text)
			responses = append(responses, AgentResponse{
				Type:            AgentResponseMessage,
				Text:            frag.Text,
				IsInterruptable: a.config.AllowAgentToBeCutOff && frag.IsInterruptable,
			})
		}
		if lastCall != nil && a.dispatcher != nil {
			a.dispatcher.Dispatch(ctx, *lastCall)
		}
	} else {
		reply, stop, err := a.handleRespond(ctx, messages)
		if err != nil {
			// spec-mandated semantics: a model failure is "no response, do
			// not stop", not a fatal end-of-conversation signal.
			return responses, nil
		}
		shouldStop = stop
		if reply != "" {
			a.transcript.AddBot(reply)
			responses = append(responses, AgentResponse{
				Type:            AgentResponseMessage,
				Text:            reply,
				IsInterruptable: a.config.AllowAgentToBeCutOff,
			})
		}
	}

	if shouldStop {
		return append(responses, AgentResponse{Type: AgentResponseStop}), nil
	}

	select {
	case isGoodbye := <-goodbyeCh:
		if isGoodbye {
			return append(responses, AgentResponse{Type: AgentResponseStop}), nil
		}
	case <-time.After(goodbyeDetectionTimeout):
		// goodbye detection did not finish in time; do not block the turn.
	}

	return responses, nil
}

// handleRespond wraps the non-streaming LLM call in its own span.
func (a *Agent) handleRespond(ctx context.Context, messages []Message) (string, bool, error) {
	ctx, span := a.tracer.Start(ctx, a.tracerNameStart+".respond")
	defer span.End()

	reply, err := a.llm.Complete(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", false, err
	}
	return reply, false, nil
}

// handleGenerateResponse wraps the streaming LLM call. Each fragment's
// IsInterruptable is allow_agent_to_be_cut_off AND the fragment's own
// interruptability, matching the original's conjunction exactly. When the
// configured LLMProvider does not implement StreamingLLMProvider, the whole
// reply is delivered as a single, interruptable fragment.
func (a *Agent) handleGenerateResponse(ctx context.Context, messages []Message) (<-chan ResponseFragment, error) {
	ctx, span := a.tracer.Start(ctx, a.tracerNameStart+".generate_response")

	streaming, ok := a.llm.(StreamingLLMProvider)
	if !ok {
		reply, err := a.llm.Complete(ctx, messages)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return nil, err
		}
		out := make(chan ResponseFragment, 1)
		out <- ResponseFragment{Text: reply, IsInterruptable: true}
		close(out)
		span.End()
		return out, nil
	}

	fragments, err := streaming.Stream(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	out := make(chan ResponseFragment)
	go func() {
		defer span.End()
		defer close(out)
		for frag := range fragments {
			out <- frag
		}
	}()
	return out, nil
}

func (a *Agent) detectGoodbyeAsync(text string) <-chan bool {
	resultCh := make(chan bool, 1)
	go func() {
		lower := strings.ToLower(text)
		for _, phrase := range a.config.GoodbyePhrases {
			if strings.Contains(lower, strings.ToLower(phrase)) {
				resultCh <- true
				return
			}
		}
		resultCh <- false
	}()
	return resultCh
}
