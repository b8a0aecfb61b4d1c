package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
)

// ActionConfig describes one callable action an agent can invoke via a
// function call, analogous to original_source's per-action config objects
// looked up by _get_action_config.
type ActionConfig struct {
	Name        string
	Kind        ActionKind
	UserMessage string // optional pre-action acknowledgement spoken before running
}

type ActionKind string

const (
	ActionKindGeneric ActionKind = "generic"
	ActionKindTwilio  ActionKind = "twilio_phone_call"
	ActionKindVonage  ActionKind = "vonage_phone_call"
)

// ActionRunner executes one action given its raw JSON arguments and returns
// a textual result to feed back into the agent as an ActionResultInput.
type ActionRunner interface {
	Run(ctx context.Context, rawArgs string) (result string, isQuiet bool, err error)
}

// ActionFactory builds an ActionRunner for a given ActionConfig — mirrors
// original_source's action_factory.create_action.
type ActionFactory interface {
	Create(config ActionConfig) (ActionRunner, error)
}

// ActionDispatcher resolves function calls to configured actions, announces
// them to the transcript and to an optional completion-acknowledgement
// channel, runs them, and feeds the result back into the agent as an
// AgentInput of type ActionResult.
type ActionDispatcher struct {
	factory    ActionFactory
	configs    map[string]ActionConfig
	transcript *Transcript
	callerID   string // required precondition for telephony action kinds

	onResult      func(ctx context.Context, input AgentInput)
	onUserMessage func(ctx context.Context, text string)
	emit          func(eventType EventType, data interface{})

	sem chan struct{} // nil means unbounded, per SetMaxConcurrency
}

func NewActionDispatcher(factory ActionFactory, configs []ActionConfig, transcript *Transcript, callerID string) *ActionDispatcher {
	m := make(map[string]ActionConfig, len(configs))
	for _, c := range configs {
		m[c.Name] = c
	}
	return &ActionDispatcher{
		factory:    factory,
		configs:    m,
		transcript: transcript,
		callerID:   callerID,
	}
}

// SetMaxConcurrency bounds how many dispatched actions may run at once,
// mirroring the same channel-based counting semaphore InterruptibleWorker
// uses to enforce Config.MaxConcurrency. n <= 0 means unbounded.
func (d *ActionDispatcher) SetMaxConcurrency(n int) {
	if n <= 0 {
		d.sem = nil
		return
	}
	d.sem = make(chan struct{}, n)
}

func (d *ActionDispatcher) SetOnResult(f func(ctx context.Context, input AgentInput)) {
	d.onResult = f
}

func (d *ActionDispatcher) SetOnUserMessage(f func(ctx context.Context, text string)) {
	d.onUserMessage = f
}

func (d *ActionDispatcher) SetEventEmitter(f func(eventType EventType, data interface{})) {
	d.emit = f
}

// Dispatch resolves fc to a configured action and runs it asynchronously,
// mirroring original_source's call_function: lookup, telephony-specific
// caller-ID precondition check, instantiate, optional acknowledgement,
// transcript logging, then run on its own goroutine. The acknowledgement
// text is ActionConfig.UserMessage; fc.Args is passed to the runner
// unparsed, and a user_message field inside it is not read here.
func (d *ActionDispatcher) Dispatch(ctx context.Context, fc FunctionCall) {
	config, ok := d.configs[fc.Name]
	if !ok {
		return
	}

	if config.Kind == ActionKindTwilio || config.Kind == ActionKindVonage {
		if d.callerID == "" {
			// precondition failure: log and drop, never retry, never panic.
			return
		}
	}

	runner, err := d.factory.Create(config)
	if err != nil {
		return
	}

	if config.UserMessage != "" && d.onUserMessage != nil {
		d.onUserMessage(ctx, config.UserMessage)
	}

	d.transcript.AddActionStart(config.Name)
	if d.emit != nil {
		d.emit(ActionStarted, config.Name)
	}

	go func() {
		if d.sem != nil {
			d.sem <- struct{}{}
			defer func() { <-d.sem }()
		}

		result, isQuiet, err := runner.Run(ctx, fc.Args)
		if err != nil {
			result = fmt.Sprintf("action %s failed: %v", config.Name, err)
		}
		if d.emit != nil {
			d.emit(ActionFinished, config.Name)
		}
		if d.onResult != nil {
			d.onResult(ctx, AgentInput{
				Type:          AgentInputActionResult,
				ActionName:    config.Name,
				ActionResult:  result,
				ActionIsQuiet: isQuiet,
			})
		}
	}()
}

// ParseArgs is a small helper most ActionRunner implementations use to
// unmarshal their own argument struct out of the raw function-call JSON.
func ParseArgs(rawArgs string, into interface{}) error {
	if rawArgs == "" {
		return nil
	}
	return json.Unmarshal([]byte(rawArgs), into)
}
