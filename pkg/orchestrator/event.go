package orchestrator

import (
	"sync"
	"sync/atomic"
)

// Event is a typed payload flowing through a worker pipeline.
type Event[T any] struct {
	Payload T
}

func NewEvent[T any](payload T) Event[T] {
	return Event[T]{Payload: payload}
}

// CompletionTracker is a one-shot signal a producer can wait on to learn
// that a consumer has finished acting on an event. Safe to call Done
// multiple times; only the first call has effect.
type CompletionTracker struct {
	once sync.Once
	done chan struct{}
}

func NewCompletionTracker() *CompletionTracker {
	return &CompletionTracker{done: make(chan struct{})}
}

func (c *CompletionTracker) Done() {
	c.once.Do(func() { close(c.done) })
}

func (c *CompletionTracker) Wait() <-chan struct{} {
	return c.done
}

// InterruptibleEvent wraps a payload with a one-way-settable interruption
// flag. Once IsInterrupted returns true it never returns false again.
type InterruptibleEvent[T any] struct {
	Payload       T
	interrupted   atomic.Bool
	isInterruptable bool
}

func NewInterruptibleEvent[T any](payload T, isInterruptable bool) *InterruptibleEvent[T] {
	return &InterruptibleEvent[T]{Payload: payload, isInterruptable: isInterruptable}
}

// Interrupt marks the event as interrupted. Returns false if the event was
// not interruptable to begin with (the caller should treat it as having run
// to completion instead).
func (e *InterruptibleEvent[T]) Interrupt() bool {
	if !e.isInterruptable {
		return false
	}
	e.interrupted.Store(true)
	return true
}

func (e *InterruptibleEvent[T]) IsInterrupted() bool {
	return e.interrupted.Load()
}

func (e *InterruptibleEvent[T]) IsInterruptable() bool {
	return e.isInterruptable
}

// AgentResponseEvent adds a completion tracker on top of InterruptibleEvent
// so a downstream consumer (the synthesizer) can signal back to the agent
// worker once it has fully played out a response.
type AgentResponseEvent[T any] struct {
	*InterruptibleEvent[T]
	tracker *CompletionTracker
}

func NewAgentResponseEvent[T any](payload T, isInterruptable bool) *AgentResponseEvent[T] {
	return &AgentResponseEvent[T]{
		InterruptibleEvent: NewInterruptibleEvent(payload, isInterruptable),
		tracker:            NewCompletionTracker(),
	}
}

func (e *AgentResponseEvent[T]) MarkComplete() {
	e.tracker.Done()
}

// WaitForCompletion returns a channel that is closed once MarkComplete is
// called. Interruption does not close it, so a caller that must also stop
// waiting on interruption has to select on its own cancellation signal.
func (e *AgentResponseEvent[T]) WaitForCompletion() <-chan struct{} {
	return e.tracker.Wait()
}
