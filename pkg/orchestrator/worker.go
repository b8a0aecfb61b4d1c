package orchestrator

import (
	"context"
	"log"
)

// Worker consumes items of type In from an input channel, produces items of
// type Out, and never lets a panic or error escape its own run loop — the
// only way it stops is its context being cancelled.
type Worker[In, Out any] struct {
	Input  chan In
	Output chan Out

	process func(ctx context.Context, in In) (Out, bool)
}

func NewWorker[In, Out any](bufferSize int, process func(ctx context.Context, in In) (Out, bool)) *Worker[In, Out] {
	return &Worker[In, Out]{
		Input:   make(chan In, bufferSize),
		Output:  make(chan Out, bufferSize),
		process: process,
	}
}

func (w *Worker[In, Out]) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-w.Input:
			if !ok {
				return
			}
			out, emit := func() (out Out, emit bool) {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("worker: recovered from panic in process: %v", r)
						emit = false
					}
				}()
				return w.process(ctx, in)
			}()
			if !emit {
				continue
			}
			select {
			case w.Output <- out:
			case <-ctx.Done():
				return
			}
		}
	}
}

// ThreadedWorker bridges a blocking, synchronous call (an SDK client that
// has no context-cancellable streaming API) onto the same channel-driven
// shape as Worker, running the blocking call on its own goroutine per item
// so the run loop itself never blocks past a context cancellation.
type ThreadedWorker[In, Out any] struct {
	Input  chan In
	Output chan Out

	processBlocking func(in In) (Out, bool)
}

func NewThreadedWorker[In, Out any](bufferSize int, processBlocking func(in In) (Out, bool)) *ThreadedWorker[In, Out] {
	return &ThreadedWorker[In, Out]{
		Input:           make(chan In, bufferSize),
		Output:          make(chan Out, bufferSize),
		processBlocking: processBlocking,
	}
}

func (w *ThreadedWorker[In, Out]) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-w.Input:
			if !ok {
				return
			}
			resultCh := make(chan struct {
				out  Out
				emit bool
			}, 1)
			go func() {
				out, emit := w.processBlocking(in)
				resultCh <- struct {
					out  Out
					emit bool
				}{out, emit}
			}()
			select {
			case r := <-resultCh:
				if !r.emit {
					continue
				}
				select {
				case w.Output <- r.out:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

// InterruptibleWorker processes InterruptibleEvent[P] payloads, skipping any
// event that is already interrupted when it is dequeued or when its goroutine
// starts, and bounding how many items may be processed concurrently via
// maxConcurrency. Interrupting an event while its handler runs does not
// cancel the handler's context; that context ends only when the ctx passed
// to Run is cancelled or the handler returns. A maxConcurrency of 1 reproduces the original
// implementation's de-facto serial behavior; anything greater actually
// parallelizes, closing the gap the original left as a TODO.
type InterruptibleWorker[P any] struct {
	Input chan *InterruptibleEvent[P]

	handle         func(ctx context.Context, event *InterruptibleEvent[P])
	maxConcurrency int
	sem            chan struct{}
}

func NewInterruptibleWorker[P any](bufferSize, maxConcurrency int, handle func(ctx context.Context, event *InterruptibleEvent[P])) *InterruptibleWorker[P] {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &InterruptibleWorker[P]{
		Input:          make(chan *InterruptibleEvent[P], bufferSize),
		handle:         handle,
		maxConcurrency: maxConcurrency,
		sem:            make(chan struct{}, maxConcurrency),
	}
}

func (w *InterruptibleWorker[P]) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Input:
			if !ok {
				return
			}
			if event.IsInterrupted() {
				continue
			}

			select {
			case w.sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			itemCtx, cancel := context.WithCancel(ctx)
			go func(event *InterruptibleEvent[P], itemCtx context.Context, cancel context.CancelFunc) {
				defer func() {
					<-w.sem
					cancel()
				}()

				if event.IsInterrupted() {
					return
				}

				w.handle(itemCtx, event)

				if event.IsInterruptable() && !event.IsInterrupted() {
					// a successfully completed item is no longer cuttable —
					// the teacher's original forces is_interruptable=false
					// here so a later barge-in cannot cancel work already done.
					event.isInterruptable = false
				}
			}(event, itemCtx, cancel)
		}
	}
}

// InterruptibleWorker has no method for cancelling items in flight. Setting
// an event's interruption flag is observed only by Run's checks before
// dispatch; a handler that is already running stops early only when the
// ctx passed to Run is cancelled.
