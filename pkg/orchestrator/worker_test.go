package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorker_ProcessesItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWorker[int, int](4, func(ctx context.Context, in int) (int, bool) {
		return in * 2, true
	})
	go w.Run(ctx)

	w.Input <- 3
	select {
	case out := <-w.Output:
		if out != 6 {
			t.Fatalf("expected 6, got %d", out)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for worker output")
	}
}

func TestInterruptibleWorker_SkipsAlreadyInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var processed atomic.Int32
	w := NewInterruptibleWorker[string](4, 2, func(ctx context.Context, e *InterruptibleEvent[string]) {
		processed.Add(1)
	})
	go w.Run(ctx)

	interrupted := NewInterruptibleEvent("skip me", true)
	interrupted.Interrupt()
	w.Input <- interrupted

	notInterrupted := NewInterruptibleEvent("handle me", true)
	w.Input <- notInterrupted

	time.Sleep(100 * time.Millisecond)

	if processed.Load() != 1 {
		t.Fatalf("expected exactly 1 processed event, got %d", processed.Load())
	}
}

func TestInterruptibleWorker_ForcesNonInterruptableAfterSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	w := NewInterruptibleWorker[string](4, 1, func(ctx context.Context, e *InterruptibleEvent[string]) {
		defer wg.Done()
	})
	go w.Run(ctx)

	e := NewInterruptibleEvent("hi", true)
	w.Input <- e
	wg.Wait()
	time.Sleep(20 * time.Millisecond)

	if e.IsInterruptable() {
		t.Fatal("expected event to be forced non-interruptable after successful completion")
	}
}

func TestInterruptibleWorker_RespectsMaxConcurrency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var inFlight atomic.Int32
	var maxSeen atomic.Int32
	release := make(chan struct{})

	w := NewInterruptibleWorker[int](8, 2, func(ctx context.Context, e *InterruptibleEvent[int]) {
		cur := inFlight.Add(1)
		for {
			old := maxSeen.Load()
			if cur <= old || maxSeen.CompareAndSwap(old, cur) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
	})
	go w.Run(ctx)

	for i := 0; i < 5; i++ {
		w.Input <- NewInterruptibleEvent(i, true)
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	time.Sleep(100 * time.Millisecond)

	if maxSeen.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent items, saw %d", maxSeen.Load())
	}
}
