package spawn

import (
	"context"
	"fmt"
	"sync"

	"github.com/corvid-labs/spawn/sysmsg"
)

// FromPromise returns a descriptor for an actor wrapping a single
// asynchronous computation. The actor ignores every event it receives. On
// settlement it sends exactly one terminal event to its parent — done with
// the output, or error with the reason — and stops itself. The context is
// canceled when the actor is stopped, and a settlement that loses the race
// against an external stop delivers nothing.
func FromPromise(run func(ctx context.Context) (any, error)) *Descriptor {
	return &Descriptor{
		kind: "promise",
		make: func() behavior { return &promiseBehavior{run: run} },
	}
}

type promiseBehavior struct {
	run func(ctx context.Context) (any, error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

func (b *promiseBehavior) start(c *cell) bool {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.mbox.Push(sysmsg.Settle{Err: fmt.Errorf("promise panic: %v", r)})
			}
		}()
		out, err := b.run(ctx)
		c.mbox.Push(sysmsg.Settle{Output: out, Err: err})
	}()
	return true
}

func (b *promiseBehavior) receive(*cell, Event) bool {
	// promises do not react to events
	return true
}

func (b *promiseBehavior) dispose(*cell) {
	b.mu.Lock()
	b.stopped = true
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
