package spawn

import (
	"sync"

	"github.com/corvid-labs/spawn/internal/mailbox"
	"github.com/corvid-labs/spawn/sysmsg"
)

// Observer receives the values of an external stream on behalf of an
// observable actor. Implementations provided by the runtime are safe to call
// from any goroutine; calls after Complete or Error are ignored.
type Observer interface {
	Next(value any)
	Error(err error)
	Complete()
}

// SubscribeFunc attaches an observer to an external stream when the actor
// starts. The returned unsubscribe function (nil is fine) is invoked exactly
// once when the actor stops.
type SubscribeFunc func(o Observer) (unsubscribe func())

// FromObservable returns a descriptor for an actor fed by an external
// stream. Each produced value is published as the actor's snapshot and
// forwarded to the parent as an emitted event; completion sends done and
// stops the actor, a stream error sends error and stops the actor.
func FromObservable(subscribe SubscribeFunc) *Descriptor {
	return &Descriptor{
		kind: "observable",
		make: func() behavior { return &observableBehavior{subscribeFn: subscribe} },
	}
}

type observableBehavior struct {
	subscribeFn SubscribeFunc

	mu       sync.Mutex
	unsub    func()
	stopped  bool
	released bool
}

func (b *observableBehavior) start(c *cell) bool {
	u := b.subscribeFn(cellObserver{mbox: c.mbox})

	b.mu.Lock()
	b.unsub = u
	invoke := b.stopped && u != nil && !b.released
	if invoke {
		b.released = true
	}
	stopped := b.stopped
	b.mu.Unlock()
	if invoke {
		u()
	}
	return !stopped
}

func (b *observableBehavior) receive(*cell, Event) bool {
	// observable actors do not react to events
	return true
}

func (b *observableBehavior) dispose(*cell) {
	b.mu.Lock()
	b.stopped = true
	u := b.unsub
	invoke := u != nil && !b.released
	if invoke {
		b.released = true
	}
	b.mu.Unlock()
	if invoke {
		u()
	}
}

// cellObserver funnels stream callbacks into the owning actor's mailbox; the
// cell goroutine does the actual forwarding, preserving per-actor ordering.
type cellObserver struct {
	mbox mailbox.Mailbox
}

func (o cellObserver) Next(value any) {
	o.mbox.Push(sysmsg.StreamNext{Value: value})
}

func (o cellObserver) Error(err error) {
	o.mbox.Push(sysmsg.StreamDone{Err: err})
}

func (o cellObserver) Complete() {
	o.mbox.Push(sysmsg.StreamDone{})
}
