package spawn

import (
	"sync"

	"github.com/corvid-labs/spawn/sysmsg"
)

// CallbackStart boots a callback actor with its two injected capabilities:
// emit sends an event to the actor's parent, and receive registers the
// function observing events sent to the actor. receive must be called before
// CallbackStart returns. The returned disposer (nil is fine) releases any
// ambient effects the callback set up — timers, subscriptions — and is
// invoked exactly once when the actor stops, on every exit path.
//
// Emits are serialized through the actor's own mailbox before being
// forwarded, so once the actor is stopped no emit ever reaches the parent,
// even one whose timer had already fired but was not yet drained.
type CallbackStart func(emit func(Event), receive func(func(Event))) (dispose func())

// FromCallback returns a descriptor for a callback actor.
func FromCallback(start CallbackStart) *Descriptor {
	return &Descriptor{
		kind: "callback",
		make: func() behavior { return &callbackBehavior{startFn: start} },
	}
}

type callbackBehavior struct {
	startFn CallbackStart

	mu       sync.Mutex
	onEvent  func(Event)
	disposer func()
	stopped  bool
	disposed bool
}

func (b *callbackBehavior) start(c *cell) bool {
	emit := func(ev Event) {
		c.mbox.Push(sysmsg.Emit{Event: ev})
	}
	receive := func(fn func(Event)) {
		b.mu.Lock()
		b.onEvent = fn
		b.mu.Unlock()
	}
	d := b.startFn(emit, receive)

	// an external stop may have raced the start call; the disposer still
	// has to run exactly once in that case
	b.mu.Lock()
	b.disposer = d
	invoke := b.stopped && d != nil && !b.disposed
	if invoke {
		b.disposed = true
	}
	stopped := b.stopped
	b.mu.Unlock()
	if invoke {
		d()
	}
	return !stopped
}

func (b *callbackBehavior) receive(_ *cell, ev Event) bool {
	b.mu.Lock()
	fn := b.onEvent
	b.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
	return true
}

func (b *callbackBehavior) dispose(*cell) {
	b.mu.Lock()
	b.stopped = true
	d := b.disposer
	invoke := d != nil && !b.disposed
	if invoke {
		b.disposed = true
	}
	b.mu.Unlock()
	if invoke {
		d()
	}
}
