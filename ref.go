package spawn

import "sync"

// Status reports where an actor is in its lifecycle. Stopping is terminal.
type Status int32

const (
	StatusRunning Status = iota
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is the last state a behavior reported. For machine actors that is
// the machine's current state, for promise actors the settled outcome, for
// observable actors the latest stream value.
type Snapshot struct {
	Status Status
	State  any
	Err    error
}

// Ref is the only externally visible surface of an actor: an immutable handle
// that is safe to copy, to store inside machine context, and to compare by
// id. The zero Ref is inert; every method on it is a no-op.
type Ref struct {
	id     string
	system *System
}

// ID returns the actor's unique id. Generated ids are nondeterministic;
// callers must not rely on their format.
func (r Ref) ID() string {
	return r.id
}

// Send enqueues an event on the actor's mailbox, fire-and-forget. Sends to a
// stopped or unknown actor are silently dropped.
func (r Ref) Send(ev Event) {
	if r.system == nil {
		return
	}
	r.system.Send(r, ev)
}

// Stop terminates the actor and its live descendants. Idempotent: stopping a
// stopped or unknown actor is a no-op, so it is safe to call defensively.
func (r Ref) Stop() {
	if r.system == nil {
		return
	}
	r.system.Stop(r.id)
}

// Status reports whether the actor is still running. Unknown and inert refs
// report StatusStopped.
func (r Ref) Status() Status {
	if r.system == nil {
		return StatusStopped
	}
	c, ok := r.system.cell(r.id)
	if !ok {
		return StatusStopped
	}
	return c.currentStatus()
}

// Snapshot returns the actor's last published snapshot. ok is false if the
// behavior has not reported any state yet, or the actor is gone.
func (r Ref) Snapshot() (snap Snapshot, ok bool) {
	if r.system == nil {
		return Snapshot{}, false
	}
	c, found := r.system.cell(r.id)
	if !found {
		return Snapshot{}, false
	}
	return c.lastSnapshot()
}

// Subscribe registers fn to be called on every snapshot the actor publishes,
// from the actor's own goroutine; fn must not block. Subscribing to a stopped
// actor returns an inert subscription.
func (r Ref) Subscribe(fn func(Snapshot)) *Subscription {
	if r.system == nil {
		return &Subscription{}
	}
	c, ok := r.system.cell(r.id)
	if !ok {
		return &Subscription{}
	}
	return c.subscribe(fn)
}

// Subscription is a handle to an active snapshot subscription.
type Subscription struct {
	cancel func()
	once   sync.Once
}

// Unsubscribe tears the subscription down. Idempotent.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
