package spawn

// Event is the unit of communication between actors. Payload is opaque to the
// runtime; only behaviors interpret it.
type Event struct {
	Type    string
	Payload any
}

// Event types reserved for messages the runtime delivers to a parent on
// behalf of its children. They arrive as ordinary events, indistinguishable
// from externally sourced ones at the parent's receive loop.
const (
	// DoneEventType reports a child that finished on its own: a fulfilled
	// promise, a completed stream, or a machine reaching a final state.
	DoneEventType = "actor.done"
	// ErrorEventType reports a child behavior fault: a rejected promise, a
	// failed stream, or a panic inside the behavior.
	ErrorEventType = "actor.error"
	// EmittedEventType wraps each value produced by an observable child.
	EmittedEventType = "actor.emitted"
	// UpdateEventType notifies a parent that a sync-enabled child published a
	// new snapshot.
	UpdateEventType = "actor.update"
)

// Done is the payload of a DoneEventType event.
type Done struct {
	Ref    Ref
	Output any
}

// Fault is the payload of an ErrorEventType event.
type Fault struct {
	Ref Ref
	Err error
}

// Emitted is the payload of an EmittedEventType event.
type Emitted struct {
	Ref   Ref
	Value any
}

// Update is the payload of an UpdateEventType event.
type Update struct {
	Ref      Ref
	Snapshot Snapshot
}
