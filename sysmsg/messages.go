package sysmsg

// Boot is the first entry pushed to every new actor's mailbox; processing it
// starts the behavior on the actor's own goroutine.
type Boot struct{}

func (Boot) envelope() {}

// Settle reports the outcome of a promise behavior's computation. Err is nil
// on fulfillment.
type Settle struct {
	Output any
	Err    error
}

func (Settle) envelope() {}

// Emit carries an event a callback behavior wants forwarded to its parent.
// Routing emits through the emitting actor's own mailbox is what guarantees
// nothing escapes after the actor is stopped.
type Emit struct {
	Event any
}

func (Emit) envelope() {}

// StreamNext carries one value produced by an observable behavior's stream.
type StreamNext struct {
	Value any
}

func (StreamNext) envelope() {}

// StreamDone signals that an observable behavior's stream completed (Err nil)
// or failed.
type StreamDone struct {
	Err error
}

func (StreamDone) envelope() {}

var (
	_ Envelope = Boot{}
	_ Envelope = Settle{}
	_ Envelope = Emit{}
	_ Envelope = StreamNext{}
	_ Envelope = StreamDone{}
)
