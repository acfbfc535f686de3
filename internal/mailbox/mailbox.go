package mailbox

// Handler consumes one mailbox entry. Returning false stops the receive loop.
type Handler func(message any) (loop bool)

// Mailbox is a per-actor FIFO queue. Push never blocks the caller; entries
// pushed after Dispose are dropped. A single goroutine drains the mailbox
// through Receive, which is what serializes an actor's message processing.
type Mailbox interface {
	Push(message any)
	Receive(handler Handler)
	Dispose()
}
