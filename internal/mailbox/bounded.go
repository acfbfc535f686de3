package mailbox

import (
	"log"

	"github.com/Workiva/go-datastructures/queue"
)

// boundedMailbox backs an actor with a fixed-capacity ring buffer. Push stays
// non-blocking: when the buffer is full the newest message is dropped with a
// diagnostic instead of stalling the sender.
type boundedMailbox struct {
	ring *queue.RingBuffer
}

// Bounded returns a mailbox holding at most capacity pending messages.
func Bounded(capacity uint64) Mailbox {
	return &boundedMailbox{
		ring: queue.NewRingBuffer(capacity),
	}
}

func (m *boundedMailbox) Push(message any) {
	ok, err := m.ring.Offer(message)
	if err != nil {
		// disposed, the actor is stopped
		return
	}
	if !ok {
		log.Println("mailbox: bounded queue is full, dropping message")
	}
}

func (m *boundedMailbox) Receive(handler Handler) {
	for {
		msg, err := m.ring.Get()
		if err != nil {
			return
		}
		if !handler(msg) {
			return
		}
	}
}

func (m *boundedMailbox) Dispose() {
	m.ring.Dispose()
}
