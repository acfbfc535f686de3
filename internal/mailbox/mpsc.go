package mailbox

import (
	"sync"
	"sync/atomic"

	"github.com/t3rm1n4l/go-mpscqueue"
)

const (
	statusIdle int32 = iota
	statusProcessing
)

// mpscMailbox is the default mailbox: an unbounded lock-free multi-producer
// single-consumer queue. Producers flip the idle/processing flag and signal
// the consumer only on the idle -> processing edge, so a busy consumer is
// never signaled redundantly.
type mpscMailbox struct {
	queue    *mpsc.MPSCQueue
	done     chan struct{}
	status   int32
	signal   chan struct{}
	disposed sync.Once
}

// Unbounded returns an unbounded MPSC mailbox.
func Unbounded() Mailbox {
	return &mpscMailbox{
		queue:  mpsc.New(),
		done:   make(chan struct{}),
		status: statusIdle,
		signal: make(chan struct{}),
	}
}

func (m *mpscMailbox) Push(message any) {
	select {
	case <-m.done:
		return
	default:
		m.queue.Push(message)
		if atomic.CompareAndSwapInt32(&m.status, statusIdle, statusProcessing) {
			select {
			case m.signal <- struct{}{}:
			case <-m.done:
			}
		}
	}
}

func (m *mpscMailbox) Receive(handler Handler) {
	for {
		select {
		case <-m.done:
			return
		case <-m.signal:
		}
		for {
			for m.queue.Size() != 0 {
				select {
				case <-m.done:
					return
				default:
				}
				if !handler(m.queue.Pop()) {
					return
				}
			}
			atomic.StoreInt32(&m.status, statusIdle)
			// a producer may have pushed between the drain and the flag
			// reset without signaling; reclaim the queue if so.
			if m.queue.Size() == 0 {
				break
			}
			if !atomic.CompareAndSwapInt32(&m.status, statusIdle, statusProcessing) {
				break
			}
		}
	}
}

func (m *mpscMailbox) Dispose() {
	m.disposed.Do(func() {
		close(m.done)
	})
}
