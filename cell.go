package spawn

import (
	"fmt"
	"sync"

	uatomic "go.uber.org/atomic"

	"github.com/corvid-labs/spawn/internal/mailbox"
	"github.com/corvid-labs/spawn/sysmsg"
)

// cell is the runtime shell around one behavior: it owns the mailbox, the
// lifecycle status, the last published snapshot and the sync caches. All
// behavior calls happen on the cell's single goroutine.
type cell struct {
	id       string
	parentID string
	system   *System
	mbox     mailbox.Mailbox
	behavior behavior

	status   uatomic.Int32
	stopOnce sync.Once

	stateMu   sync.Mutex
	snapshot  Snapshot
	published bool
	terminal  bool
	subs      map[int]func(Snapshot)
	nextSubID int

	syncMu     sync.Mutex
	syncStates map[string]Snapshot
	syncSubs   map[string]*Subscription
}

func newCell(system *System, id, parentID string, b behavior, mbox mailbox.Mailbox) *cell {
	return &cell{
		id:       id,
		parentID: parentID,
		system:   system,
		mbox:     mbox,
		behavior: b,
		subs:     make(map[int]func(Snapshot)),
	}
}

func (c *cell) ref() Ref {
	return Ref{id: c.id, system: c.system}
}

func (c *cell) currentStatus() Status {
	return Status(c.status.Load())
}

// run drains the mailbox on the cell's own goroutine. A panic escaping the
// behavior is contained here and converted to a terminal error event for the
// parent; it never crosses the actor boundary as a raised fault.
func (c *cell) run() {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.fail(fmt.Errorf("spawn: behavior panic: %v", r))
			}
		}()
		c.mbox.Receive(c.handle)
	}()
}

func (c *cell) handle(message any) bool {
	if c.currentStatus() != StatusRunning {
		return false
	}
	switch msg := message.(type) {
	case sysmsg.Boot:
		return c.behavior.start(c)
	case sysmsg.Settle:
		if msg.Err != nil {
			c.fail(msg.Err)
		} else {
			c.finish(msg.Output)
		}
		return false
	case sysmsg.Emit:
		if ev, ok := msg.Event.(Event); ok {
			c.sendParent(ev)
		}
		return true
	case sysmsg.StreamNext:
		c.publish(msg.Value)
		c.sendParent(Event{Type: EmittedEventType, Payload: Emitted{Ref: c.ref(), Value: msg.Value}})
		return true
	case sysmsg.StreamDone:
		if msg.Err != nil {
			c.fail(msg.Err)
		} else {
			c.finish(c.lastState())
		}
		return false
	case Event:
		return c.behavior.receive(c, msg)
	default:
		c.system.logf("spawn: actor %s dropped unexpected message of type %T", c.id, message)
		return true
	}
}

func (c *cell) sendParent(ev Event) {
	if c.parentID == "" {
		return
	}
	c.system.Send(Ref{id: c.parentID, system: c.system}, ev)
}

// publish records a new running snapshot and notifies subscribers from the
// calling goroutine.
func (c *cell) publish(state any) {
	c.notify(Snapshot{Status: StatusRunning, State: state}, false)
}

// publishTerminal records the final snapshot exactly once.
func (c *cell) publishTerminal(state any, err error) {
	c.notify(Snapshot{Status: StatusStopped, State: state, Err: err}, true)
}

func (c *cell) notify(snap Snapshot, terminal bool) {
	c.stateMu.Lock()
	if c.terminal {
		c.stateMu.Unlock()
		return
	}
	c.snapshot = snap
	c.published = true
	c.terminal = terminal
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	if terminal {
		c.subs = make(map[int]func(Snapshot))
	}
	c.stateMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (c *cell) lastSnapshot() (Snapshot, bool) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.snapshot, c.published
}

func (c *cell) lastState() any {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.snapshot.State
}

func (c *cell) subscribe(fn func(Snapshot)) *Subscription {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.terminal {
		return &Subscription{}
	}
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	return &Subscription{cancel: func() {
		c.stateMu.Lock()
		delete(c.subs, id)
		c.stateMu.Unlock()
	}}
}

// finish ends the actor on its own terms: terminal snapshot, one done event
// to the parent, then stop.
func (c *cell) finish(output any) {
	c.publishTerminal(output, nil)
	c.sendParent(Event{Type: DoneEventType, Payload: Done{Ref: c.ref(), Output: output}})
	c.stop()
}

// fail converts a behavior fault into a terminal error event for the parent.
func (c *cell) fail(err error) {
	c.publishTerminal(c.lastState(), err)
	c.sendParent(Event{Type: ErrorEventType, Payload: Fault{Ref: c.ref(), Err: err}})
	c.stop()
}

// stop is terminal and idempotent. Live descendants are stopped first, then
// the behavior's own resources are released; a fault during cleanup is logged
// and does not keep the actor alive.
func (c *cell) stop() {
	c.stopOnce.Do(func() {
		c.status.Store(int32(StatusStopped))
		for _, childID := range c.system.childIDs(c.id) {
			c.system.Stop(childID)
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.system.logf("spawn: dispose fault in actor %s: %v", c.id, r)
				}
			}()
			c.behavior.dispose(c)
		}()
		c.dropSyncSubs()
		c.mbox.Dispose()
		c.publishTerminal(c.lastState(), nil)
		c.system.deregister(c.id)
	})
}
