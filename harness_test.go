package spawn

import (
	"testing"
	"time"
)

// spawnRequest asks the harness machine to spawn a child on behalf of the test.
type spawnRequest struct {
	desc *Descriptor
	opts []SpawnOption
}

// stopRequest asks the harness machine to stop one of its children.
type stopRequest struct {
	ref Ref
}

// newHarness builds a parent machine that spawns children on demand and
// forwards every other event it receives to the events channel, in arrival
// order.
func newHarness() (*Descriptor, chan Event, chan Ref) {
	events := make(chan Event, 256)
	refs := make(chan Ref, 16)
	logic := MachineFunc(nil, func(state any, ev Event, step *Step) (any, bool) {
		switch payload := ev.Payload.(type) {
		case spawnRequest:
			ref, err := step.Spawn(payload.desc, payload.opts...)
			if err != nil {
				events <- Event{Type: "spawn.failed", Payload: err}
				return state, false
			}
			refs <- ref
		case stopRequest:
			step.StopChild(payload.ref)
		default:
			events <- ev
		}
		return state, false
	})
	return FromMachine(logic), events, refs
}

func spawnChild(t *testing.T, parent Ref, refs chan Ref, desc *Descriptor, opts ...SpawnOption) Ref {
	t.Helper()
	parent.Send(Event{Type: "spawn", Payload: spawnRequest{desc: desc, opts: opts}})
	return waitRef(t, refs)
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return Event{}
	}
}

func waitRef(t *testing.T, ch <-chan Ref) Ref {
	t.Helper()
	select {
	case ref := <-ch:
		return ref
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a spawned ref")
		return Ref{}
	}
}

// expectQuiet asserts that no event arrives within d.
func expectQuiet(t *testing.T, ch <-chan Event, d time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got %q", ev.Type)
	case <-time.After(d):
	}
}
