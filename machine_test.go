package spawn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterLogic counts "INC" events and finishes on "FINISH".
func counterLogic() MachineLogic {
	return MachineFunc(0, func(state any, ev Event, step *Step) (any, bool) {
		count := state.(int)
		switch ev.Type {
		case "INC":
			return count + 1, false
		case "FINISH":
			return count, true
		default:
			return count, false
		}
	})
}

func TestMachinePublishesSnapshots(t *testing.T) {
	s := NewSystem("test")
	defer s.Shutdown()

	ref, err := s.Spawn(FromMachine(counterLogic()))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ref.Send(Event{Type: "INC"})
	}
	require.Eventually(t, func() bool {
		snap, ok := ref.Snapshot()
		return ok && snap.State == 3
	}, 2*time.Second, 5*time.Millisecond)

	snap, ok := ref.Snapshot()
	require.True(t, ok)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.NoError(t, snap.Err)
}

func TestMachineFinalStateSendsDoneAndStops(t *testing.T) {
	s := NewSystem("test")
	defer s.Shutdown()

	parentDesc, events, refs := newHarness()
	parent, err := s.Spawn(parentDesc)
	require.NoError(t, err)

	child := spawnChild(t, parent, refs, FromMachine(counterLogic()))
	child.Send(Event{Type: "INC"})
	child.Send(Event{Type: "INC"})
	child.Send(Event{Type: "FINISH"})

	ev := waitEvent(t, events)
	require.Equal(t, DoneEventType, ev.Type)
	done := ev.Payload.(Done)
	assert.Equal(t, child.ID(), done.Ref.ID())
	assert.Equal(t, 2, done.Output)
	require.Eventually(t, func() bool {
		return child.Status() == StatusStopped
	}, 2*time.Second, 5*time.Millisecond)
}

func TestMachineSendParent(t *testing.T) {
	s := NewSystem("test")
	defer s.Shutdown()

	parentDesc, events, refs := newHarness()
	parent, err := s.Spawn(parentDesc)
	require.NoError(t, err)

	echo := MachineFunc(nil, func(state any, ev Event, step *Step) (any, bool) {
		step.SendParent(Event{Type: "PONG", Payload: ev.Payload})
		return state, false
	})
	child := spawnChild(t, parent, refs, FromMachine(echo))

	child.Send(Event{Type: "PING", Payload: 7})
	ev := waitEvent(t, events)
	assert.Equal(t, "PONG", ev.Type)
	assert.Equal(t, 7, ev.Payload)
}

func TestMachineSpawnsNestedTree(t *testing.T) {
	s := NewSystem("test")
	defer s.Shutdown()

	grandchildren := make(chan Ref, 1)
	// a machine that spawns its own child during Initial
	nested := FromMachine(&spawningLogic{refs: grandchildren})

	parentDesc, _, refs := newHarness()
	parent, err := s.Spawn(parentDesc)
	require.NoError(t, err)

	child := spawnChild(t, parent, refs, nested)
	grandchild := waitRef(t, grandchildren)

	assert.Equal(t, StatusRunning, grandchild.Status())
	assert.True(t, s.Children(child).Contains(grandchild.ID()))

	child.Stop()
	assert.Equal(t, StatusStopped, grandchild.Status())
}

type spawningLogic struct {
	refs chan Ref
}

func (l *spawningLogic) Initial(step *Step) (any, bool) {
	ref, err := step.Spawn(FromMachine(counterLogic()))
	if err == nil {
		l.refs <- ref
	}
	return nil, false
}

func (l *spawningLogic) Transition(state any, ev Event, step *Step) (any, bool) {
	return state, false
}

func TestSpawnOutsideStepYieldsInertRef(t *testing.T) {
	s := NewSystem("test", WithLogger(func(string, ...any) {}))
	defer s.Shutdown()

	leaked := make(chan *Step, 1)
	logic := MachineFunc(nil, func(state any, ev Event, step *Step) (any, bool) {
		leaked <- step
		return state, false
	})
	ref, err := s.Spawn(FromMachine(logic))
	require.NoError(t, err)

	ref.Send(Event{Type: "poke"})
	var step *Step
	select {
	case step = <-leaked:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the transition to run")
	}

	// wait for the step to expire once the transition commits
	require.Eventually(t, func() bool {
		return !step.alive.Load()
	}, 2*time.Second, time.Millisecond)

	before := s.Stats().Spawned
	orphan, err := step.Spawn(noopChild())
	require.NoError(t, err)
	assert.Empty(t, orphan.ID())
	assert.Equal(t, StatusStopped, orphan.Status())
	assert.Equal(t, before, s.Stats().Spawned)
}

func TestSendToResolvesTargetAtCommit(t *testing.T) {
	s := NewSystem("test")
	defer s.Shutdown()

	delivered := make(chan string, 1)
	sink := FromCallback(func(emit func(Event), receive func(func(Event))) func() {
		receive(func(ev Event) { delivered <- ev.Type })
		return nil
	})
	sinkRef, err := s.Spawn(sink)
	require.NoError(t, err)

	logic := MachineFunc(nil, func(state any, ev Event, step *Step) (any, bool) {
		var target Ref
		// the resolver runs only when the step commits, after this
		// function has returned and target has been assigned
		step.SendTo(func() Ref { return target }, Event{Type: "resolved"})
		target = sinkRef
		return state, false
	})
	machine, err := s.Spawn(FromMachine(logic))
	require.NoError(t, err)

	machine.Send(Event{Type: "go"})
	select {
	case typ := <-delivered:
		assert.Equal(t, "resolved", typ)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the lazily resolved send")
	}
}

func TestStopChildFromStep(t *testing.T) {
	s := NewSystem("test")
	defer s.Shutdown()

	parentDesc, _, refs := newHarness()
	parent, err := s.Spawn(parentDesc)
	require.NoError(t, err)

	child := spawnChild(t, parent, refs, noopChild())
	parent.Send(Event{Type: "stop", Payload: stopRequest{ref: child}})

	require.Eventually(t, func() bool {
		return child.Status() == StatusStopped
	}, 2*time.Second, 5*time.Millisecond)
}

func TestMachinePanicBecomesErrorEvent(t *testing.T) {
	s := NewSystem("test", WithLogger(func(string, ...any) {}))
	defer s.Shutdown()

	parentDesc, events, refs := newHarness()
	parent, err := s.Spawn(parentDesc)
	require.NoError(t, err)

	faulty := MachineFunc(nil, func(state any, ev Event, step *Step) (any, bool) {
		panic("boom")
	})
	child := spawnChild(t, parent, refs, FromMachine(faulty))
	child.Send(Event{Type: "anything"})

	ev := waitEvent(t, events)
	require.Equal(t, ErrorEventType, ev.Type)
	fault := ev.Payload.(Fault)
	assert.Equal(t, child.ID(), fault.Ref.ID())
	assert.ErrorContains(t, fault.Err, "boom")
	require.Eventually(t, func() bool {
		return child.Status() == StatusStopped
	}, 2*time.Second, 5*time.Millisecond)
}
