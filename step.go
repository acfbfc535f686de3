package spawn

import uatomic "go.uber.org/atomic"

// Step is the spawn capability handed to machine logic for the duration of a
// single atomic transition. Spawning, sending and stopping children all go
// through it, which is what makes orphaned spawns hard to write: a Step
// expires as soon as its transition returns, and an expired Step registers
// nothing — it degrades to a logged no-op yielding an inert Ref.
//
// Sends and stops requested during the step are applied only after the step
// commits, so a target never observes a half-applied transition.
type Step struct {
	c       *cell
	alive   uatomic.Bool
	effects []func()
}

func newStep(c *cell) *Step {
	s := &Step{c: c}
	s.alive.Store(true)
	return s
}

func (s *Step) expire() {
	s.alive.Store(false)
}

func (s *Step) flush() {
	for _, fn := range s.effects {
		fn()
	}
	s.effects = nil
}

// Self returns the ref of the machine actor this step belongs to.
func (s *Step) Self() Ref {
	return s.c.ref()
}

// Parent returns the ref of the spawning actor, if there is one.
func (s *Step) Parent() (Ref, bool) {
	if s.c.parentID == "" {
		return Ref{}, false
	}
	return Ref{id: s.c.parentID, system: s.c.system}, true
}

// Spawn creates a child actor of the stepping machine and returns its ref
// immediately; the child's behavior starts asynchronously. A name collision
// with a live actor fails with DuplicateIDError.
func (s *Step) Spawn(d *Descriptor, opts ...SpawnOption) (Ref, error) {
	if !s.alive.Load() {
		s.c.system.logf("spawn: Spawn called outside of a transition step by actor %s; returning an inert ref", s.c.id)
		return Ref{}, nil
	}
	return s.c.system.register(s.c.id, d, opts...)
}

// Send queues an event for target, delivered after the step commits.
func (s *Step) Send(target Ref, ev Event) {
	s.SendTo(func() Ref { return target }, ev)
}

// SendTo queues an event whose target is resolved when the send is applied
// at step commit, not when the action is authored, so the same static action
// can address different actors depending on current state.
func (s *Step) SendTo(resolve func() Ref, ev Event) {
	if !s.alive.Load() {
		s.c.system.logf("spawn: send outside of a transition step by actor %s was dropped", s.c.id)
		return
	}
	s.effects = append(s.effects, func() {
		resolve().Send(ev)
	})
}

// SendParent queues an event for the spawning actor. No-op for root actors.
func (s *Step) SendParent(ev Event) {
	if !s.alive.Load() {
		s.c.system.logf("spawn: send outside of a transition step by actor %s was dropped", s.c.id)
		return
	}
	s.effects = append(s.effects, func() {
		s.c.sendParent(ev)
	})
}

// StopChild stops an actor at step commit. Stopping an already stopped actor
// is a no-op.
func (s *Step) StopChild(ref Ref) {
	if !s.alive.Load() {
		s.c.system.logf("spawn: stop outside of a transition step by actor %s was dropped", s.c.id)
		return
	}
	s.effects = append(s.effects, func() {
		ref.Stop()
	})
}

// Synced returns the cached snapshot of a sync-enabled child. ok is false
// when the child was spawned without WithSync or has not reported state yet —
// never a stale or zero value.
func (s *Step) Synced(child Ref) (Snapshot, bool) {
	return s.c.syncedSnapshot(child.id)
}
