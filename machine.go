package spawn

// MachineLogic is the transition half of a machine actor. The statechart
// interpreter that authors it lives outside this module; the runtime only
// drives it through these two calls. Both run inside an atomic step with a
// live *Step capability, which is the sole way a machine spawns children,
// stops them, or sends messages. Implementations must keep all mutable state
// in the state value they return, never on the receiver: one MachineLogic may
// back any number of spawned actors.
type MachineLogic interface {
	// Initial returns the machine's starting state. final reports whether
	// the machine starts in a final state and should stop immediately.
	Initial(step *Step) (state any, final bool)

	// Transition feeds one event into the machine and returns the next
	// state. final reports that a final state was reached; the actor then
	// sends a done event to its parent and stops itself.
	Transition(state any, ev Event, step *Step) (next any, final bool)
}

// MachineFunc adapts a bare transition function into MachineLogic.
func MachineFunc(initial any, transition func(state any, ev Event, step *Step) (next any, final bool)) MachineLogic {
	return &funcLogic{initial: initial, transition: transition}
}

type funcLogic struct {
	initial    any
	transition func(state any, ev Event, step *Step) (any, bool)
}

func (l *funcLogic) Initial(*Step) (any, bool) {
	return l.initial, false
}

func (l *funcLogic) Transition(state any, ev Event, step *Step) (any, bool) {
	return l.transition(state, ev, step)
}

// FromMachine returns a descriptor for an actor embedding a nested transition
// system. Machine actors publish a snapshot after every transition and are
// the only behavior kind that can spawn further actors, to unbounded depth.
func FromMachine(logic MachineLogic) *Descriptor {
	return &Descriptor{
		kind: "machine",
		make: func() behavior { return &machineBehavior{logic: logic} },
	}
}

type machineBehavior struct {
	logic MachineLogic
	state any
}

func (b *machineBehavior) start(c *cell) bool {
	step := newStep(c)
	state, final := b.logic.Initial(step)
	step.expire()
	b.state = state
	c.publish(state)
	step.flush()
	if final {
		c.finish(state)
		return false
	}
	return true
}

func (b *machineBehavior) receive(c *cell, ev Event) bool {
	step := newStep(c)
	next, final := b.logic.Transition(b.state, ev, step)
	step.expire()
	b.state = next
	c.publish(next)
	step.flush()
	if final {
		c.finish(next)
		return false
	}
	return true
}

func (b *machineBehavior) dispose(*cell) {}
