package spawn

// behavior is the variant-specific logic of an actor. The runtime calls it
// from the owning cell's goroutine only: start when the boot envelope is
// processed, receive for each user event, dispose when the actor stops.
// start and receive report whether the actor should keep running.
type behavior interface {
	start(c *cell) (live bool)
	receive(c *cell, ev Event) (live bool)
	dispose(c *cell)
}

// Descriptor describes how to build one kind of behavior. The four
// constructors — FromMachine, FromPromise, FromCallback, FromObservable —
// are the only way to obtain one, which keeps the set of behavior kinds
// closed. A descriptor can be spawned any number of times; every spawn gets
// a fresh behavior instance.
type Descriptor struct {
	kind string
	make func() behavior
}

// Kind names the behavior variant: "machine", "promise", "callback" or
// "observable".
func (d *Descriptor) Kind() string {
	return d.kind
}
