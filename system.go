package spawn

import (
	"log"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/rs/xid"
	uatomic "go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/corvid-labs/spawn/internal/mailbox"
	"github.com/corvid-labs/spawn/sysmsg"
)

// System is the process-wide actor registry: it maps live actor ids to their
// cells, owns lifecycle, and routes every send. Ids are unique among live
// actors and become eligible for reuse once an actor fully stops.
type System struct {
	name string
	logf func(format string, args ...any)

	mu    sync.RWMutex
	cells map[string]*cell

	down uatomic.Bool

	spawned uatomic.Int64
	reaped  uatomic.Int64
	sent    uatomic.Int64
	dropped uatomic.Int64
}

// SystemOption configures a System.
type SystemOption func(*System)

// WithLogger replaces the diagnostic sink. The default is log.Printf.
func WithLogger(logf func(format string, args ...any)) SystemOption {
	return func(s *System) {
		s.logf = logf
	}
}

// NewSystem creates an empty actor system.
func NewSystem(name string, opts ...SystemOption) *System {
	s := &System{
		name:  name,
		logf:  log.Printf,
		cells: make(map[string]*cell),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the system's name.
func (s *System) Name() string {
	return s.name
}

type spawnOptions struct {
	name    string
	sync    bool
	bounded uint64
}

// SpawnOption configures a single spawn.
type SpawnOption func(*spawnOptions)

// WithName requests an explicit actor id instead of a generated one.
// Spawning fails with DuplicateIDError while the name is held by a live
// actor.
func WithName(name string) SpawnOption {
	return func(o *spawnOptions) {
		o.name = name
	}
}

// WithSync subscribes the parent to the child's snapshot stream: every
// snapshot the child publishes is cached on the parent and mirrored as one
// UpdateEventType event in the parent's mailbox. That is one internal event
// per child state change; prefer explicit parent-directed messages from the
// child when that chatter is unwanted.
func WithSync() SpawnOption {
	return func(o *spawnOptions) {
		o.sync = true
	}
}

// WithBoundedMailbox caps the actor's mailbox at capacity pending messages,
// dropping the newest on overflow. The default mailbox is unbounded.
func WithBoundedMailbox(capacity uint64) SpawnOption {
	return func(o *spawnOptions) {
		o.bounded = capacity
	}
}

// Spawn creates a root actor: one with no parent, typically the outermost
// interpreter. Actors below it are spawned by machine logic through Step.
func (s *System) Spawn(d *Descriptor, opts ...SpawnOption) (Ref, error) {
	return s.register("", d, opts...)
}

// register allocates an id, installs the cell and boots the behavior. The
// ref is returned synchronously while the behavior runs asynchronously on
// the cell's goroutine.
func (s *System) register(parentID string, d *Descriptor, opts ...SpawnOption) (Ref, error) {
	if s.down.Load() {
		return Ref{}, ErrSystemStopped
	}
	var cfg spawnOptions
	for _, opt := range opts {
		opt(&cfg)
	}
	id := cfg.name
	if id == "" {
		id = xid.New().String()
	}

	var mbox mailbox.Mailbox
	if cfg.bounded > 0 {
		mbox = mailbox.Bounded(cfg.bounded)
	} else {
		mbox = mailbox.Unbounded()
	}
	c := newCell(s, id, parentID, d.make(), mbox)

	s.mu.Lock()
	if _, live := s.cells[id]; live {
		s.mu.Unlock()
		mbox.Dispose()
		return Ref{}, &DuplicateIDError{Name: id}
	}
	s.cells[id] = c
	s.mu.Unlock()
	if s.down.Load() {
		// lost the race against Shutdown
		c.stop()
		return Ref{}, ErrSystemStopped
	}
	s.spawned.Inc()

	c.run()
	if cfg.sync && parentID != "" {
		if parent, ok := s.cell(parentID); ok {
			s.enableSync(parent, c.ref())
		}
	}
	// the boot envelope is the first thing the cell processes, after the
	// sync bridge is in place so no snapshot is missed
	c.mbox.Push(sysmsg.Boot{})
	return c.ref(), nil
}

// Lookup resolves a live actor id to its ref.
func (s *System) Lookup(id string) (Ref, bool) {
	c, ok := s.cell(id)
	if !ok {
		return Ref{}, false
	}
	return c.ref(), true
}

// Send enqueues ev on the target's mailbox and returns immediately. Sends to
// a stopped or unknown actor are dropped without notice.
func (s *System) Send(ref Ref, ev Event) {
	c, ok := s.cell(ref.id)
	if !ok || c.currentStatus() != StatusRunning {
		s.dropped.Inc()
		return
	}
	s.sent.Inc()
	c.mbox.Push(ev)
}

// Stop terminates the actor with the given id and its live descendants.
// Idempotent: unknown and already stopped ids are a no-op.
func (s *System) Stop(id string) {
	c, ok := s.cell(id)
	if !ok {
		return
	}
	c.stop()
}

// Children returns the set of live child ids of parent.
func (s *System) Children(parent Ref) mapset.Set[string] {
	return mapset.NewSet(s.childIDs(parent.id)...)
}

// Shutdown stops every live actor and rejects further spawns. Roots are torn
// down concurrently; each root cascades through its own descendants.
func (s *System) Shutdown() {
	if !s.down.CompareAndSwap(false, true) {
		return
	}
	var g errgroup.Group
	for _, id := range s.rootIDs() {
		id := id
		g.Go(func() error {
			s.Stop(id)
			return nil
		})
	}
	_ = g.Wait()
	// actors orphaned by an earlier parent stop have no root to cascade from
	for _, id := range s.liveIDs() {
		s.Stop(id)
	}
}

// Stats is a point-in-time view of the system's counters.
type Stats struct {
	Live    int
	Spawned int64
	Stopped int64
	Sent    int64
	Dropped int64
}

func (s *System) Stats() Stats {
	s.mu.RLock()
	live := len(s.cells)
	s.mu.RUnlock()
	return Stats{
		Live:    live,
		Spawned: s.spawned.Load(),
		Stopped: s.reaped.Load(),
		Sent:    s.sent.Load(),
		Dropped: s.dropped.Load(),
	}
}

func (s *System) cell(id string) (*cell, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cells[id]
	return c, ok
}

func (s *System) deregister(id string) {
	s.mu.Lock()
	_, ok := s.cells[id]
	delete(s.cells, id)
	s.mu.Unlock()
	if ok {
		s.reaped.Inc()
	}
}

func (s *System) childIDs(parentID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, c := range s.cells {
		if c.parentID == parentID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *System) rootIDs() []string {
	return s.childIDs("")
}

func (s *System) liveIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.cells))
	for id := range s.cells {
		ids = append(ids, id)
	}
	return ids
}
