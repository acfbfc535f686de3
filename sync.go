package spawn

// enableSync wires the sync bridge for one parent/child pair: the parent is
// subscribed to the child's snapshot stream, and every update both refreshes
// the parent-side cache and lands in the parent's mailbox as an ordinary
// UpdateEventType event. The parent re-derives through its normal transition
// pipeline; there is no side channel.
func (s *System) enableSync(parent *cell, child Ref) {
	sub := child.Subscribe(func(snap Snapshot) {
		parent.cacheSync(child.id, snap)
		s.Send(parent.ref(), Event{Type: UpdateEventType, Payload: Update{Ref: child, Snapshot: snap}})
	})
	parent.trackSyncSub(child.id, sub)
}

// cacheSync stores the child's last-known snapshot on the parent side.
func (c *cell) cacheSync(childID string, snap Snapshot) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()
	if c.syncStates == nil {
		c.syncStates = make(map[string]Snapshot)
	}
	c.syncStates[childID] = snap
}

// syncedSnapshot reads the cached snapshot of a sync-enabled child. Absent
// entries (sync not requested, or nothing reported yet) yield ok=false.
func (c *cell) syncedSnapshot(childID string) (Snapshot, bool) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()
	snap, ok := c.syncStates[childID]
	return snap, ok
}

func (c *cell) trackSyncSub(childID string, sub *Subscription) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()
	if c.syncSubs == nil {
		c.syncSubs = make(map[string]*Subscription)
	}
	c.syncSubs[childID] = sub
}

// dropSyncSubs tears down every sync subscription the cell holds on its
// children. Called once, on stop.
func (c *cell) dropSyncSubs() {
	c.syncMu.Lock()
	subs := c.syncSubs
	c.syncSubs = nil
	c.syncMu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
