// Package spawn is an actor runtime for dynamically spawned behaviors.
//
// An actor is an independently addressable unit of behavior with private
// state, reachable only through its Ref. Four behavior kinds exist: machines
// (nested transition systems that can themselves spawn children), promises
// (one asynchronous computation, one terminal event), callbacks (ambient
// effects with injected emit/receive capabilities) and observables (external
// streams forwarded to the parent).
//
// Every actor owns a FIFO mailbox drained by a single goroutine, so no two
// messages to the same actor are ever processed concurrently. Sends are
// fire-and-forget, ordered per target, and silently dropped when the target
// is gone. Parents may opt into sync at spawn time to have a child's state
// snapshots mirrored into their own mailbox.
package spawn
