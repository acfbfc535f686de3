// Package sysmsg defines the runtime envelopes that travel through an actor's
// mailbox alongside user events. Behaviors never see these directly; the cell
// driving the mailbox interprets them.
package sysmsg

type Envelope interface {
	envelope()
}
