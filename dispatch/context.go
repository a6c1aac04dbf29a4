package dispatch

import (
	"time"

	"github.com/ahwlsqja/bft-runtime-core/identity"
	"github.com/ahwlsqja/bft-runtime-core/timer"
)

// Context is the per-callback effect handle through which a receiver
// sends, broadcasts, loopbacks, and manages timers. Dispatch constructs
// one fresh for each callback invocation; there is deliberately no way to
// store a Context past the call that received it, keeping it a borrowed
// handle rather than a second mutable path into the event loop.
type Context[M Message] struct {
	d *Dispatch[M]
}

// SendTo queues msg for delivery to a single identity. Fire-and-forget:
// encoding or routing failures are silent, matching egress I/O's "logged,
// dropped" error class rather than anything the caller can react to
// synchronously.
func (c *Context[M]) SendTo(to identity.ID, msg M) {
	c.d.sendTo(to, msg)
}

// Broadcast queues msg for delivery to every known identity except self.
func (c *Context[M]) Broadcast(msg M) {
	c.d.broadcast(msg)
}

// Loopback signs msg with this replica's own key and re-injects it into
// the ingress queue as if it had just arrived over the network. Delivery
// happens strictly after the current callback returns, on some later
// Dispatch iteration, through the normal verify-then-deliver path.
func (c *Context[M]) Loopback(msg M) {
	c.d.loopback(msg)
}

// SetTimer schedules token to be delivered to OnTimer after d elapses.
func (c *Context[M]) SetTimer(d time.Duration, token Token) timer.ID {
	return c.d.setTimer(d, token)
}

// UnsetTimer cancels a pending timer. Safe to call with an id that has
// already fired or was never issued.
func (c *Context[M]) UnsetTimer(id timer.ID) {
	c.d.unsetTimer(id)
}

// Now returns Dispatch's monotonic notion of the current time.
func (c *Context[M]) Now() time.Time {
	return c.d.now()
}

// Identity returns this Dispatch's own identity.
func (c *Context[M]) Identity() identity.ID {
	return c.d.identities.Self()
}
