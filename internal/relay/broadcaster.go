package relay

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/fortran01/notifyrelay/internal/metrics"
)

// Broadcaster fans one message out to every registered connection. Delivery is
// best-effort, at-most-once per connected client per call: no retry, no
// buffering for clients that are not currently connected. Sends are
// dispatched sequentially, but each Send is a non-blocking bounded enqueue,
// so one slow or severed connection cannot delay the others.
type Broadcaster struct {
	registry *Registry
	clock    clockwork.Clock
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, clock clockwork.Clock) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		clock:    clock,
	}
}

// Publish broadcasts a plain notification string. This is the entry point the
// event source adapter calls once it has validated and decoded an inbound
// event.
func (b *Broadcaster) Publish(text string) {
	b.Broadcast(Message{Data: text})
}

// Broadcast attempts delivery of msg to every connection in the current
// registry snapshot. A failed send triggers that connection's own failure
// path (Fail) and the loop continues: every snapshotted connection is
// attempted before Broadcast returns.
func (b *Broadcaster) Broadcast(msg Message) {
	start := b.clock.Now()
	conns := b.registry.Snapshot()

	metrics.RelayBroadcastsTotal.Inc()

	for _, c := range conns {
		if err := c.Send(msg); err != nil {
			metrics.RelayDeliveriesTotal.WithLabelValues(c.Transport(), "error").Inc()
			slog.Warn("Dropping connection after failed send",
				"conn_id", c.ID().String(),
				"transport", c.Transport(),
				"error", err,
			)
			c.Fail("send failed: " + err.Error())
			continue
		}
		metrics.RelayDeliveriesTotal.WithLabelValues(c.Transport(), "ok").Inc()
	}

	metrics.RelayBroadcastDuration.Observe(b.clock.Since(start).Seconds())
	slog.Debug("Broadcast complete", "recipients", len(conns))
}

// Stop gracefully closes every registered connection. Called once during
// process shutdown; an in-flight Broadcast finishes the snapshot it already
// took, but terminated connections absorb further sends as failures.
func (b *Broadcaster) Stop(reason string) {
	conns := b.registry.Snapshot()
	slog.Info("Broadcaster shutting down", "connections", len(conns))
	for _, c := range conns {
		c.Shutdown(reason)
	}
}
