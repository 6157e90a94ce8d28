package relay

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/fortran01/notifyrelay/internal/metrics"
)

// ErrDuplicateConnection indicates a Register call for a connection that is
// already a member. Under correct lifecycle use this never happens; it is a
// defensive invariant check, logged and rejected rather than crashing.
var ErrDuplicateConnection = errors.New("connection already registered")

// ErrRegistryFull indicates the configured connection limit has been reached.
var ErrRegistryFull = errors.New("connection limit reached")

// Registry is the concurrency-safe set of currently-live connections.
// Membership is the only state: a connection is a member if and only if its
// lifecycle owner believes it alive. Construct one at startup and inject it
// explicitly; there is no package-level instance.
type Registry struct {
	mu       sync.Mutex
	conns    map[Conn]struct{}
	maxConns int
}

// NewRegistry creates an empty registry. maxConns limits total membership;
// zero means unlimited.
func NewRegistry(maxConns int) *Registry {
	return &Registry{
		conns:    make(map[Conn]struct{}),
		maxConns: maxConns,
	}
}

// Register adds a connection. Returns ErrDuplicateConnection if the same
// connection is already present and ErrRegistryFull at capacity.
func (r *Registry) Register(c Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[c]; exists {
		slog.Error("Duplicate connection registration rejected",
			"conn_id", c.ID().String(),
			"transport", c.Transport(),
		)
		metrics.RelayDuplicateRegistrationsTotal.Inc()
		return ErrDuplicateConnection
	}

	if r.maxConns > 0 && len(r.conns) >= r.maxConns {
		slog.Warn("Rejecting connection: limit reached",
			"conn_id", c.ID().String(),
			"max_connections", r.maxConns,
		)
		return ErrRegistryFull
	}

	r.conns[c] = struct{}{}
	metrics.RelayRegistrationsTotal.WithLabelValues(c.Transport()).Inc()
	metrics.RelayConnectedClients.WithLabelValues(c.Transport()).Inc()
	slog.Debug("Connection registered",
		"conn_id", c.ID().String(),
		"transport", c.Transport(),
		"total", len(r.conns),
	)
	return nil
}

// Deregister removes a connection if present. Idempotent: the transport
// failure path and the explicit close path may race to remove the same entry,
// so an absent connection is a no-op, not an error.
func (r *Registry) Deregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[c]; !exists {
		return
	}

	delete(r.conns, c)
	metrics.RelayConnectedClients.WithLabelValues(c.Transport()).Dec()
	slog.Debug("Connection deregistered",
		"conn_id", c.ID().String(),
		"transport", c.Transport(),
		"remaining", len(r.conns),
	)
}

// Snapshot returns a point-in-time copy of the membership. Callers iterate
// the copy without holding the registry lock, so a snapshot may contain
// connections that fail or deregister mid-iteration.
func (r *Registry) Snapshot() []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// Len reports current membership size.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
