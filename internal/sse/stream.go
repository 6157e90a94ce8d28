// Package sse implements the unidirectional push transport for the relay.
//
// A Stream is one subscribed client. There is no inbound traffic after the
// initial request; liveness is detected purely by failure of the next
// outbound write or cancellation of the request context. Keepalive comments
// (lines starting with ':') keep intermediaries from timing the socket out.
package sse

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fortran01/notifyrelay/internal/metrics"
	"github.com/fortran01/notifyrelay/internal/relay"
)

const (
	sendBufferSize    = 64
	keepaliveInterval = 15 * time.Second
)

// Any SSE line beginning with a colon is ignored by clients.
var keepaliveMsg = []byte(":keepalive\n")

// Stream is one registered push-stream connection. It implements relay.Conn.
type Stream struct {
	id        uuid.UUID
	registry  *relay.Registry
	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

// Register creates a stream and adds it to the registry. The caller must have
// already validated the Accept precondition and written the stream headers.
func Register(registry *relay.Registry) (*Stream, error) {
	s := &Stream{
		id:       uuid.New(),
		registry: registry,
		send:     make(chan []byte, sendBufferSize),
		closed:   make(chan struct{}),
	}
	if err := registry.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ID implements relay.Conn.
func (s *Stream) ID() uuid.UUID { return s.id }

// Transport implements relay.Conn.
func (s *Stream) Transport() string { return "sse" }

// Send enqueues one encoded unit for the serve loop. Non-blocking.
func (s *Stream) Send(msg relay.Message) error {
	select {
	case <-s.closed:
		return relay.ErrConnClosed
	default:
	}

	select {
	case s.send <- Encode(msg):
		return nil
	default:
		metrics.RelaySlowClientsEvicted.Inc()
		return relay.ErrSlowClient
	}
}

// Fail deregisters the stream exactly once and wakes its serve loop.
func (s *Stream) Fail(reason string) {
	s.closeOnce.Do(func() {
		s.registry.Deregister(s)
		close(s.closed)
		slog.Debug("SSE stream closed",
			"conn_id", s.id.String(),
			"reason", reason,
		)
	})
}

// Shutdown is identical to Fail for this transport: there is no close frame,
// the serve loop simply ends and the response terminates.
func (s *Stream) Shutdown(reason string) {
	s.Fail(reason)
}

// Serve writes queued units to w, flushing each one, until the client
// disconnects, a write fails, or the stream is torn down. The deferred
// failure path guarantees deregistration on every exit.
func (s *Stream) Serve(w http.ResponseWriter, r *http.Request, clock clockwork.Clock) {
	defer s.Fail("stream ended")

	flusher, ok := w.(http.Flusher)
	if !ok {
		slog.Error("SSE response writer does not support flushing", "conn_id", s.id.String())
		return
	}

	ticker := clock.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case unit := <-s.send:
			if _, err := w.Write(unit); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.Chan():
			if _, err := w.Write(keepaliveMsg); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-s.closed:
			return
		}
	}
}
