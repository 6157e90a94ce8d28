package relay

import (
	"errors"

	"github.com/google/uuid"
)

// ErrSlowClient is returned by Send when a connection's outbound buffer is
// full. The broadcaster treats it like any other send failure: the client is
// too far behind and gets dropped.
var ErrSlowClient = errors.New("client send buffer full")

// ErrConnClosed is returned by Send once a connection's writer has exited.
var ErrConnClosed = errors.New("connection closed")

// Conn is one live channel to a single client. Both transports (WebSocket and
// SSE) implement it. Fail and Shutdown must be idempotent and safe to call
// from any goroutine; whichever fires first performs the one and only
// deregistration and transport release.
type Conn interface {
	// ID identifies the connection in logs and has no protocol meaning.
	ID() uuid.UUID

	// Transport names the underlying transport ("websocket" or "sse"),
	// used as a metrics label.
	Transport() string

	// Send attempts delivery of one message. It must not block: transports
	// enqueue into a bounded buffer and report ErrSlowClient when full.
	Send(msg Message) error

	// Fail tears the connection down after a transport error. Exactly-once:
	// deregisters from the Registry and releases the transport handle.
	Fail(reason string)

	// Shutdown closes the connection gracefully during process exit, with
	// the same exactly-once guarantee as Fail.
	Shutdown(reason string)
}
