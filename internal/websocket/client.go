// Package websocket implements the bidirectional transport for the relay.
//
// Each client gets a dedicated write goroutine (clientWriter) with keepalive
// pings; inbound messages are read and discarded, serving only as a liveness
// signal. Teardown is exactly-once on every exit path.
package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/fortran01/notifyrelay/internal/metrics"
	"github.com/fortran01/notifyrelay/internal/relay"
)

// Client is one registered WebSocket connection. It implements relay.Conn.
// The HTTP handler that upgraded the connection owns its lifecycle: it calls
// Register, runs ReadLoop, and teardown is guaranteed whichever of the read
// pump, the write pump or the broadcaster fails first.
type Client struct {
	id        uuid.UUID
	registry  *relay.Registry
	conn      *websocket.Conn
	writer    *clientWriter
	closeOnce sync.Once
}

// Register wraps an upgraded connection, starts its write pump and adds it to
// the registry. On registration failure the write pump is stopped and the
// transport closed; the connection never becomes a member.
func Register(conn *websocket.Conn, registry *relay.Registry, clock clockwork.Clock) (*Client, error) {
	c := &Client{
		id:       uuid.New(),
		registry: registry,
		conn:     conn,
	}
	c.writer = newClientWriter(conn, clock, func() {
		c.Fail("transport write failed")
	})

	if err := registry.Register(c); err != nil {
		c.writer.stop()
		return nil, err
	}
	return c, nil
}

// ID implements relay.Conn.
func (c *Client) ID() uuid.UUID { return c.id }

// Transport implements relay.Conn.
func (c *Client) Transport() string { return "websocket" }

// Send enqueues one message for the write pump. Non-blocking: a full buffer
// means the client cannot keep up and is reported as relay.ErrSlowClient.
func (c *Client) Send(msg relay.Message) error {
	select {
	case <-c.writer.dead:
		return relay.ErrConnClosed
	default:
	}

	select {
	case c.writer.sendChannel <- []byte(msg.Data):
		return nil
	default:
		metrics.RelaySlowClientsEvicted.Inc()
		return relay.ErrSlowClient
	}
}

// Fail implements the failure path: deregister exactly once and release the
// transport. Safe to call from the read pump, the write pump and the
// broadcaster; only the first caller does the work.
func (c *Client) Fail(reason string) {
	c.closeOnce.Do(func() {
		c.registry.Deregister(c)
		c.writer.stop()
		slog.Debug("WebSocket connection closed",
			"conn_id", c.id.String(),
			"reason", reason,
		)
	})
}

// Shutdown closes the connection with a close frame during process exit.
func (c *Client) Shutdown(reason string) {
	c.closeOnce.Do(func() {
		c.registry.Deregister(c)
		c.writer.stopGraceful(reason)
		slog.Debug("WebSocket connection shut down",
			"conn_id", c.id.String(),
			"reason", reason,
		)
	})
}

// ReadLoop blocks reading and discarding inbound frames until the connection
// errors (peer close, network failure or missed pong deadline), then runs the
// failure path. The deferred teardown covers every exit, panics included.
func (c *Client) ReadLoop() {
	defer c.Fail("connection closed")
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
