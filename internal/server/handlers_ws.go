package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/fortran01/notifyrelay/internal/relay"
	ws "github.com/fortran01/notifyrelay/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is open for the demo pages; same policy here
	},
}

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}

	client, err := ws.Register(conn, s.registry, s.clock)
	if err != nil {
		// The protocol is already upgraded, so there is no HTTP error to
		// return; just drop the connection.
		slog.Warn("WebSocket registration rejected", "error", err)
		_ = conn.Close()
		return nil
	}

	// Initial acknowledgement; afterwards the client only receives
	// broadcast payloads.
	if err := client.Send(relay.Message{Data: "Connected"}); err != nil {
		client.Fail("ack failed")
		return nil
	}

	// Blocks until the connection dies; teardown is handled inside.
	client.ReadLoop()

	return nil
}
