package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/fortran01/notifyrelay/internal/errors"
	"github.com/fortran01/notifyrelay/internal/relay"
	"github.com/fortran01/notifyrelay/internal/sse"
)

// requireEventStreamAccept enforces the push-stream handshake precondition:
// the client must declare it accepts text/event-stream before the stream is
// opened. Rejections happen before any stream content is written.
func requireEventStreamAccept(c echo.Context) error {
	if !strings.Contains(c.Request().Header.Get("Accept"), "text/event-stream") {
		return apperrors.ValidationError("push stream requires Accept: text/event-stream")
	}
	return nil
}

func writeEventStreamHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
}

// handleEvents subscribes the client to the notification stream.
func (s *Server) handleEvents(c echo.Context) error {
	if err := requireEventStreamAccept(c); err != nil {
		return err
	}

	stream, err := sse.Register(s.registry)
	if err != nil {
		return apperrors.UnavailableError("cannot accept more connections")
	}

	writeEventStreamHeaders(c)

	// Advertise the reconnect delay before the first notification.
	fmt.Fprintf(c.Response(), "retry: %d\n\n", s.config.SSERetryHint.Milliseconds())
	c.Response().Flush()

	// Blocks until the client goes away; deregistration is handled inside.
	stream.Serve(c.Response(), c.Request(), s.clock)

	return nil
}

// handleEventsDemo emits an incrementing counter at a fixed interval. Useful
// for eyeballing stream behavior and client reconnect handling.
func (s *Server) handleEventsDemo(c echo.Context) error {
	if err := requireEventStreamAccept(c); err != nil {
		return err
	}

	writeEventStreamHeaders(c)

	ticker := s.clock.NewTicker(s.config.DemoTickInterval)
	defer ticker.Stop()

	count := 0
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.Chan():
			count++
			unit := sse.Encode(relay.Message{
				Data:  fmt.Sprintf("{'count': %d}", count),
				Retry: s.config.SSERetryHint,
			})
			if _, err := c.Response().Write(unit); err != nil {
				return nil
			}
			c.Response().Flush()
		}
	}
}
