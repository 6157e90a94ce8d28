package server

import (
	"github.com/labstack/echo/v4"

	"github.com/fortran01/notifyrelay/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	// The relay has no external dependencies to probe; readiness reports
	// current fan-out load.
	return c.JSON(200, map[string]any{
		"status":            "ready",
		"connected_clients": s.registry.Len(),
	})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
