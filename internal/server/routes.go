package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Demo pages
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/sse", s.handleSSEPage)

	// Webhook route (signed Stripe events)
	s.echo.POST("/api/webhook", s.webhook.HandleWebhook)

	// Client transports
	s.echo.GET("/ws", s.handleWebSocket)
	s.echo.GET("/events", s.handleEvents)
	s.echo.GET("/events/demo", s.handleEventsDemo)
}
