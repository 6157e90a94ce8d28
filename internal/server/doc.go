// Package server implements the HTTP server using Echo framework.
//
// Routes: demo pages (/, /sse), client transports (/ws, /events, /events/demo),
// webhook ingest (/api/webhook) and observability (health, metrics, version).
// Handlers split by concern: handlers_ws.go, handlers_sse.go, handlers_health.go.
package server
