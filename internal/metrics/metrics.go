package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay Metrics
var (
	// RelayConnectedClients tracks currently connected clients by transport
	RelayConnectedClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_connected_clients",
			Help: "Currently connected clients by transport",
		},
		[]string{"transport"},
	)

	// RelayRegistrationsTotal tracks successful registrations by transport
	RelayRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_registrations_total",
			Help: "Total successful connection registrations by transport",
		},
		[]string{"transport"},
	)

	// RelayDuplicateRegistrationsTotal tracks rejected duplicate registrations
	RelayDuplicateRegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_duplicate_registrations_total",
			Help: "Total registrations rejected because the connection was already registered",
		},
	)

	// RelayBroadcastsTotal tracks broadcast calls
	RelayBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_broadcasts_total",
			Help: "Total broadcast calls issued",
		},
	)

	// RelayDeliveriesTotal tracks per-connection delivery attempts by transport and status
	RelayDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Per-connection delivery attempts by transport and status",
		},
		[]string{"transport", "status"},
	)

	// RelayBroadcastDuration tracks time spent fanning out one broadcast
	RelayBroadcastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_broadcast_duration_seconds",
			Help:    "Time spent fanning one broadcast out to all connections",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// RelaySlowClientsEvicted tracks connections dropped for full send buffers
	RelaySlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_slow_clients_evicted_total",
			Help: "Connections dropped because their send buffer was full",
		},
	)
)

// WebSocket Metrics
var (
	// WebSocketPingFailures tracks failed keepalive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total failed WebSocket keepalive pings",
		},
	)

	// WebSocketMessageSendDuration tracks WebSocket write latency in seconds
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "WebSocket message write duration in seconds",
			Buckets: []float64{.0001, .001, .01, .1, 1, 5},
		},
	)
)

// Webhook Metrics
var (
	// WebhookEventsTotal tracks inbound webhook events by type and outcome
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound webhook events by event type and outcome",
		},
		[]string{"event_type", "status"},
	)
)
