package relay

import "time"

// Message is a single outbound notification. Data is already formatted for
// display. Event, ID and Retry are optional and only meaningful for push-stream
// (SSE) delivery; bidirectional transports send Data alone.
type Message struct {
	Data  string
	Event string
	ID    string
	Retry time.Duration
}
