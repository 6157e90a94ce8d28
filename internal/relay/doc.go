// Package relay implements the connection registry and broadcast fan-out engine.
//
// The Registry is the authoritative set of live client connections. The Broadcaster
// takes a snapshot and attempts delivery to every entry; a failed send tears down
// that connection only and never aborts delivery to the rest. Transports (WebSocket,
// SSE) implement the Conn contract and own their exactly-once teardown.
package relay
