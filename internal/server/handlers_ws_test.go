package server

import (
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWebSocket(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestWebSocket_HandshakeSendsConnectedAck(t *testing.T) {
	registry, _, ts := newTestServer(t, nil)

	conn := dialWebSocket(t, ts.URL)
	assert.Equal(t, "Connected", readText(t, conn))
	waitForClients(t, registry, 1)
}

func TestWebSocket_BroadcastReachesAllClients(t *testing.T) {
	registry, broadcaster, ts := newTestServer(t, nil)

	x := dialWebSocket(t, ts.URL)
	y := dialWebSocket(t, ts.URL)
	require.Equal(t, "Connected", readText(t, x))
	require.Equal(t, "Connected", readText(t, y))
	waitForClients(t, registry, 2)

	broadcaster.Publish("Invoice inv_1 payment succeeded")

	assert.Equal(t, "Invoice inv_1 payment succeeded", readText(t, x))
	assert.Equal(t, "Invoice inv_1 payment succeeded", readText(t, y))
}

func TestWebSocket_SeveredClientDoesNotBlockOthers(t *testing.T) {
	registry, broadcaster, ts := newTestServer(t, nil)

	x := dialWebSocket(t, ts.URL)
	y := dialWebSocket(t, ts.URL)
	require.Equal(t, "Connected", readText(t, x))
	require.Equal(t, "Connected", readText(t, y))
	waitForClients(t, registry, 2)

	// Sever X and wait for its lifecycle to deregister it.
	x.Close()
	waitForClients(t, registry, 1)

	broadcaster.Publish("Refund processed for re_1")
	assert.Equal(t, "Refund processed for re_1", readText(t, y))
}

func TestWebSocket_ConnectionLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConnections = 1
	registry, _, ts := newTestServer(t, cfg)

	first := dialWebSocket(t, ts.URL)
	require.Equal(t, "Connected", readText(t, first))
	waitForClients(t, registry, 1)

	// Second dial succeeds at the HTTP layer but is dropped immediately
	// without ever becoming a registry member.
	second := dialWebSocket(t, ts.URL)
	second.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := second.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, registry.Len())
}
