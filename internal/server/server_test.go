package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/fortran01/notifyrelay/internal/config"
	"github.com/fortran01/notifyrelay/internal/relay"
)

type stubWebhook struct{}

func (stubWebhook) HandleWebhook(c echo.Context) error {
	return c.String(200, "Success")
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:              "test",
		Port:                "0",
		LogLevel:            "info",
		LogFormat:           "text",
		StripeWebhookSecret: "whsec_test_secret_0123456789",
		MaxConnections:      16,
		SSERetryHint:        10 * time.Second,
		DemoTickInterval:    20 * time.Millisecond,
		ShutdownTimeout:     time.Second,
	}
}

// newTestServer wires a full server over a loopback listener.
func newTestServer(t *testing.T, cfg *config.Config) (*relay.Registry, *relay.Broadcaster, *httptest.Server) {
	t.Helper()

	if cfg == nil {
		cfg = testConfig()
	}
	registry := relay.NewRegistry(cfg.MaxConnections)
	broadcaster := relay.NewBroadcaster(registry, clockwork.NewRealClock())

	srv, err := NewServer(cfg, registry, broadcaster, stubWebhook{}, clockwork.NewRealClock())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.echo)
	t.Cleanup(func() {
		broadcaster.Stop("test teardown")
		ts.Close()
	})
	return registry, broadcaster, ts
}

func waitForClients(t *testing.T, registry *relay.Registry, expected int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return registry.Len() == expected
	}, time.Second, 5*time.Millisecond, "expected %d registered clients", expected)
}
