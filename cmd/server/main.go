package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/fortran01/notifyrelay/internal/config"
	"github.com/fortran01/notifyrelay/internal/logging"
	"github.com/fortran01/notifyrelay/internal/relay"
	"github.com/fortran01/notifyrelay/internal/server"
	"github.com/fortran01/notifyrelay/internal/stripe"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(cfg *config.Config, srv *server.Server, broadcaster *relay.Broadcaster) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		broadcaster.Stop("Server shutting down")

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	// Core: one registry for the process, injected explicitly
	registry := relay.NewRegistry(cfg.MaxConnections)
	broadcaster := relay.NewBroadcaster(registry, clock)

	webhookHandler := stripe.NewWebhookHandler(cfg.StripeWebhookSecret, broadcaster)

	srv, err := server.NewServer(cfg, registry, broadcaster, webhookHandler, clock)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(cfg, srv, broadcaster)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}
