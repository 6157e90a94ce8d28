package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/fortran01/notifyrelay/internal/config"
	apperrors "github.com/fortran01/notifyrelay/internal/errors"
	"github.com/fortran01/notifyrelay/internal/relay"
)

//go:embed templates/*.html
var templateFS embed.FS

// webhookHandler handles inbound Stripe webhook requests.
type webhookHandler interface {
	HandleWebhook(c echo.Context) error
}

type Server struct {
	echo          *echo.Echo
	config        *config.Config
	registry      *relay.Registry
	broadcaster   *relay.Broadcaster
	webhook       webhookHandler
	clock         clockwork.Clock
	indexTemplate *template.Template
	sseTemplate   *template.Template
	startTime     time.Time
}

func NewServer(cfg *config.Config, registry *relay.Registry, broadcaster *relay.Broadcaster, webhook webhookHandler, clock clockwork.Clock) (*Server, error) {
	indexTmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}
	sseTmpl, err := template.ParseFS(templateFS, "templates/sse.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse sse template: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:          e,
		config:        cfg,
		registry:      registry,
		broadcaster:   broadcaster,
		webhook:       webhook,
		clock:         clock,
		indexTemplate: indexTmpl,
		sseTemplate:   sseTmpl,
		startTime:     clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
