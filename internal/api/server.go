package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/observability/metrics"
)

// Server wraps the Echo instance serving the API.
type Server struct {
	Echo       *echo.Echo
	Controller *Controller
	settings   *conf.Settings
}

// NewServer builds the HTTP server with middleware and all API routes
// registered.
func NewServer(settings *conf.Settings, ds datastore.Interface, m *metrics.Metrics) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			apiLogger.Info("Request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds())
			return nil
		},
	}))

	return &Server{
		Echo:       e,
		Controller: New(e, ds, settings, m),
		settings:   settings,
	}
}

// Start listens on the configured port and blocks until the server
// stops.
func (s *Server) Start() error {
	port := s.settings.WebServer.Port
	if port == "" {
		port = "8080"
	}
	apiLogger.Info("API server starting", "port", port)

	err := s.Echo.Start(":" + port)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Echo.Shutdown(ctx)
}
