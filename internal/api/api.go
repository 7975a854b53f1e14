// Package api exposes the forecast and staffing snapshots over HTTP.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/logging"
	"github.com/skaiser/staffcast/internal/observability/metrics"
)

var (
	apiLogger   *slog.Logger
	apiLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	apiLevelVar.Set(slog.LevelInfo)

	apiLogger, _, err = logging.NewFileLogger("logs/webapi.log", "api", apiLevelVar)
	if err != nil {
		logging.Error("Failed to initialize API file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: apiLevelVar})
		apiLogger = slog.New(fbHandler).With("service", "api")
	}
}

// Controller registers the API routes and serves read-only views of the
// persisted snapshots.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	metrics  *metrics.Metrics
	startAt  time.Time
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// New creates the API controller and wires all routes onto the given
// Echo instance.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings, m *metrics.Metrics) *Controller {
	c := &Controller{
		Echo:     e,
		Group:    e.Group("/api/v1"),
		DS:       ds,
		Settings: settings,
		metrics:  m,
		startAt:  time.Now(),
	}
	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Group.GET("/forecasts", c.GetForecasts)
	c.Group.GET("/weather", c.GetWeather)
	c.Group.GET("/plans", c.GetPlans)
	c.Group.GET("/plans/:date", c.GetPlan)

	c.Echo.GET("/healthz", c.Healthz)
	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(c.metrics.Registry(), promhttp.HandlerOpts{})))
	}
}

// Healthz reports liveness and database reachability.
func (c *Controller) Healthz(ctx echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if _, err := c.DS.LatestStaffingPlansBetween("1970-01-01", "1970-01-01"); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, map[string]any{
		"status":         status,
		"uptime_seconds": int(time.Since(c.startAt).Seconds()),
	})
}

// HandleError logs the error and writes a JSON error response.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	apiLogger.Error(message,
		"path", ctx.Request().URL.Path,
		"error", err)
	return ctx.JSON(code, ErrorResponse{Error: message, Code: code})
}

// errNotFound distinguishes missing rows from real datastore failures.
var errNotFound = errors.New("not found")

// dateRange resolves the from/to query parameters. Both default to the
// rolling horizon starting today when absent.
func (c *Controller) dateRange(ctx echo.Context) (from, to string, err error) {
	from = ctx.QueryParam("from")
	to = ctx.QueryParam("to")

	horizon := c.Settings.Forecast.Horizon
	if horizon < 1 {
		horizon = 7
	}
	today := time.Now()
	if from == "" {
		from = today.Format("2006-01-02")
	}
	if to == "" {
		to = today.AddDate(0, 0, horizon-1).Format("2006-01-02")
	}

	if _, err = time.Parse("2006-01-02", from); err != nil {
		return "", "", err
	}
	if _, err = time.Parse("2006-01-02", to); err != nil {
		return "", "", err
	}
	if from > to {
		from, to = to, from
	}
	return from, to, nil
}
