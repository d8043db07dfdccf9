package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/session"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/config"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 15 * time.Second

// streamSuffix marks long-lived routes that get no request deadline.
const streamSuffix = "/stream"

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	Logger     *slog.Logger
	AppConfig  *config.AppConfig
	AuthConfig *config.AuthConfig

	// Verifier checks bearer tokens. Nil accepts gateway headers only.
	Verifier *session.Verifier

	HealthHandler  *handlers.HealthHandler
	QuoteHandler   *handlers.QuoteHandler
	MeHandler      *handlers.MeHandler
	SessionHandler *handlers.SessionHandler
	StaticHandler  *handlers.StaticHandler

	// Timeout is the API request deadline. Zero disables it.
	Timeout time.Duration

	// Tracing enables the otelgin middleware.
	Tracing bool
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery
//  2. Request ID and correlation ID
//  3. OpenTelemetry tracing (when enabled) and request metrics
//  4. Logging (skips /-/ probes)
//
// Route groups:
//   - /-/ probes, build info, and metrics
//   - /api/v1 with a request deadline and session resolution; writes and
//     /me routes require a signed-in user
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	global := []gin.HandlerFunc{
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	}

	if cfg.Tracing && cfg.AppConfig != nil {
		global = append(global, telemetry.TracingMiddleware(cfg.AppConfig.Name))
	}

	global = append(global, telemetry.Middleware(), middleware.Logging(cfg.Logger))
	engine.Use(global...)

	engine.NoRoute(func(c *gin.Context) {
		dto.Abort(c, dto.ErrorCodeNotFound, "route not found")
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.Mount(engine)
	}

	api := engine.Group("/api/v1",
		middleware.Timeout(cfg.Timeout, streamSuffix),
		middleware.Authenticate(cfg.AuthConfig, cfg.Verifier),
	)

	setupAPIRoutes(api, cfg)
}

// setupAPIRoutes registers the engine's endpoints. Handlers left nil are
// skipped so tests can mount a subset.
func setupAPIRoutes(public *gin.RouterGroup, cfg RouterConfig) {
	authed := public.Group("", middleware.RequireAuth())

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterRoutes(public, authed)
	}

	if cfg.MeHandler != nil {
		cfg.MeHandler.RegisterRoutes(authed)
	}

	if cfg.SessionHandler != nil {
		cfg.SessionHandler.RegisterRoutes(authed)
	}

	if cfg.StaticHandler != nil {
		cfg.StaticHandler.RegisterRoutes(public)
	}
}

// SetupMinimalRouter sets up a router with only the health endpoints.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	if healthHandler != nil {
		healthHandler.Mount(engine)
	}
}
