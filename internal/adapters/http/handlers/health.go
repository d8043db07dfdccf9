// Package handlers provides the gin handlers: probes and build info, the
// quote collection, the signed-in user's likes and activity, sessions, and
// the static category pages.
package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// BuildInfo identifies the running binary and the tree it is wired to.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Backend   string `json:"backend,omitempty"`
	Bus       string `json:"bus,omitempty"`
}

// NewBuildInfo fills in the Go version of the running binary.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime, GoVersion: runtime.Version()}
}

// WithBackend returns a copy naming the tree backend and change bus.
func (b BuildInfo) WithBackend(backend, bus string) BuildInfo {
	b.Backend, b.Bus = backend, bus
	return b
}

// HealthHandler serves the operational endpoints under /-/.
type HealthHandler struct {
	registry ports.HealthRegistry
	build    BuildInfo
	metrics  http.Handler
}

// NewHealthHandler exposes registry as readiness and build as /-/build.
func NewHealthHandler(registry ports.HealthRegistry, build BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry: registry,
		build:    build,
		metrics: promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}),
	}
}

// Mount registers live, ready, build and metrics under /-/. Probes answer
// HEAD as well as GET.
func (h *HealthHandler) Mount(engine *gin.Engine) {
	ops := engine.Group("/-", noStore)

	for _, probe := range []struct {
		path string
		fn   gin.HandlerFunc
	}{
		{"/live", h.Live},
		{"/ready", h.Ready},
	} {
		ops.GET(probe.path, probe.fn)
		ops.HEAD(probe.path, probe.fn)
	}

	ops.GET("/build", h.Build)
	ops.GET("/metrics", gin.WrapH(h.metrics))
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Next()
}

type liveResponse struct {
	Status string `json:"status"`
}

// Live answers 200 while the process can serve HTTP. Dependencies are not
// consulted.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, liveResponse{Status: "ok"})
}

type readyResponse struct {
	Status    ports.HealthStatus            `json:"status"`
	Checks    map[string]*ports.CheckResult `json:"checks,omitempty"`
	Timestamp time.Time                     `json:"timestamp"`
}

// Ready answers 503 only when a required probe fails. A failing change bus
// reports "degraded" with 200: reads and writes still work, so the instance
// stays in rotation.
func (h *HealthHandler) Ready(c *gin.Context) {
	res := h.registry.CheckAll(c.Request.Context())

	code := http.StatusOK
	if res.Status == ports.HealthStatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, readyResponse{Status: res.Status, Checks: res.Checks, Timestamp: res.Timestamp})
}

// Build serves the BuildInfo.
func (h *HealthHandler) Build(c *gin.Context) {
	c.JSON(http.StatusOK, h.build)
}
