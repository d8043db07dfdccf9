package telemetry

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/quotehub-sync/internal/platform/telemetry"

// IsStream reports whether route serves a long-lived event stream.
func IsStream(route string) bool {
	return strings.HasSuffix(route, "/stream")
}

// Metrics are the HTTP instruments. Streams are counted apart from
// request/response calls so their lifetimes do not skew latency.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	inFlight        metric.Int64UpDownCounter
	openStreams     metric.Int64UpDownCounter
}

// NewMetrics registers the HTTP instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	var (
		m   Metrics
		err error
	)

	if m.requestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of non-stream HTTP requests"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.requestTotal, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("HTTP requests by route and status class"),
	); err != nil {
		return nil, err
	}

	if m.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Non-stream HTTP requests in flight"),
	); err != nil {
		return nil, err
	}

	if m.openStreams, err = meter.Int64UpDownCounter("quotehub.streams.open",
		metric.WithDescription("Open quote, like, and activity streams"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// Middleware records request metrics, echoes the trace id in X-Trace-ID and
// adds it to the request logger. Mount it after TracingMiddleware so the
// span exists.
func Middleware() gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			id := sc.TraceID().String()
			c.Header("X-Trace-ID", id)
			c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), id))
		}

		if metrics == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		route := c.FullPath()
		base := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		)

		gauge := metrics.inFlight
		if IsStream(route) {
			gauge = metrics.openStreams
		}

		gauge.Add(ctx, 1, base)
		defer gauge.Add(ctx, -1, base)

		start := time.Now()

		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.status_class", strconv.Itoa(c.Writer.Status()/100)+"xx"),
		)

		metrics.requestTotal.Add(ctx, 1, attrs)

		if !IsStream(route) {
			metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
	}
}

// TracingMiddleware returns the otelgin tracing middleware, skipping stream
// routes so they do not hold a span open.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			return !IsStream(c.FullPath())
		}),
	)
}
