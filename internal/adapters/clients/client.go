package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/config"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
)

const (
	scope          = "github.com/jsamuelsen/quotehub-sync/internal/adapters/clients"
	defaultTimeout = 5 * time.Second
)

// Tree operations, used as span names and metric attributes.
const (
	OpGet         = "get"
	OpChildren    = "children"
	OpPut         = "put"
	OpPutIfAbsent = "put_if_absent"
	OpDelete      = "delete"
	OpPublish     = "publish"
)

// Operation results recorded on tree.client.request.total.
const (
	resultOK        = "ok"
	resultError     = "error"
	resultOpen      = "circuit_open"
	resultCancelled = "context_canceled"
)

// Config configures a tree client. Backend names the store in logs, spans
// and metrics. Only reads are retried: a write whose outcome is unknown
// surfaces to the caller.
type Config struct {
	Backend string
	Timeout time.Duration
	Retry   config.RetryConfig
	Circuit config.CircuitBreakerConfig
	Logger  *slog.Logger
}

// Client sits between the acl layer and a tree.Store/tree.Bus pair. Every
// store call gets a per-attempt timeout, the shared breaker, a span and
// duration/count metrics; reads also retry with jittered backoff.
type Client struct {
	store   tree.Store
	bus     tree.Bus
	backend string

	timeout  time.Duration
	attempts int
	backoff  backoff
	breaker  *Breaker

	logger   *slog.Logger
	tracer   trace.Tracer
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

// New creates a client over store and bus.
func New(store tree.Store, bus tree.Bus, cfg *Config) (*Client, error) {
	switch {
	case store == nil || bus == nil:
		return nil, errors.New("store and bus are required")
	case cfg == nil:
		return nil, errors.New("config is required")
	case cfg.Backend == "":
		return nil, errors.New("backend name is required")
	}

	breaker := NewBreaker(cfg.Backend, CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})

	c := &Client{
		store:    store,
		bus:      bus,
		backend:  cfg.Backend,
		timeout:  cfg.Timeout,
		attempts: max(cfg.Retry.MaxAttempts, 1),
		backoff:  newBackoff(cfg.Retry),
		breaker:  breaker,
		tracer:   otel.Tracer(scope),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}

	base := cfg.Logger
	if base == nil {
		base = slog.Default()
	}
	c.logger = base.With(slog.String("component", "tree_client"))

	breaker.OnStateChange(func(name string, from, to State) {
		c.logger.Warn("tree circuit changed state",
			slog.String("backend", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	if err := c.initMetrics(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(scope)

	var err error

	c.duration, err = meter.Float64Histogram("tree.client.request.duration",
		metric.WithDescription("Latency of tree backend operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating tree duration histogram: %w", err)
	}

	c.total, err = meter.Int64Counter("tree.client.request.total",
		metric.WithDescription("Tree backend operations by result"),
	)
	if err != nil {
		return fmt.Errorf("creating tree request counter: %w", err)
	}

	return nil
}

// Get reads the record at path.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	var out []byte

	err := c.do(ctx, OpGet, path, func(ctx context.Context) (err error) {
		out, err = c.store.Get(ctx, path)
		return err
	})

	return out, err
}

// Children lists the direct child records of path.
func (c *Client) Children(ctx context.Context, path string) ([]tree.Entry, error) {
	var out []tree.Entry

	err := c.do(ctx, OpChildren, path, func(ctx context.Context) (err error) {
		out, err = c.store.Children(ctx, path)
		return err
	})

	return out, err
}

// Put writes the record at path.
func (c *Client) Put(ctx context.Context, path string, value []byte) error {
	return c.do(ctx, OpPut, path, func(ctx context.Context) error {
		return c.store.Put(ctx, path, value)
	})
}

// PutIfAbsent writes the record only when path holds none.
func (c *Client) PutIfAbsent(ctx context.Context, path string, value []byte) (bool, error) {
	var written bool

	err := c.do(ctx, OpPutIfAbsent, path, func(ctx context.Context) (err error) {
		written, err = c.store.PutIfAbsent(ctx, path, value)
		return err
	})

	return written, err
}

// Delete removes path and its subtree.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, OpDelete, path, func(ctx context.Context) error {
		return c.store.Delete(ctx, path)
	})
}

// Publish announces a change at path. The breaker guards the store only,
// so a bus outage never blocks writes.
func (c *Client) Publish(ctx context.Context, path string) error {
	start := time.Now()
	err := c.bus.Publish(ctx, path)

	result := resultOK
	if err != nil {
		result = resultError
	}
	c.record(ctx, OpPublish, start, result)

	return err
}

// Listen registers fn for change notices.
func (c *Client) Listen(ctx context.Context, fn func(path string)) (func(), error) {
	return c.bus.Listen(ctx, fn)
}

// Ping checks the store; PingBus checks the change bus.
func (c *Client) Ping(ctx context.Context) error { return c.store.Ping(ctx) }

func (c *Client) PingBus(ctx context.Context) error { return c.bus.Ping(ctx) }

func (c *Client) Backend() string { return c.backend }

func (c *Client) CircuitState() State { return c.breaker.State() }

// Close releases the bus, then the store.
func (c *Client) Close() error {
	return errors.Join(c.bus.Close(), c.store.Close())
}

func isRead(op string) bool {
	return op == OpGet || op == OpChildren
}

// do admits one logical operation through the breaker and reports its
// single outcome, however many attempts it took.
func (c *Client) do(ctx context.Context, op, path string, fn func(context.Context) error) error {
	start := time.Now()
	log := logging.FromContextOr(ctx, c.logger).With(
		slog.String("backend", c.backend),
		slog.String("op", op),
		slog.String("path", path),
	)

	release, err := c.breaker.Acquire()
	if err != nil {
		c.record(ctx, op, start, resultOpen)
		log.WarnContext(ctx, "tree operation rejected: circuit open")

		return ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, "tree."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("tree.op", op),
			attribute.String("tree.path", path),
			attribute.String("db.system", c.backend),
		),
	)
	defer span.End()

	attempts := 1
	if isRead(op) {
		attempts = c.attempts
	}

	err = c.attempt(ctx, attempts, fn, log)

	switch {
	case err == nil:
		release(OutcomeSuccess)
		c.record(ctx, op, start, resultOK)
		log.Log(ctx, logging.LevelTrace, "tree operation completed", slog.Duration("duration", time.Since(start)))

		return nil

	case ctx.Err() != nil:
		// the caller gave up; that says nothing about the backend
		release(OutcomeIgnored)
		c.record(ctx, op, start, resultCancelled)

	default:
		release(OutcomeFailure)
		c.record(ctx, op, start, resultError)
		log.ErrorContext(ctx, "tree operation failed",
			slog.Int("attempts", attempts),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}

// attempt calls fn up to n times, each under its own timeout, stopping at
// the first success or non-retryable error.
func (c *Client) attempt(ctx context.Context, n int, fn func(context.Context) error, log *slog.Logger) error {
	var err error

	for i := range n {
		if i > 0 {
			d := c.backoff.delay(i)
			log.DebugContext(ctx, "retrying tree operation",
				slog.Int("attempt", i+1),
				slog.Duration("backoff", d),
				slog.Any("error", err),
			)

			if werr := wait(ctx, d); werr != nil {
				return werr
			}
		}

		actx, cancel := context.WithTimeout(ctx, c.timeout)
		err = fn(actx)
		cancel()

		if !retryable(ctx, err) {
			return err
		}
	}

	if n > 1 {
		return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	return err
}

func (c *Client) record(ctx context.Context, op string, start time.Time, result string) {
	attrs := metric.WithAttributes(
		attribute.String("tree.op", op),
		attribute.String("db.system", c.backend),
		attribute.String("result", result),
	)

	c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	c.total.Add(ctx, 1, attrs)
}
