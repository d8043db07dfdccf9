package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "quotehub",
	Subsystem: "app",
	Name:      "operation_duration_seconds",
	Help:      "Duration of staged write operations by the step they ended at.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation", "step"})

// Multi-path writes run as Validate, Perform, Verify, Archive, Respond.
//
// Perform writes the primary record, Verify reads it back, and Archive writes
// the secondary copies (the author's mirror). An Archive failure therefore
// means the primary write landed; callers report it as a partial write.

// ExecutionStep names a stage of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"

	stepCompleted ExecutionStep = "completed"
)

// ExecutionError records the step an Operation stopped at. It unwraps to
// the step's own error, so domain predicates still see through it.
type ExecutionError struct {
	Operation string
	Step      ExecutionStep
	Cause     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Operation, e.Step, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// IsExecutionError reports whether err came out of a failed step.
func IsExecutionError(err error) bool {
	var execErr *ExecutionError

	return errors.As(err, &execErr)
}

// FailedStep returns the step err stopped at, if err came from Execute.
func FailedStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

// Executor runs Operations with logging, tracing, and step timing.
type Executor struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewExecutor returns an Executor logging to logger, or slog.Default when
// logger is nil.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger, tracer: otel.Tracer("quotehub-sync/app")}
}

// Operation is a staged multi-path write. I is the input, P what Perform
// wrote, V what Verify read back, and O the caller's result. Nil steps are
// skipped and yield their zero value.
type Operation[I, P, V, O any] struct {
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// run is one in-flight Execute call.
type run struct {
	name   string
	logger *slog.Logger
	span   trace.Span
	start  time.Time
}

// step runs fn as step and wraps its error. Failures before anything is
// written log at warn; later ones at error.
func (r *run) step(ctx context.Context, step ExecutionStep, fn func() error) error {
	r.span.AddEvent(string(step))

	if err := fn(); err != nil {
		level := slog.LevelError
		if step == StepValidate || step == StepRespond {
			level = slog.LevelWarn
		}

		r.logger.Log(ctx, level, "operation step failed",
			slog.String("step", string(step)),
			slog.Any("error", err),
		)

		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, string(step))
		r.observe(step)

		return &ExecutionError{Operation: r.name, Step: step, Cause: err}
	}

	return nil
}

func (r *run) observe(step ExecutionStep) {
	operationDuration.WithLabelValues(r.name, string(step)).Observe(time.Since(r.start).Seconds())
}

// Execute runs op on input, stopping at the first failing step.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		zero      O
		performed P
		verified  V
		result    O
	)

	ctx, span := exec.tracer.Start(ctx, "app."+op.Name,
		trace.WithAttributes(attribute.String("operation", op.Name)))
	defer span.End()

	r := &run{
		name:   op.Name,
		logger: loggerFor(ctx, exec.logger).With(slog.String("operation", op.Name)),
		span:   span,
		start:  time.Now(),
	}

	if op.Validate != nil {
		if err := r.step(ctx, StepValidate, func() error { return op.Validate(ctx, input) }); err != nil {
			return zero, err
		}
	}

	if op.Perform != nil {
		if err := r.step(ctx, StepPerform, func() (err error) {
			performed, err = op.Perform(ctx, input)
			return err
		}); err != nil {
			return zero, err
		}
	}

	if op.Verify != nil {
		if err := r.step(ctx, StepVerify, func() (err error) {
			verified, err = op.Verify(ctx, input, performed)
			return err
		}); err != nil {
			return zero, err
		}
	}

	if op.Archive != nil {
		if err := r.step(ctx, StepArchive, func() error { return op.Archive(ctx, input, verified) }); err != nil {
			return zero, err
		}
	}

	if op.Respond != nil {
		if err := r.step(ctx, StepRespond, func() (err error) {
			result, err = op.Respond(ctx, input, verified)
			return err
		}); err != nil {
			return zero, err
		}
	}

	r.observe(stepCompleted)
	r.logger.DebugContext(ctx, "operation completed", slog.Duration("duration", time.Since(r.start)))

	return result, nil
}
