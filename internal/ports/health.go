package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned by Register when the name is taken.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// DefaultCheckTimeout bounds a single probe when the caller's context has no
// tighter deadline.
const DefaultCheckTimeout = 2 * time.Second

// HealthChecker is a readiness probe for one dependency: a tree backend,
// the change bus, the sqlite file.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// OptionalChecker marks a probe whose failure degrades readiness instead of
// failing it. The change bus qualifies: reads and writes keep working while
// live views stall.
type OptionalChecker interface {
	HealthChecker
	Optional() bool
}

// HealthRegistry collects probes at startup and runs them on demand.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the readiness verdict for one probe or the whole service.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one wins when aggregating.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusDegraded:
		return 1
	case HealthStatusUnhealthy:
		return 2
	default:
		return 0
	}
}

// HealthResult is the aggregate reported by the readiness endpoint.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of one probe.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Optional bool          `json:"optional,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RegistryOption configures a DefaultHealthRegistry.
type RegistryOption func(*DefaultHealthRegistry)

// WithCheckTimeout overrides DefaultCheckTimeout. Non-positive values are
// ignored.
func WithCheckTimeout(d time.Duration) RegistryOption {
	return func(r *DefaultHealthRegistry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// DefaultHealthRegistry runs every registered probe concurrently, each under
// its own deadline.
type DefaultHealthRegistry struct {
	timeout time.Duration

	mu       sync.RWMutex
	byName   map[string]HealthChecker
	checkers []HealthChecker
}

// NewHealthRegistry returns an empty registry.
func NewHealthRegistry(opts ...RegistryOption) *DefaultHealthRegistry {
	r := &DefaultHealthRegistry{
		timeout: DefaultCheckTimeout,
		byName:  make(map[string]HealthChecker),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	name := checker.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}

	r.byName[name] = checker
	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll probes every dependency. A failing required probe makes the
// result unhealthy; a failing optional one only degrades it.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := append([]HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Go(func() { results[i] = r.probe(ctx, checker) })
	}
	wg.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	for i, checker := range checkers {
		res := results[i]
		out.Checks[checker.Name()] = res

		if res.Status.severity() > out.Status.severity() {
			out.Status = res.Status
		}
	}

	return out
}

func (r *DefaultHealthRegistry) probe(ctx context.Context, checker HealthChecker) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	optional := false
	if oc, ok := checker.(OptionalChecker); ok {
		optional = oc.Optional()
	}

	start := time.Now()
	err := checker.Check(ctx)

	res := &CheckResult{
		Status:   HealthStatusHealthy,
		Optional: optional,
		Duration: time.Since(start),
	}

	switch {
	case err == nil:
	case optional:
		res.Status, res.Message = HealthStatusDegraded, err.Error()
	default:
		res.Status, res.Message = HealthStatusUnhealthy, err.Error()
	}

	return res
}
