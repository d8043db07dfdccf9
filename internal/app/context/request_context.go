package context

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrAlreadyCommitted is returned when actions are staged or committed
	// on a RequestContext that has already committed.
	ErrAlreadyCommitted = errors.New("request context already committed")

	// ErrTypeMismatch is returned by Load when a key holds a value of
	// another type.
	ErrTypeMismatch = errors.New("memoized value has unexpected type")
)

type ctxKey struct{}

// RequestContext memoizes tree reads and stages tree writes for one request.
type RequestContext struct {
	ctx context.Context

	reads   singleflight.Group
	cacheMu sync.RWMutex
	cache   map[string]any

	mu        sync.Mutex // guards actions and committed
	actions   []Action
	committed bool
}

// New creates a RequestContext whose fetches run under ctx.
func New(ctx context.Context) *RequestContext {
	return &RequestContext{ctx: ctx, cache: make(map[string]any)}
}

// FromContext returns the RequestContext stored in ctx, or nil.
func FromContext(ctx context.Context) *RequestContext {
	if ctx == nil {
		return nil
	}

	rc, _ := ctx.Value(ctxKey{}).(*RequestContext)

	return rc
}

// WithContext stores rc in ctx.
func WithContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// Scoped returns ctx with a fresh RequestContext unless one is present.
func Scoped(ctx context.Context) context.Context {
	if FromContext(ctx) != nil {
		return ctx
	}

	return WithContext(ctx, New(ctx))
}

// GetOrFetch returns the value memoized under key, calling fetch on a miss.
// Concurrent misses on one key share a single fetch. Errors are not cached.
func (rc *RequestContext) GetOrFetch(key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := rc.cached(key); ok {
		return v, nil
	}

	v, err, _ := rc.reads.Do(key, func() (any, error) {
		if v, ok := rc.cached(key); ok {
			return v, nil
		}

		v, err := fetch(rc.ctx)
		if err != nil {
			return nil, err
		}

		rc.cacheMu.Lock()
		rc.cache[key] = v
		rc.cacheMu.Unlock()

		return v, nil
	})

	return v, err
}

// Forget drops key so the next read fetches again. Call it after writing
// the data key was read from.
func (rc *RequestContext) Forget(key string) {
	rc.cacheMu.Lock()
	delete(rc.cache, key)
	rc.cacheMu.Unlock()

	rc.reads.Forget(key)
}

func (rc *RequestContext) cached(key string) (any, bool) {
	rc.cacheMu.RLock()
	defer rc.cacheMu.RUnlock()

	v, ok := rc.cache[key]

	return v, ok
}

// Context returns the context fetches run under.
func (rc *RequestContext) Context() context.Context {
	return rc.ctx
}

// Provider fetches one typed value under a stable key.
type Provider[T any] interface {
	Key() string
	Fetch(ctx context.Context) (T, error)
}

// Load returns p's value. When ctx carries a RequestContext the fetch is
// memoized there; otherwise p is fetched directly.
func Load[T any](ctx context.Context, p Provider[T]) (T, error) {
	rc := FromContext(ctx)
	if rc == nil {
		return p.Fetch(ctx)
	}

	var zero T

	v, err := rc.GetOrFetch(p.Key(), func(ctx context.Context) (any, error) {
		return p.Fetch(ctx)
	})
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T", ErrTypeMismatch, p.Key(), v)
	}

	return t, nil
}

// Invalidate forgets key in ctx's RequestContext, if any.
func Invalidate(ctx context.Context, key string) {
	if rc := FromContext(ctx); rc != nil {
		rc.Forget(key)
	}
}
