// Package apptest builds a complete engine over the in-memory tree for
// handler, scenario, and benchmark tests.
package apptest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/session"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/memtree"
	"github.com/jsamuelsen/quotehub-sync/internal/app"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/config"
)

// Env is an engine over a fault-injectable memory tree.
type Env struct {
	Store    *memtree.Store
	Tree     *acl.RemoteTree
	Sessions *session.Manager
	Clock    *Clock
	Engine   *app.Engine
}

// Options adjusts the environment.
type Options struct {
	// Seeding enables default quotes for empty categories.
	Seeding bool
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTree returns a remote tree over a fresh memory store. The client
// never retries and its breaker effectively never opens, so injected
// faults surface exactly once.
func NewTree(tb testing.TB) (*acl.RemoteTree, *memtree.Store) {
	tb.Helper()

	store := memtree.New()

	client, err := clients.New(store, tree.NewLocalBus(), &clients.Config{
		Backend: "memory",
		Timeout: time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   1_000_000,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Logger: DiscardLogger(),
	})
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = client.Close() })

	return acl.NewRemoteTree(acl.RemoteTreeConfig{Client: client, Logger: DiscardLogger()}), store
}

// New builds the environment. The engine is closed on cleanup.
func New(tb testing.TB, opts Options) *Env {
	tb.Helper()

	rt, store := NewTree(tb)
	sessions := session.NewManager(DiscardLogger())
	clock := NewClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	engine := app.NewEngine(app.EngineConfig{
		Tree:              rt,
		Session:           sessions,
		Seeding:           opts.Seeding,
		SeedConcurrency:   4,
		LikesViewBuffer:   4,
		LikesReadyTimeout: time.Second,
		Logger:            DiscardLogger(),
		Now:               clock.Now,
	})
	tb.Cleanup(engine.Close)

	return &Env{
		Store:    store,
		Tree:     rt,
		Sessions: sessions,
		Clock:    clock,
		Engine:   engine,
	}
}

// As returns a context signed in as uid.
func As(uid string) context.Context {
	return session.WithIdentity(context.Background(), session.Identity{UserID: uid})
}

// Clock advances one second on every read so successive writes get
// distinct, increasing timestamps.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock starts a clock at start.
func NewClock(start time.Time) *Clock {
	return &Clock{t: start}
}

// Now returns the current time and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.t
	c.t = c.t.Add(time.Second)

	return now
}

// Peek returns the current time without advancing.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}
