package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/session"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/memtree"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/config"
)

const waitFor = 2 * time.Second

var errInjected = errors.New("injected failure")

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock advances one second on every read so successive writes get
// distinct, increasing timestamps.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.t
	c.t = c.t.Add(time.Second)

	return now
}

type testEnv struct {
	store    *memtree.Store
	tree     *acl.RemoteTree
	sessions *session.Manager
	clock    *fakeClock

	activity *ActivityLogger
	likes    *LikeStateManager
	seeder   *Seeder
	repo     *QuoteRepository
	profile  *ProfileService
	catalog  *StaticCatalog
}

func newTestTree(t *testing.T) (*acl.RemoteTree, *memtree.Store) {
	t.Helper()

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
			MaxFailures:   1000,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		Logger: discardLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return acl.NewRemoteTree(acl.RemoteTreeConfig{Client: client, Logger: discardLogger()}), store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	rt, store := newTestTree(t)
	logger := discardLogger()
	sessions := session.NewManager(logger)
	clock := newFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	activity := NewActivityLogger(ActivityLoggerConfig{
		Tree:    rt,
		Session: sessions,
		Logger:  logger,
		Now:     clock.Now,
	})

	likes := NewLikeStateManager(LikeStateManagerConfig{
		Tree:         rt,
		Session:      sessions,
		Activity:     activity,
		ViewBuffer:   4,
		ReadyTimeout: time.Second,
		Logger:       logger,
		Now:          clock.Now,
	})
	t.Cleanup(likes.Close)

	seeder := NewSeeder(SeederConfig{
		Tree:        rt,
		Concurrency: 4,
		Logger:      logger,
		Now:         clock.Now,
	})

	repo := NewQuoteRepository(QuoteRepositoryConfig{
		Tree:     rt,
		Session:  sessions,
		Seeder:   seeder,
		Likes:    likes,
		Activity: activity,
		Logger:   logger,
		Now:      clock.Now,
	})

	profile := NewProfileService(ProfileServiceConfig{
		Tree:     rt,
		Session:  sessions,
		Likes:    likes,
		Activity: activity,
		Logger:   logger,
		Now:      clock.Now,
	})

	return &testEnv{
		store:    store,
		tree:     rt,
		sessions: sessions,
		clock:    clock,
		activity: activity,
		likes:    likes,
		seeder:   seeder,
		repo:     repo,
		profile:  profile,
		catalog:  NewStaticCatalog(likes),
	}
}

// as returns a context signed in as uid.
func as(uid string) context.Context {
	return session.WithIdentity(context.Background(), session.Identity{UserID: uid})
}

// failOn makes every op on a path with the given prefix fail.
func failOn(op memtree.Op, prefix string) memtree.FaultFunc {
	return func(o memtree.Op, path string) error {
		if o == op && strings.HasPrefix(path, prefix) {
			return errInjected
		}

		return nil
	}
}
