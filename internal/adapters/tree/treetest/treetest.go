// Package treetest holds the behavioral suite every tree.Store and tree.Bus
// backend must pass.
package treetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
)

// RunStoreSuite exercises a fresh store from newStore in each subtest.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) tree.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("get missing returns nil", func(t *testing.T) {
		s := newStore(t)

		v, err := s.Get(ctx, "quotes/absent")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("put then get", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "quotes/a", []byte(`{"text":"a"}`)))

		v, err := s.Get(ctx, "quotes/a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"text":"a"}`, string(v))
	})

	t.Run("put overwrites", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "quotes/a", []byte(`1`)))
		require.NoError(t, s.Put(ctx, "quotes/a", []byte(`2`)))

		v, err := s.Get(ctx, "quotes/a")
		require.NoError(t, err)
		assert.Equal(t, "2", string(v))
	})

	t.Run("children lists direct records sorted by key", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "users/u1/likedQuotes/b", []byte(`"b"`)))
		require.NoError(t, s.Put(ctx, "users/u1/likedQuotes/a", []byte(`"a"`)))
		require.NoError(t, s.Put(ctx, "users/u1/likedQuotes/a/nested", []byte(`"x"`)))
		require.NoError(t, s.Put(ctx, "users/u2/likedQuotes/c", []byte(`"c"`)))

		got, err := s.Children(ctx, "users/u1/likedQuotes")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Key)
		assert.Equal(t, "b", got[1].Key)
		assert.Equal(t, `"a"`, string(got[0].Value))
	})

	t.Run("children of missing path is empty", func(t *testing.T) {
		s := newStore(t)

		got, err := s.Children(ctx, "nothing/here")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("put if absent writes once", func(t *testing.T) {
		s := newStore(t)

		ok, err := s.PutIfAbsent(ctx, "meta/seeded/Wisdom", []byte(`true`))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.PutIfAbsent(ctx, "meta/seeded/Wisdom", []byte(`false`))
		require.NoError(t, err)
		assert.False(t, ok)

		v, err := s.Get(ctx, "meta/seeded/Wisdom")
		require.NoError(t, err)
		assert.Equal(t, "true", string(v))
	})

	t.Run("put if absent is exclusive under contention", func(t *testing.T) {
		s := newStore(t)

		const writers = 16

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)

		for range writers {
			wg.Go(func() {
				ok, err := s.PutIfAbsent(ctx, "meta/seeded/Art", []byte(`true`))
				assert.NoError(t, err)

				if ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			})
		}

		wg.Wait()
		assert.Equal(t, 1, wins)
	})

	t.Run("delete removes the subtree only", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Put(ctx, "users/u1", []byte(`{}`)))
		require.NoError(t, s.Put(ctx, "users/u1/customQuotes/q1", []byte(`1`)))
		require.NoError(t, s.Put(ctx, "users/u1/customQuotes/q2", []byte(`2`)))
		require.NoError(t, s.Put(ctx, "users/u1/activityLog/l1", []byte(`3`)))
		require.NoError(t, s.Put(ctx, "users/u10/customQuotes/q1", []byte(`4`)))

		require.NoError(t, s.Delete(ctx, "users/u1/customQuotes"))

		got, err := s.Children(ctx, "users/u1/customQuotes")
		require.NoError(t, err)
		assert.Empty(t, got)

		v, err := s.Get(ctx, "users/u1/activityLog/l1")
		require.NoError(t, err)
		assert.NotNil(t, v)

		v, err = s.Get(ctx, "users/u10/customQuotes/q1")
		require.NoError(t, err)
		assert.NotNil(t, v, "sibling with shared prefix must survive")

		require.NoError(t, s.Delete(ctx, "users/u1"))

		v, err = s.Get(ctx, "users/u1")
		require.NoError(t, err)
		assert.Nil(t, v)

		v, err = s.Get(ctx, "users/u1/activityLog/l1")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("delete missing path is a no-op", func(t *testing.T) {
		s := newStore(t)

		assert.NoError(t, s.Delete(ctx, "quotes/absent"))
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)

		assert.NoError(t, s.Ping(ctx))
	})
}

// RunBusSuite exercises a bus from newBus. Publishing and listening go
// through the same instance.
func RunBusSuite(t *testing.T, newBus func(t *testing.T) tree.Bus) {
	t.Helper()

	t.Run("listener receives notices in order", func(t *testing.T) {
		b := newBus(t)
		ctx := context.Background()

		got := make(chan string, 8)

		stop, err := b.Listen(ctx, func(path string) { got <- path })
		require.NoError(t, err)
		defer stop()

		for _, p := range []string{"quotes/a", "quotes/b", "users/u1"} {
			require.NoError(t, b.Publish(ctx, p))
		}

		for _, want := range []string{"quotes/a", "quotes/b", "users/u1"} {
			select {
			case p := <-got:
				assert.Equal(t, want, p)
			case <-time.After(5 * time.Second):
				t.Fatalf("timed out waiting for %s", want)
			}
		}
	})

	t.Run("stopped listener receives nothing", func(t *testing.T) {
		b := newBus(t)
		ctx := context.Background()

		got := make(chan string, 8)

		stop, err := b.Listen(ctx, func(path string) { got <- path })
		require.NoError(t, err)
		stop()
		stop()

		require.NoError(t, b.Publish(ctx, "quotes/a"))

		select {
		case p := <-got:
			t.Fatalf("unexpected notice %s", p)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("cancelled context stops the listener", func(t *testing.T) {
		b := newBus(t)

		ctx, cancel := context.WithCancel(context.Background())
		got := make(chan string, 8)

		_, err := b.Listen(ctx, func(path string) { got <- path })
		require.NoError(t, err)

		cancel()
		time.Sleep(50 * time.Millisecond)

		require.NoError(t, b.Publish(context.Background(), "quotes/a"))

		select {
		case p := <-got:
			t.Fatalf("unexpected notice %s", p)
		case <-time.After(100 * time.Millisecond):
		}
	})
}
