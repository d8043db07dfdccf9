package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/memtree"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

func countCategory(t *testing.T, rt ports.RemoteTree, category string) int {
	t.Helper()

	snap, err := rt.GetOnce(context.Background(), ports.At(domain.QuotesRoot).OrderBy("category").Equal(category))
	require.NoError(t, err)

	return len(snap.Children)
}

func TestNewSeeder_PanicsWithoutTree(t *testing.T) {
	assert.Panics(t, func() { NewSeeder(SeederConfig{}) })
}

func TestSeeder_Seed(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the curated entries once", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.seeder.Seed(ctx, "Wisdom", "u1")
		require.NoError(t, err)
		assert.Equal(t, SeedWritten, res.Outcome)
		assert.Len(t, res.IDs, len(DefaultSeeds["Wisdom"]))
		assert.Zero(t, res.Failed)
		assert.True(t, env.seeder.Attempted("Wisdom"))

		assert.Equal(t, 5, countCategory(t, env.tree, "Wisdom"))

		marker, err := env.tree.Get(ctx, domain.SeededMarkerPath("Wisdom"))
		require.NoError(t, err)
		assert.True(t, marker.Exists())

		again, err := env.seeder.Seed(ctx, "Wisdom", "u1")
		require.NoError(t, err)
		assert.Equal(t, SeedAlreadyAttempted, again.Outcome)
		assert.Equal(t, 5, countCategory(t, env.tree, "Wisdom"))
	})

	t.Run("seeded quotes carry the requesting user", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.seeder.Seed(ctx, "Motivation", "u1")
		require.NoError(t, err)
		require.Len(t, res.IDs, len(DefaultSeeds["Motivation"]))

		for _, id := range res.IDs {
			var q domain.Quote
			snap, err := env.tree.Get(ctx, domain.QuotePath(id))
			require.NoError(t, err)
			require.NoError(t, snap.Decode(&q))
			assert.Equal(t, "u1", q.UserID, id)
			assert.False(t, q.Liked, id)
			assert.Equal(t, "Motivation", q.Category, id)
			assert.NotZero(t, q.Timestamp, id)
		}
	})

	t.Run("anonymous reader seeds without a user", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.seeder.Seed(ctx, "Art", "")
		require.NoError(t, err)
		require.NotEmpty(t, res.IDs)

		var q domain.Quote
		snap, err := env.tree.Get(ctx, domain.QuotePath(res.IDs[0]))
		require.NoError(t, err)
		require.NoError(t, snap.Decode(&q))
		assert.Empty(t, q.UserID)
	})

	t.Run("unknown category is guarded but not written", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.seeder.Seed(ctx, "Astronomy", "")
		require.NoError(t, err)
		assert.Equal(t, SeedUnknownCategory, res.Outcome)
		assert.True(t, env.seeder.Attempted("Astronomy"))
		assert.Zero(t, env.store.Len())
	})

	t.Run("marker held elsewhere skips writing", func(t *testing.T) {
		env := newTestEnv(t)

		ok, err := env.tree.SetIfAbsent(ctx, domain.SeededMarkerPath("Life"), map[string]any{"seededAt": 1})
		require.NoError(t, err)
		require.True(t, ok)

		res, err := env.seeder.Seed(ctx, "Life", "u1")
		require.NoError(t, err)
		assert.Equal(t, SeedClaimedElsewhere, res.Outcome)
		assert.Zero(t, countCategory(t, env.tree, "Life"))
	})

	t.Run("every write failing releases the marker", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.InjectFault(failOn(memtree.OpPut, domain.QuotesRoot+"/"))

		res, err := env.seeder.Seed(ctx, "Love", "u1")
		require.NoError(t, err)
		assert.Equal(t, SeedAllFailed, res.Outcome)
		assert.Equal(t, 5, res.Failed)

		marker, err := env.tree.Get(ctx, domain.SeededMarkerPath("Love"))
		require.NoError(t, err)
		assert.False(t, marker.Exists())
	})

	t.Run("claim failure allows another attempt", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.InjectFault(failOn(memtree.OpPutIfAbsent, domain.SeededRoot))

		_, err := env.seeder.Seed(ctx, "Success", "u1")
		require.Error(t, err)
		assert.True(t, domain.IsUnavailable(err))
		assert.False(t, env.seeder.Attempted("Success"))

		env.store.InjectFault(nil)

		res, err := env.seeder.Seed(ctx, "Success", "u1")
		require.NoError(t, err)
		assert.Equal(t, SeedWritten, res.Outcome)
	})

	t.Run("empty category is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.seeder.Seed(ctx, "", "u1")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.False(t, env.seeder.Attempted(""))
	})
}

func TestSeeder_ConcurrentProcessesSeedOnce(t *testing.T) {
	env := newTestEnv(t)

	seeders := make([]*Seeder, 6)
	for i := range seeders {
		seeders[i] = NewSeeder(SeederConfig{Tree: env.tree, Concurrency: 2, Logger: discardLogger()})
	}

	var wg sync.WaitGroup
	for _, s := range seeders {
		wg.Go(func() {
			_, err := s.Seed(context.Background(), "Motivation", "")
			assert.NoError(t, err)
		})
	}

	wg.Wait()

	assert.Equal(t, len(DefaultSeeds["Motivation"]), countCategory(t, env.tree, "Motivation"))
}

func TestSeeder_Categories(t *testing.T) {
	s := NewSeeder(SeederConfig{
		Tree:  &struct{ ports.RemoteTree }{},
		Table: map[string][]SeedQuote{"b": nil, "a": nil, "c": nil},
	})

	assert.Equal(t, []string{"a", "b", "c"}, s.Categories())
	assert.Len(t, DefaultSeeds, 8)
}
