package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/memtree"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

func newQuote(text, category string) domain.Quote {
	return domain.Quote{Text: text, Author: "Me", Category: category}
}

func readQuote(t *testing.T, env *testEnv, path string) (domain.Quote, bool) {
	t.Helper()

	snap, err := env.tree.Get(context.Background(), path)
	require.NoError(t, err)

	if len(snap.Value) == 0 {
		return domain.Quote{}, false
	}

	var q domain.Quote
	require.NoError(t, snap.Decode(&q))

	return q, true
}

func TestNewQuoteRepository_PanicsWithoutTree(t *testing.T) {
	assert.Panics(t, func() { NewQuoteRepository(QuoteRepositoryConfig{}) })
}

func TestQuoteRepository_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	id, err := env.repo.Create(ctx, newQuote("Keep going.", "Custom"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	canonical, ok := readQuote(t, env, domain.QuotePath(id))
	require.True(t, ok)
	assert.Equal(t, id, canonical.ID)
	assert.Equal(t, "u1", canonical.UserID)
	assert.False(t, canonical.Liked)
	assert.Positive(t, canonical.Timestamp)

	mirror, ok := readQuote(t, env, domain.CustomQuotePath("u1", id))
	require.True(t, ok)
	assert.Equal(t, canonical, mirror)

	entries, err := env.activity.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionQuoteCreated, entries[0].Action)
	assert.Equal(t, "Created quote in Custom category", entries[0].Description)
	assert.Equal(t, id, entries[0].QuoteID)
}

func TestQuoteRepository_CreateRejects(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		quote    domain.Quote
		errCheck func(error) bool
	}{
		{
			name:     "anonymous",
			ctx:      context.Background(),
			quote:    newQuote("text", "Art"),
			errCheck: domain.IsPermissionDenied,
		},
		{
			name:     "empty text",
			ctx:      as("u1"),
			quote:    newQuote("  ", "Art"),
			errCheck: domain.IsValidation,
		},
		{
			name:     "empty category",
			ctx:      as("u1"),
			quote:    newQuote("text", ""),
			errCheck: domain.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.repo.Create(tt.ctx, tt.quote)
			require.Error(t, err)
			assert.True(t, tt.errCheck(err))
			assert.Zero(t, env.store.Len())
		})
	}
}

func TestQuoteRepository_CreateMirrorFailureIsPartial(t *testing.T) {
	env := newTestEnv(t)
	env.store.InjectFault(failOn(memtree.OpPut, domain.CustomQuotesPath("u1")))

	_, err := env.repo.Create(as("u1"), newQuote("Half done.", "Custom"))
	require.Error(t, err)
	assert.True(t, domain.IsPartialWrite(err))

	var pw *domain.PartialWriteError
	require.True(t, errors.As(err, &pw))
	require.Len(t, pw.Written, 1)
	require.Len(t, pw.Failed, 1)

	_, ok := readQuote(t, env, pw.Written[0])
	assert.True(t, ok, "canonical record stays")

	_, ok = readQuote(t, env, pw.Failed[0])
	assert.False(t, ok)
}

func TestQuoteRepository_CreateReadBackFailureIsPartial(t *testing.T) {
	env := newTestEnv(t)
	env.store.InjectFault(failOn(memtree.OpGet, domain.QuotesRoot+"/"))

	_, err := env.repo.Create(as("u1"), newQuote("Unconfirmed.", "Custom"))
	require.Error(t, err)
	assert.True(t, domain.IsPartialWrite(err))
	assert.True(t, domain.IsUnavailable(err))

	var pw *domain.PartialWriteError
	require.True(t, errors.As(err, &pw))
	require.Len(t, pw.Written, 1)
	require.Len(t, pw.Failed, 1)

	id := strings.TrimPrefix(pw.Written[0], domain.QuotesRoot+"/")
	assert.Equal(t, domain.QuotePath(id), pw.Written[0])
	assert.Equal(t, domain.CustomQuotePath("u1", id), pw.Failed[0])

	env.store.InjectFault(nil)

	_, ok := readQuote(t, env, pw.Written[0])
	assert.True(t, ok, "canonical record stays")

	_, ok = readQuote(t, env, pw.Failed[0])
	assert.False(t, ok, "mirror is not written after a failed read-back")
}

func TestQuoteRepository_QueryByCategory(t *testing.T) {
	t.Run("empty known category is seeded once", func(t *testing.T) {
		env := newTestEnv(t)

		got, err := env.repo.QueryByCategory(context.Background(), "Wisdom")
		require.NoError(t, err)
		assert.Len(t, got, len(DefaultSeeds["Wisdom"]))

		for _, q := range got {
			assert.Equal(t, "Wisdom", q.Category)
			assert.False(t, q.Liked)
		}

		again, err := env.repo.QueryByCategory(context.Background(), "Wisdom")
		require.NoError(t, err)
		assert.Len(t, again, len(got))
	})

	t.Run("category match is exact", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.repo.Create(as("u1"), newQuote("mine", "Poetry"))
		require.NoError(t, err)

		got, err := env.repo.QueryByCategory(context.Background(), "poetry")
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = env.repo.QueryByCategory(context.Background(), "Poetry")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("results are in creation order and stamped", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := as("u1")

		first, err := env.repo.Create(ctx, newQuote("one", "Poetry"))
		require.NoError(t, err)
		second, err := env.repo.Create(ctx, newQuote("two", "Poetry"))
		require.NoError(t, err)

		q, err := env.repo.Get(ctx, second)
		require.NoError(t, err)
		_, err = env.likes.Toggle(ctx, q)
		require.NoError(t, err)

		got, err := env.repo.QueryByCategory(ctx, "Poetry")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first, got[0].ID)
		assert.False(t, got[0].Liked)
		assert.Equal(t, second, got[1].ID)
		assert.True(t, got[1].Liked)

		anon, err := env.repo.QueryByCategory(context.Background(), "Poetry")
		require.NoError(t, err)
		assert.False(t, anon[1].Liked)
	})

	t.Run("empty category is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.repo.QueryByCategory(context.Background(), "")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("seeding disabled leaves the category empty", func(t *testing.T) {
		env := newTestEnv(t)
		repo := NewQuoteRepository(QuoteRepositoryConfig{Tree: env.tree, Logger: discardLogger()})

		got, err := repo.QueryByCategory(context.Background(), "Wisdom")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestQuoteRepository_Get(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.repo.Get(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))

	_, err = env.repo.Get(context.Background(), "")
	assert.True(t, domain.IsValidation(err))

	id, err := env.repo.Create(as("u1"), newQuote("found", "Custom"))
	require.NoError(t, err)

	q, err := env.repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "found", q.Text)
}

func TestQuoteRepository_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	id, err := env.repo.Create(ctx, newQuote("draft", "Custom"))
	require.NoError(t, err)

	before, _ := readQuote(t, env, domain.QuotePath(id))

	updated, err := env.repo.Update(ctx, id, "final", "Someone", "Life")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Text)
	assert.Equal(t, "Life", updated.Category)
	assert.False(t, updated.Liked)
	assert.Greater(t, updated.Timestamp, before.Timestamp)

	canonical, _ := readQuote(t, env, domain.QuotePath(id))
	mirror, _ := readQuote(t, env, domain.CustomQuotePath("u1", id))
	assert.Equal(t, "final", canonical.Text)
	assert.Equal(t, canonical, mirror)

	entries, err := env.activity.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionQuoteUpdated, entries[0].Action)
}

func TestQuoteRepository_UpdateRejects(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.repo.Create(as("u1"), newQuote("draft", "Custom"))
	require.NoError(t, err)

	_, err = env.repo.Update(as("u2"), id, "hijack", "x", "Custom")
	assert.True(t, domain.IsPermissionDenied(err))

	_, err = env.repo.Update(context.Background(), id, "anon", "x", "Custom")
	assert.True(t, domain.IsPermissionDenied(err))

	_, err = env.repo.Update(as("u1"), "missing", "text", "x", "Custom")
	assert.True(t, domain.IsNotFound(err))

	_, err = env.repo.Update(as("u1"), id, "", "x", "Custom")
	assert.True(t, domain.IsValidation(err))

	canonical, _ := readQuote(t, env, domain.QuotePath(id))
	assert.Equal(t, "draft", canonical.Text)
}

func TestQuoteRepository_UpdateMirrorFailureIsPartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	id, err := env.repo.Create(ctx, newQuote("draft", "Custom"))
	require.NoError(t, err)

	env.store.InjectFault(failOn(memtree.OpPut, domain.CustomQuotePath("u1", id)))

	_, err = env.repo.Update(ctx, id, "final", "Me", "Custom")
	require.Error(t, err)
	assert.True(t, domain.IsPartialWrite(err))

	canonical, _ := readQuote(t, env, domain.QuotePath(id))
	mirror, _ := readQuote(t, env, domain.CustomQuotePath("u1", id))
	assert.Equal(t, "final", canonical.Text)
	assert.Equal(t, "draft", mirror.Text)
}

func TestQuoteRepository_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	id, err := env.repo.Create(ctx, newQuote("short lived", "Custom"))
	require.NoError(t, err)

	q, err := env.repo.Get(as("u2"), id)
	require.NoError(t, err)
	_, err = env.likes.Toggle(as("u2"), q)
	require.NoError(t, err)

	require.NoError(t, env.repo.Delete(ctx, id))

	_, ok := readQuote(t, env, domain.QuotePath(id))
	assert.False(t, ok)
	_, ok = readQuote(t, env, domain.CustomQuotePath("u1", id))
	assert.False(t, ok)
	_, ok = readQuote(t, env, domain.LikedQuotePath("u2", id))
	assert.True(t, ok, "other users' like relations are left in place")

	entries, err := env.activity.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionQuoteDeleted, entries[0].Action)
	assert.Equal(t, "Deleted quote from Custom category", entries[0].Description)

	assert.True(t, domain.IsNotFound(env.repo.Delete(ctx, id)))
}

func TestQuoteRepository_DeleteRejects(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.repo.Create(as("u1"), newQuote("mine", "Custom"))
	require.NoError(t, err)

	assert.True(t, domain.IsPermissionDenied(env.repo.Delete(as("u2"), id)))
	assert.True(t, domain.IsPermissionDenied(env.repo.Delete(context.Background(), id)))
	assert.True(t, domain.IsValidation(env.repo.Delete(as("u1"), "")))

	_, ok := readQuote(t, env, domain.QuotePath(id))
	assert.True(t, ok)
}

func TestQuoteRepository_DeleteRollsBackOnMirrorFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	id, err := env.repo.Create(ctx, newQuote("sticky", "Custom"))
	require.NoError(t, err)

	env.store.InjectFault(failOn(memtree.OpDelete, domain.CustomQuotePath("u1", id)))

	err = env.repo.Delete(ctx, id)
	require.Error(t, err)
	assert.False(t, domain.IsPartialWrite(err), "a rolled-back delete changed nothing")
	assert.True(t, domain.IsUnavailable(err))

	canonical, ok := readQuote(t, env, domain.QuotePath(id))
	require.True(t, ok, "canonical removal is rolled back")
	assert.Equal(t, "sticky", canonical.Text)

	_, ok = readQuote(t, env, domain.CustomQuotePath("u1", id))
	assert.True(t, ok)

	entries, err := env.activity.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionQuoteCreated, entries[0].Action, "no delete entry is recorded")
}

func TestQuoteRepository_DeleteFailedRestoreIsPartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	id, err := env.repo.Create(ctx, newQuote("gone", "Custom"))
	require.NoError(t, err)

	canonicalPath := domain.QuotePath(id)
	mirrorPath := domain.CustomQuotePath("u1", id)

	env.store.InjectFault(func(op memtree.Op, path string) error {
		switch {
		case op == memtree.OpDelete && path == mirrorPath:
			return errInjected
		case op == memtree.OpPut && path == canonicalPath:
			return errInjected
		}

		return nil
	})

	err = env.repo.Delete(ctx, id)
	require.Error(t, err)
	assert.True(t, domain.IsPartialWrite(err))

	var pw *domain.PartialWriteError
	require.True(t, errors.As(err, &pw))
	assert.Equal(t, []string{canonicalPath}, pw.Written)
	assert.Equal(t, []string{mirrorPath}, pw.Failed)

	env.store.InjectFault(nil)

	_, ok := readQuote(t, env, canonicalPath)
	assert.False(t, ok, "canonical removal could not be restored")

	_, ok = readQuote(t, env, mirrorPath)
	assert.True(t, ok)
}

func TestQuoteRepository_LatestCustom(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	_, found, err := env.repo.LatestCustom(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = env.repo.Create(ctx, newQuote("older", "Custom"))
	require.NoError(t, err)
	newest, err := env.repo.Create(ctx, newQuote("newer", "Custom"))
	require.NoError(t, err)

	q, found, err := env.repo.LatestCustom(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, newest, q.ID)

	_, _, err = env.repo.LatestCustom(context.Background())
	assert.True(t, domain.IsPermissionDenied(err))
}

func TestQuoteRepository_ClearAllCustom(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	var mine []string
	for _, text := range []string{"a", "b"} {
		id, err := env.repo.Create(ctx, newQuote(text, "Custom"))
		require.NoError(t, err)
		mine = append(mine, id)
	}

	theirs, err := env.repo.Create(as("u2"), newQuote("c", "Custom"))
	require.NoError(t, err)

	n, err := env.repo.ClearAllCustom(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range mine {
		_, ok := readQuote(t, env, domain.QuotePath(id))
		assert.False(t, ok)
	}

	_, ok := readQuote(t, env, domain.QuotePath(theirs))
	assert.True(t, ok)

	snap, err := env.tree.Get(context.Background(), domain.CustomQuotesPath("u1"))
	require.NoError(t, err)
	assert.False(t, snap.Exists())

	entries, err := env.activity.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = env.repo.ClearAllCustom(context.Background())
	assert.True(t, domain.IsPermissionDenied(err))
}

func TestQuoteRepository_Watch(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(as("u1"))
	defer cancel()

	seq, err := env.repo.Watch(ctx, "Poetry")
	require.NoError(t, err)

	lists := make(chan []domain.Quote, 8)

	go func() {
		defer close(lists)

		for quotes, err := range seq {
			if err != nil {
				continue
			}

			lists <- quotes
			if len(quotes) == 2 {
				return
			}
		}
	}()

	recv := func() []domain.Quote {
		select {
		case l := <-lists:
			return l
		case <-time.After(waitFor):
			t.Fatal("timed out waiting for quotes")
			return nil
		}
	}

	assert.Empty(t, recv())

	_, err = env.repo.Create(as("u1"), newQuote("one", "Poetry"))
	require.NoError(t, err)
	_, err = env.repo.Create(as("u1"), newQuote("elsewhere", "Drama"))
	require.NoError(t, err)
	_, err = env.repo.Create(as("u1"), newQuote("two", "Poetry"))
	require.NoError(t, err)

	got := recv()
	for len(got) < 2 {
		got = recv()
	}

	assert.Equal(t, "one", got[0].Text)
	assert.Equal(t, "two", got[1].Text)

	_, err = env.repo.Watch(ctx, "")
	assert.True(t, domain.IsValidation(err))
}
