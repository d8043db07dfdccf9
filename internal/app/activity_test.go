package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

func TestActivityLogger_Record(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	entry, err := env.activity.Record(ctx, domain.ActionQuoteCreated, "Created quote in Art category", "q1", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Positive(t, entry.Timestamp)

	snap, err := env.tree.Get(context.Background(), domain.JoinPath(domain.ActivityLogPath("u1"), entry.ID))
	require.NoError(t, err)

	var stored domain.ActivityLogEntry
	require.NoError(t, snap.Decode(&stored))
	assert.Equal(t, entry, stored)

	explicit, err := env.activity.Record(ctx, domain.ActionQuoteDeleted, "x", "", 1234)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), explicit.Timestamp)
}

func TestActivityLogger_RecordRejects(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.activity.Record(context.Background(), domain.ActionQuoteCreated, "d", "", 0)
	require.Error(t, err)
	assert.True(t, domain.IsPermissionDenied(err))

	_, err = env.activity.Record(as("u1"), "", "d", "", 0)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestActivityLogger_Recent(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	for i := range 7 {
		_, err := env.activity.Record(ctx, domain.ActionQuoteCreated, fmt.Sprintf("entry %d", i), "", int64(1000+i))
		require.NoError(t, err)
	}

	_, err := env.activity.Record(as("u2"), domain.ActionQuoteCreated, "other user", "", 5000)
	require.NoError(t, err)

	got, err := env.activity.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 5)

	for i, e := range got {
		assert.Equal(t, fmt.Sprintf("entry %d", 6-i), e.Description)
	}

	two, err := env.activity.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, int64(1006), two[0].Timestamp)
	assert.Equal(t, int64(1005), two[1].Timestamp)

	empty, err := env.activity.Recent(as("nobody"), 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestActivityLogger_Page(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	for i := range 5 {
		_, err := env.activity.Record(ctx, domain.ActionQuoteLiked, fmt.Sprintf("entry %d", i), "", int64(100+i))
		require.NoError(t, err)
	}

	first, err := env.activity.Page(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 3, "one extra entry signals another page")
	assert.Equal(t, "entry 4", first[0].Description)
	assert.Equal(t, "entry 3", first[1].Description)

	last := first[1]

	second, err := env.activity.Page(ctx, &ActivityCursor{Timestamp: last.Timestamp, ID: last.ID}, 2)
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Equal(t, "entry 2", second[0].Description)

	tail := second[1]

	third, err := env.activity.Page(ctx, &ActivityCursor{Timestamp: tail.Timestamp, ID: tail.ID}, 2)
	require.NoError(t, err)
	require.Len(t, third, 1)
	assert.Equal(t, "entry 0", third[0].Description)

	_, err = env.activity.Page(ctx, nil, 0)
	assert.True(t, domain.IsValidation(err))
}

func TestActivityLogger_PageTiesBreakOnKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	for i := range 3 {
		_, err := env.activity.Record(ctx, domain.ActionQuoteLiked, fmt.Sprintf("same %d", i), "", 42)
		require.NoError(t, err)
	}

	page, err := env.activity.Page(ctx, nil, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)

	rest, err := env.activity.Page(ctx, &ActivityCursor{Timestamp: page[0].Timestamp, ID: page[0].ID}, 5)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, page[1].ID, rest[0].ID)
	assert.Greater(t, page[0].ID, rest[0].ID)
}

func TestActivityLogger_Clear(t *testing.T) {
	env := newTestEnv(t)
	ctx := as("u1")

	_, err := env.activity.Record(ctx, domain.ActionQuoteCreated, "d", "", 0)
	require.NoError(t, err)

	require.NoError(t, env.activity.Clear(ctx))

	got, err := env.activity.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.True(t, domain.IsPermissionDenied(env.activity.Clear(context.Background())))
}

func TestActivityLogger_Watch(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(as("u1"))
	defer cancel()

	seq, err := env.activity.Watch(ctx, 3)
	require.NoError(t, err)

	type result struct {
		entries []domain.ActivityLogEntry
		err     error
	}

	results := make(chan result, 8)

	go func() {
		defer close(results)

		for entries, err := range seq {
			results <- result{entries, err}
			if len(entries) == 2 {
				return
			}
		}
	}()

	recv := func() result {
		select {
		case r := <-results:
			return r
		case <-time.After(waitFor):
			t.Fatal("timed out waiting for activity")
			return result{}
		}
	}

	initial := recv()
	require.NoError(t, initial.err)
	assert.Empty(t, initial.entries)

	_, err = env.activity.Record(as("u1"), domain.ActionQuoteCreated, "first", "", 10)
	require.NoError(t, err)

	r := recv()
	for len(r.entries) < 1 {
		r = recv()
	}

	assert.Equal(t, "first", r.entries[0].Description)

	_, err = env.activity.Record(as("u1"), domain.ActionQuoteCreated, "second", "", 20)
	require.NoError(t, err)

	r = recv()
	for len(r.entries) < 2 {
		r = recv()
	}

	assert.Equal(t, "second", r.entries[0].Description)
	assert.Equal(t, "first", r.entries[1].Description)

	_, err = env.activity.Watch(context.Background(), 3)
	assert.True(t, domain.IsPermissionDenied(err))
}
