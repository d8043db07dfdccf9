package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

func TestStaticCatalog_Bindings(t *testing.T) {
	c := NewStaticCatalog(nil)

	bindings := c.Bindings()
	assert.Len(t, bindings, 6*4*2)

	seen := make(map[Binding]bool)
	for _, b := range bindings {
		assert.False(t, seen[b], "duplicate binding %+v", b)
		seen[b] = true
	}

	page, err := c.Page("Success")
	require.NoError(t, err)
	require.Len(t, page, 4)
	assert.Equal(t, "Tony Robbins", page[0].Author)

	page[0].Author = "changed"
	again, err := c.Page("Success")
	require.NoError(t, err)
	assert.Equal(t, "Tony Robbins", again[0].Author)

	_, err = c.Page("Motivation")
	assert.True(t, domain.IsNotFound(err))
}

func TestStaticCatalog_InvokeCopy(t *testing.T) {
	c := NewStaticCatalog(nil)

	res, err := c.Invoke(context.Background(), "Wisdom", 2, SlotCopy)
	require.NoError(t, err)
	assert.Equal(t, SlotCopy, res.Slot)
	assert.Equal(t, "Look for the answer inside your question. - Rumi", res.Text)
	assert.Nil(t, res.Liked)
}

func TestStaticCatalog_InvokeFavorite(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.catalog.Invoke(as("u1"), "Friendship", 0, SlotFavorite)
	require.NoError(t, err)
	require.NotNil(t, res.Liked)
	assert.Equal(t, "Friendship needs no words.", res.Liked.Text)
	assert.Equal(t, "Friendship", res.Liked.Category)

	rec, ok := likeRecord(t, env, "u1", res.Liked.ID)
	require.True(t, ok)
	assert.True(t, rec.Liked)

	_, err = env.catalog.Invoke(context.Background(), "Friendship", 0, SlotFavorite)
	assert.True(t, domain.IsPermissionDenied(err))

	_, err = NewStaticCatalog(nil).Invoke(as("u1"), "Friendship", 0, SlotFavorite)
	assert.True(t, domain.IsUnavailable(err))
}

func TestStaticCatalog_InvokeUnknown(t *testing.T) {
	c := NewStaticCatalog(nil)

	tests := []struct {
		name     string
		category string
		index    int
		slot     HandlerSlot
	}{
		{"unknown page", "Nope", 0, SlotCopy},
		{"index past the page", "Life", 4, SlotCopy},
		{"negative index", "Life", -1, SlotCopy},
		{"unknown slot", "Life", 0, HandlerSlot("share")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Invoke(context.Background(), tt.category, tt.index, tt.slot)
			assert.True(t, domain.IsNotFound(err))
		})
	}
}

func TestParseHandlerSlot(t *testing.T) {
	slot, err := ParseHandlerSlot("favorite")
	require.NoError(t, err)
	assert.Equal(t, SlotFavorite, slot)

	_, err = ParseHandlerSlot("share")
	assert.True(t, domain.IsValidation(err))
}
