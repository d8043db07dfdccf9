package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/memtree"
	"github.com/jsamuelsen/quotehub-sync/internal/app/apptest"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

func TestQuoteHandler_Create(t *testing.T) {
	srv := newTestServer(t, apptest.Options{})

	w := srv.do(t, http.MethodPost, "/api/v1/quotes", "u1", dto.QuoteRequest{
		Text:     "Keep going.",
		Author:   "Me",
		Category: "Custom",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created dto.CreatedResponse
	decode(t, w, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/v1/quotes/"+created.ID, w.Header().Get("Location"))

	w = srv.do(t, http.MethodGet, "/api/v1/quotes/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got dto.QuoteResponse
	decode(t, w, &got)
	assert.Equal(t, "Keep going.", got.Text)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.Liked)
}

func TestQuoteHandler_Create_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		uid        string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "anonymous",
			body:       dto.QuoteRequest{Text: "t", Author: "a", Category: "c"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   dto.ErrorCodeUnauthorized,
		},
		{
			name:       "blank text",
			uid:        "u1",
			body:       dto.QuoteRequest{Text: "   ", Author: "a", Category: "c"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "missing category",
			uid:        "u1",
			body:       map[string]string{"text": "t", "author": "a"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "malformed body",
			uid:        "u1",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, apptest.Options{})

			w := srv.do(t, http.MethodPost, "/api/v1/quotes", tt.uid, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestQuoteHandler_Create_PartialWrite(t *testing.T) {
	srv := newTestServer(t, apptest.Options{})
	srv.env.Store.InjectFault(failOn(memtree.OpPut, domain.CustomQuotesPath("u1")))

	w := srv.do(t, http.MethodPost, "/api/v1/quotes", "u1", dto.QuoteRequest{
		Text:     "Half done.",
		Author:   "Me",
		Category: "Custom",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp dto.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, dto.ErrorCodePartialWrite, resp.Error.Code)
	assert.True(t, strings.HasPrefix(resp.Error.Details["written"], domain.QuotesRoot+"/"))
	assert.True(t, strings.HasPrefix(resp.Error.Details["failed"], domain.CustomQuotesPath("u1")))
}

func TestQuoteHandler_List(t *testing.T) {
	t.Run("category filter", func(t *testing.T) {
		srv := newTestServer(t, apptest.Options{})

		first := srv.createQuote(t, "u1", "one", "Custom")
		second := srv.createQuote(t, "u2", "two", "Custom")
		srv.createQuote(t, "u1", "elsewhere", "custom")

		w := srv.do(t, http.MethodGet, "/api/v1/quotes?category=Custom", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.QuoteListResponse
		decode(t, w, &resp)
		assert.Equal(t, "Custom", resp.Category)
		require.Len(t, resp.Quotes, 2, "category match is exact")
		assert.Equal(t, first, resp.Quotes[0].ID)
		assert.Equal(t, second, resp.Quotes[1].ID)
	})

	t.Run("seeds an empty category", func(t *testing.T) {
		srv := newTestServer(t, apptest.Options{Seeding: true})

		w := srv.do(t, http.MethodGet, "/api/v1/quotes?category=Wisdom", "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.QuoteListResponse
		decode(t, w, &resp)
		assert.Len(t, resp.Quotes, 5)

		for _, q := range resp.Quotes {
			assert.Equal(t, "Wisdom", q.Category)
			assert.Equal(t, "u1", q.UserID, "seeded for the reader who found the category empty")
		}
	})

	t.Run("missing category", func(t *testing.T) {
		srv := newTestServer(t, apptest.Options{})

		w := srv.do(t, http.MethodGet, "/api/v1/quotes", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrorCodeValidation, errorCode(t, w))
	})
}

func TestQuoteHandler_Get_NotFound(t *testing.T) {
	srv := newTestServer(t, apptest.Options{})

	w := srv.do(t, http.MethodGet, "/api/v1/quotes/missing", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrorCodeNotFound, errorCode(t, w))
}

func TestQuoteHandler_Update(t *testing.T) {
	srv := newTestServer(t, apptest.Options{})
	id := srv.createQuote(t, "u1", "draft", "Custom")

	t.Run("author edits", func(t *testing.T) {
		w := srv.do(t, http.MethodPut, "/api/v1/quotes/"+id, "u1", dto.QuoteRequest{
			Text:     "final",
			Author:   "Me",
			Category: "Custom",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var got dto.QuoteResponse
		decode(t, w, &got)
		assert.Equal(t, "final", got.Text)
	})

	t.Run("someone else", func(t *testing.T) {
		w := srv.do(t, http.MethodPut, "/api/v1/quotes/"+id, "u2", dto.QuoteRequest{
			Text:     "hijacked",
			Author:   "Them",
			Category: "Custom",
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrorCodeForbidden, errorCode(t, w))
	})
}

func TestQuoteHandler_Delete(t *testing.T) {
	srv := newTestServer(t, apptest.Options{})
	id := srv.createQuote(t, "u1", "short lived", "Custom")

	w := srv.do(t, http.MethodDelete, "/api/v1/quotes/"+id, "u2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodDelete, "/api/v1/quotes/"+id, "u1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/quotes/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodDelete, "/api/v1/quotes/"+id, "u1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteHandler_ToggleLike(t *testing.T) {
	srv := newTestServer(t, apptest.Options{})
	id := srv.createQuote(t, "u1", "likeable", "Custom")

	w := srv.do(t, http.MethodGet, "/api/v1/quotes/"+id+"/like", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state dto.LikeStateResponse
	decode(t, w, &state)
	assert.Equal(t, "unliked", state.State)

	w = srv.do(t, http.MethodPost, "/api/v1/quotes/"+id+"/like", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var toggled dto.QuoteResponse
	decode(t, w, &toggled)
	assert.True(t, toggled.Liked)

	w = srv.do(t, http.MethodGet, "/api/v1/quotes/"+id+"/like", "u2", nil)
	decode(t, w, &state)
	assert.Equal(t, dto.LikeStateResponse{QuoteID: id, State: "liked", Liked: true}, state)

	w = srv.do(t, http.MethodGet, "/api/v1/quotes/"+id+"/like", "u1", nil)
	decode(t, w, &state)
	assert.False(t, state.Liked, "likes are per user")

	w = srv.do(t, http.MethodPost, "/api/v1/quotes/"+id+"/like", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &toggled)
	assert.False(t, toggled.Liked)
}

func TestQuoteHandler_ToggleLike_DeletedQuote(t *testing.T) {
	srv := newTestServer(t, apptest.Options{})
	id := srv.createQuote(t, "u1", "soon gone", "Custom")

	w := srv.do(t, http.MethodPost, "/api/v1/quotes/"+id+"/like", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodDelete, "/api/v1/quotes/"+id, "u1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/quotes/"+id+"/like", "u2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var toggled dto.QuoteResponse
	decode(t, w, &toggled)
	assert.False(t, toggled.Liked)

	w = srv.do(t, http.MethodPost, "/api/v1/quotes/"+id+"/like", "u2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "nothing left to toggle")
}

func TestQuoteHandler_Stream(t *testing.T) {
	srv := newTestServer(t, apptest.Options{})
	srv.createQuote(t, "u1", "streamed", "Custom")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	w := srv.doContext(t, ctx, http.MethodGet, "/api/v1/quotes/stream?category=Custom", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "event:"+eventQuotes)
	assert.Contains(t, w.Body.String(), "streamed")
}
