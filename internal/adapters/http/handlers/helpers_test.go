package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/memtree"
	"github.com/jsamuelsen/quotehub-sync/internal/app/apptest"
)

var errInjected = errors.New("injected fault")

// testServer mounts every API handler over an in-memory engine.
type testServer struct {
	env    *apptest.Env
	router *gin.Engine
}

func newTestServer(t *testing.T, opts apptest.Options) *testServer {
	t.Helper()

	env := apptest.New(t, opts)
	e := env.Engine

	router := gin.New()
	api := router.Group("/api/v1", middleware.Authenticate(nil, nil))
	authed := api.Group("", middleware.RequireAuth())

	NewQuoteHandler(e.Quotes, e.Likes).RegisterRoutes(api, authed)
	NewMeHandler(MeHandlerConfig{
		Repo:     e.Quotes,
		Likes:    e.Likes,
		Activity: e.Activity,
		Profile:  e.Profile,
		PageSize: 2,
	}).RegisterRoutes(authed)
	NewSessionHandler(e.Profile, env.Sessions).RegisterRoutes(authed)
	NewStaticHandler(e.Catalog).RegisterRoutes(api)

	return &testServer{env: env, router: router}
}

// do sends a request as uid; an empty uid is anonymous.
func (s *testServer) do(t *testing.T, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	return s.doContext(t, context.Background(), method, path, uid, body)
}

func (s *testServer) doContext(t *testing.T, ctx context.Context, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequestWithContext(ctx, method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if uid != "" {
		req.Header.Set("X-User-ID", uid)
		req.Header.Set("X-User-Email", uid+"@example.com")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

// createQuote posts a quote as uid and returns its id.
func (s *testServer) createQuote(t *testing.T, uid, text, category string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/quotes", uid, dto.QuoteRequest{
		Text:     text,
		Author:   "Me",
		Category: category,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created dto.CreatedResponse
	decode(t, w, &created)

	return created.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp dto.ErrorResponse
	decode(t, w, &resp)

	return resp.Error.Code
}

func failOn(op memtree.Op, prefix string) memtree.FaultFunc {
	return func(o memtree.Op, path string) error {
		if o == op && strings.HasPrefix(path, prefix) {
			return errInjected
		}

		return nil
	}
}
