package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpadapter "github.com/jsamuelsen/quotehub-sync/internal/adapters/http"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotehub-sync/internal/app"
	"github.com/jsamuelsen/quotehub-sync/internal/app/apptest"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/config"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

// setupRouter mounts the full API over an in-memory engine.
func setupRouter(b *testing.B) (*gin.Engine, *apptest.Env) {
	b.Helper()

	env := apptest.New(b, apptest.Options{Seeding: true})
	e := env.Engine

	registry := ports.NewHealthRegistry()
	_ = registry.Register(env.Tree)

	router := gin.New()
	httpadapter.SetupRouter(router, httpadapter.RouterConfig{
		Logger:     apptest.DiscardLogger(),
		AuthConfig: &config.AuthConfig{SubjectHeader: "X-User-ID"},
		HealthHandler: handlers.NewHealthHandler(registry,
			handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z").WithBackend("memory", "local")),
		QuoteHandler: handlers.NewQuoteHandler(e.Quotes, e.Likes),
		MeHandler: handlers.NewMeHandler(handlers.MeHandlerConfig{
			Repo:     e.Quotes,
			Likes:    e.Likes,
			Activity: e.Activity,
			Profile:  e.Profile,
		}),
	})

	return router, env
}

// seedQuotes writes n quotes in category as uid and likes every other one.
func seedQuotes(b *testing.B, e *app.Engine, uid, category string, n int) []domain.Quote {
	b.Helper()

	ctx := apptest.As(uid)
	quotes := make([]domain.Quote, 0, n)

	for i := range n {
		id, err := e.Quotes.Create(ctx, domain.Quote{
			Text:     fmt.Sprintf("quote %d", i),
			Author:   "Bench",
			Category: category,
		})
		if err != nil {
			b.Fatal(err)
		}

		q, err := e.Quotes.Get(ctx, id)
		if err != nil {
			b.Fatal(err)
		}

		if i%2 == 0 {
			if _, err := e.Likes.Toggle(ctx, q); err != nil {
				b.Fatal(err)
			}
		}

		quotes = append(quotes, q)
	}

	return quotes
}

// BenchmarkLivenessHandler measures the liveness probe through the router.
func BenchmarkLivenessHandler(b *testing.B) {
	router, _ := setupRouter(b)
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkReadinessHandler_TreeCheck measures readiness with the tree
// health check registered.
func BenchmarkReadinessHandler_TreeCheck(b *testing.B) {
	router, _ := setupRouter(b)
	req := httptest.NewRequest(http.MethodGet, "/-/ready", http.NoBody)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkListCategory measures GET /quotes on a category of 100 quotes,
// stamped with the caller's likes.
func BenchmarkListCategory(b *testing.B) {
	router, env := setupRouter(b)
	seedQuotes(b, env.Engine, "bench", "Wisdom", 100)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes?category=Wisdom", http.NoBody)
	req.Header.Set("X-User-ID", "bench")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			b.Fatalf("status %d", w.Code)
		}
	}
}

// BenchmarkCreateQuote measures POST /quotes including the mirror write
// and the activity entry.
func BenchmarkCreateQuote(b *testing.B) {
	router, _ := setupRouter(b)

	body, _ := json.Marshal(dto.QuoteRequest{Text: "Stay hungry.", Author: "Jobs", Category: "Motivation"})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "bench")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

// BenchmarkToggleLike measures the like toggle against a live like view.
func BenchmarkToggleLike(b *testing.B) {
	_, env := setupRouter(b)
	quotes := seedQuotes(b, env.Engine, "bench", "Love", 10)
	ctx := apptest.As("bench")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := env.Engine.Likes.Toggle(ctx, quotes[i%len(quotes)]); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAggregate measures per-category counting over a large like-set.
func BenchmarkAggregate(b *testing.B) {
	categories := []string{"Wisdom", "Art", "Success", "Friendship", "Positive", "Life", "Motivation", "Love"}
	likes := make([]domain.Quote, 0, 1000)

	for i := range 1000 {
		likes = append(likes, domain.Quote{ID: fmt.Sprintf("q%d", i), Category: categories[i%len(categories)]})
	}

	var agg app.CategoryAggregator

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = agg.Aggregate(likes)
	}
}

// BenchmarkHealthCheck_Tree measures the tree health check on its own.
func BenchmarkHealthCheck_Tree(b *testing.B) {
	rt, _ := apptest.NewTree(b)

	var checker ports.HealthChecker = rt

	ctx := apptest.As("bench")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = checker.Check(ctx)
	}
}
