//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	httpadapter "github.com/jsamuelsen/quotehub-sync/internal/adapters/http"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotehub-sync/internal/app/apptest"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/config"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

var errNoQuote = errors.New("no quote created in this scenario")

// scenario is the per-scenario state: a fresh server over the in-memory
// tree, the acting user, and the last response.
type scenario struct {
	t            *testing.T
	server       *httptest.Server
	client       *http.Client
	user         string
	lastID       string
	response     *http.Response
	responseBody []byte
}

func newScenario(t *testing.T) *scenario {
	return &scenario{
		t: t,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// reset clears scenario state and stops the previous scenario's server.
func (s *scenario) reset() {
	if s.server != nil {
		s.server.Close()
	}

	s.server = nil
	s.user = ""
	s.lastID = ""
	s.response = nil
	s.responseBody = nil
}

// start serves a fresh engine over the in-memory tree with seeding on.
func (s *scenario) start() {
	gin.SetMode(gin.TestMode)

	env := apptest.New(s.t, apptest.Options{Seeding: true})
	e := env.Engine

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:     apptest.DiscardLogger(),
		AppConfig:  &config.AppConfig{Name: "quotehub-sync", Environment: "test", Version: "test"},
		AuthConfig: &config.AuthConfig{SubjectHeader: "X-User-ID", EmailHeader: "X-User-Email"},
		HealthHandler: handlers.NewHealthHandler(ports.NewHealthRegistry(),
			handlers.NewBuildInfo("test", "none", "").WithBackend("memory", "local")),
		QuoteHandler: handlers.NewQuoteHandler(e.Quotes, e.Likes),
		MeHandler: handlers.NewMeHandler(handlers.MeHandlerConfig{
			Repo:     e.Quotes,
			Likes:    e.Likes,
			Activity: e.Activity,
			Profile:  e.Profile,
		}),
		SessionHandler: handlers.NewSessionHandler(e.Profile, env.Sessions),
		StaticHandler:  handlers.NewStaticHandler(e.Catalog),
		Timeout:        5 * time.Second,
	})

	s.server = httptest.NewServer(engine)
}

func InitializeScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		s := newScenario(t)

		ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
			s.reset()
			s.start()

			return ctx, nil
		})

		ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
			s.reset()
			return ctx, nil
		})

		ctx.Step(`^the service is running$`, s.theServiceIsRunning)
		ctx.Step(`^I am signed in as "([^"]*)"$`, s.iAmSignedInAs)
		ctx.Step(`^I am anonymous$`, s.iAmAnonymous)
		ctx.Step(`^I request (GET|POST|PUT|DELETE) "([^"]*)"$`, s.iRequest)
		ctx.Step(`^I create a quote "([^"]*)" by "([^"]*)" in "([^"]*)"$`, s.iCreateAQuote)
		ctx.Step(`^I update the last quote to "([^"]*)" by "([^"]*)" in "([^"]*)"$`, s.iUpdateTheLastQuote)
		ctx.Step(`^I toggle the like on the last quote$`, s.iToggleTheLikeOnTheLastQuote)
		ctx.Step(`^I delete the last quote$`, s.iDeleteTheLastQuote)
		ctx.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
		ctx.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)
		ctx.Step(`^the error code should be "([^"]*)"$`, s.theErrorCodeShouldBe)
		ctx.Step(`^the quote should be (liked|unliked)$`, s.theQuoteShouldBe)
		ctx.Step(`^the category "([^"]*)" should list (\d+) quotes?$`, s.theCategoryShouldList)
		ctx.Step(`^my likes should total (\d+)$`, s.myLikesShouldTotal)
		ctx.Step(`^my latest activity should be "([^"]*)"$`, s.myLatestActivityShouldBe)
	}
}

func (s *scenario) theServiceIsRunning() error {
	if err := s.send(http.MethodGet, "/-/live", nil); err != nil {
		return fmt.Errorf("service is not running: %w", err)
	}

	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status %d", s.response.StatusCode)
	}

	return nil
}

func (s *scenario) iAmSignedInAs(uid string) error {
	s.user = uid

	if err := s.send(http.MethodPost, "/api/v1/session", nil); err != nil {
		return err
	}

	return s.theResponseStatusShouldBe(http.StatusOK)
}

func (s *scenario) iAmAnonymous() error {
	s.user = ""
	return nil
}

func (s *scenario) iRequest(method, path string) error {
	return s.send(method, path, nil)
}

func (s *scenario) iCreateAQuote(text, author, category string) error {
	err := s.send(http.MethodPost, "/api/v1/quotes", dto.QuoteRequest{Text: text, Author: author, Category: category})
	if err != nil {
		return err
	}

	if s.response.StatusCode != http.StatusCreated {
		return nil
	}

	var created dto.CreatedResponse
	if err := json.Unmarshal(s.responseBody, &created); err != nil {
		return fmt.Errorf("decoding created response: %w", err)
	}

	s.lastID = created.ID

	return nil
}

func (s *scenario) iUpdateTheLastQuote(text, author, category string) error {
	if s.lastID == "" {
		return errNoQuote
	}

	return s.send(http.MethodPut, "/api/v1/quotes/"+s.lastID,
		dto.QuoteRequest{Text: text, Author: author, Category: category})
}

func (s *scenario) iToggleTheLikeOnTheLastQuote() error {
	if s.lastID == "" {
		return errNoQuote
	}

	return s.send(http.MethodPost, "/api/v1/quotes/"+s.lastID+"/like", nil)
}

func (s *scenario) iDeleteTheLastQuote() error {
	if s.lastID == "" {
		return errNoQuote
	}

	return s.send(http.MethodDelete, "/api/v1/quotes/"+s.lastID, nil)
}

func (s *scenario) theResponseStatusShouldBe(expectedCode int) error {
	if s.response == nil {
		return errors.New("no response yet")
	}

	if s.response.StatusCode != expectedCode {
		return fmt.Errorf("status %d, want %d: %s", s.response.StatusCode, expectedCode, s.responseBody)
	}

	return nil
}

func (s *scenario) theResponseShouldContain(text string) error {
	if s.responseBody == nil {
		return errors.New("empty response body")
	}

	if body := string(s.responseBody); !strings.Contains(body, text) {
		return fmt.Errorf("body lacks %q: %s", text, body)
	}

	return nil
}

func (s *scenario) theErrorCodeShouldBe(code string) error {
	var resp dto.ErrorResponse
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return fmt.Errorf("decoding error response: %w", err)
	}

	if resp.Error.Code != code {
		return fmt.Errorf("expected error code %q, got %q", code, resp.Error.Code)
	}

	return nil
}

func (s *scenario) theQuoteShouldBe(state string) error {
	var quote dto.QuoteResponse
	if err := json.Unmarshal(s.responseBody, &quote); err != nil {
		return fmt.Errorf("decoding quote: %w", err)
	}

	if want := state == "liked"; quote.Liked != want {
		return fmt.Errorf("expected quote %s, got liked=%t", state, quote.Liked)
	}

	return nil
}

func (s *scenario) theCategoryShouldList(category string, n int) error {
	if err := s.send(http.MethodGet, "/api/v1/quotes?category="+category, nil); err != nil {
		return err
	}

	if err := s.theResponseStatusShouldBe(http.StatusOK); err != nil {
		return err
	}

	var list dto.QuoteListResponse
	if err := json.Unmarshal(s.responseBody, &list); err != nil {
		return fmt.Errorf("decoding quote list: %w", err)
	}

	if len(list.Quotes) != n {
		return fmt.Errorf("expected %d quotes in %s, got %d", n, category, len(list.Quotes))
	}

	return nil
}

func (s *scenario) myLikesShouldTotal(n int) error {
	if err := s.send(http.MethodGet, "/api/v1/me/likes", nil); err != nil {
		return err
	}

	if err := s.theResponseStatusShouldBe(http.StatusOK); err != nil {
		return err
	}

	var likes dto.LikesResponse
	if err := json.Unmarshal(s.responseBody, &likes); err != nil {
		return fmt.Errorf("decoding likes: %w", err)
	}

	if likes.Total != n {
		return fmt.Errorf("expected %d likes, got %d", n, likes.Total)
	}

	return nil
}

func (s *scenario) myLatestActivityShouldBe(action string) error {
	if err := s.send(http.MethodGet, "/api/v1/me/activity?limit=1", nil); err != nil {
		return err
	}

	if err := s.theResponseStatusShouldBe(http.StatusOK); err != nil {
		return err
	}

	var entries []dto.ActivityEntryResponse
	if err := json.Unmarshal(s.responseBody, &entries); err != nil {
		return fmt.Errorf("decoding activity: %w", err)
	}

	if len(entries) == 0 {
		return errors.New("no activity recorded")
	}

	if entries[0].Action != action {
		return fmt.Errorf("expected latest activity %q, got %q", action, entries[0].Action)
	}

	return nil
}

// send issues a request as the current user and buffers the response body.
func (s *scenario) send(method, path string, body any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}

		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.server.URL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if s.user != "" {
		req.Header.Set("X-User-ID", s.user)
		req.Header.Set("X-User-Email", s.user+"@example.com")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	s.response = resp

	s.responseBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	return nil
}

// TestFeatures runs test/features; GODOG_TAGS narrows the scenarios.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}
