package app

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// SeedOutcome describes what a seeding call did.
type SeedOutcome string

// Seed outcomes.
const (
	// SeedWritten means this process claimed the category and wrote at
	// least one entry.
	SeedWritten SeedOutcome = "written"

	// SeedAlreadyAttempted means this process tried the category before.
	SeedAlreadyAttempted SeedOutcome = "already_attempted"

	// SeedClaimedElsewhere means another process holds the category marker.
	SeedClaimedElsewhere SeedOutcome = "claimed_elsewhere"

	// SeedUnknownCategory means there is no curated content for the category.
	SeedUnknownCategory SeedOutcome = "unknown_category"

	// SeedAllFailed means the marker was claimed but every write failed.
	// The marker is released so another process can try.
	SeedAllFailed SeedOutcome = "all_failed"
)

// SeedResult reports one seeding call.
type SeedResult struct {
	Category string
	Outcome  SeedOutcome
	IDs      []string
	Failed   int
}

// seedMarker is stored at meta/seeded/{category}.
type seedMarker struct {
	SeededBy string `json:"seededBy,omitempty"`
	SeededAt int64  `json:"seededAt"`
}

type seedInput struct {
	category string
	uid      string
}

type seedPerformed struct {
	outcome SeedOutcome
	results []PartialResult[string]
}

// SeederConfig contains dependencies for the default quote seeder.
type SeederConfig struct {
	Tree        ports.RemoteTree
	Executor    *Executor
	Table       map[string][]SeedQuote
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Seeder writes curated quotes into a category the first time it is found
// empty. Each category is attempted at most once per process, and across
// processes only the one that claims meta/seeded/{category} writes.
type Seeder struct {
	tree        ports.RemoteTree
	exec        *Executor
	table       map[string][]SeedQuote
	concurrency int
	logger      *slog.Logger
	now         func() time.Time

	attempted sync.Map
}

// NewSeeder creates a seeder.
// Panics if Tree is nil. Table defaults to DefaultSeeds.
func NewSeeder(cfg SeederConfig) *Seeder {
	if cfg.Tree == nil {
		panic("Seeder: Tree is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exec := cfg.Executor
	if exec == nil {
		exec = NewExecutor(logger)
	}

	table := cfg.Table
	if table == nil {
		table = DefaultSeeds
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Seeder{
		tree:        cfg.Tree,
		exec:        exec,
		table:       table,
		concurrency: cfg.Concurrency,
		logger:      logger.With(slog.String("component", "app.Seeder")),
		now:         now,
	}
}

// Seed populates category on behalf of uid, which may be empty for an
// anonymous reader. Individual write failures are logged and counted, never
// returned. An error means the marker could not be claimed; the category is
// then eligible for another attempt.
func (s *Seeder) Seed(ctx context.Context, category, uid string) (SeedResult, error) {
	if _, loaded := s.attempted.LoadOrStore(category, struct{}{}); loaded {
		return SeedResult{Category: category, Outcome: SeedAlreadyAttempted}, nil
	}

	op := Operation[seedInput, seedPerformed, SeedResult, SeedResult]{
		Name:     "seed_category",
		Validate: s.validate,
		Perform:  s.perform,
		Verify:   s.verify,
		Respond: func(_ context.Context, _ seedInput, r SeedResult) (SeedResult, error) {
			return r, nil
		},
	}

	res, err := Execute(ctx, s.exec, op, seedInput{category: category, uid: uid})
	if err != nil {
		s.attempted.Delete(category)
		return SeedResult{Category: category}, fmt.Errorf("seeding %s: %w", category, err)
	}

	return res, nil
}

// Attempted reports whether this process already tried category.
func (s *Seeder) Attempted(category string) bool {
	_, ok := s.attempted.Load(category)
	return ok
}

// Categories returns the categories with curated content, sorted.
func (s *Seeder) Categories() []string {
	return slices.Sorted(maps.Keys(s.table))
}

func (s *Seeder) validate(_ context.Context, in seedInput) error {
	if in.category == "" {
		return domain.NewValidationError("category", "must not be empty")
	}

	return nil
}

func (s *Seeder) perform(ctx context.Context, in seedInput) (seedPerformed, error) {
	entries, ok := s.table[in.category]
	if !ok {
		return seedPerformed{outcome: SeedUnknownCategory}, nil
	}

	claimed, err := s.tree.SetIfAbsent(ctx, domain.SeededMarkerPath(in.category), seedMarker{
		SeededBy: in.uid,
		SeededAt: domain.Millis(s.now()),
	})
	if err != nil {
		return seedPerformed{}, fmt.Errorf("claiming seed marker: %w", err)
	}

	if !claimed {
		return seedPerformed{outcome: SeedClaimedElsewhere}, nil
	}

	writes := make([]func(context.Context) (string, error), len(entries))
	for i, e := range entries {
		writes[i] = func(ctx context.Context) (string, error) {
			return s.write(ctx, in, e)
		}
	}

	return seedPerformed{
		outcome: SeedWritten,
		results: ParallelPartialLimit(ctx, s.concurrency, writes...),
	}, nil
}

func (s *Seeder) write(ctx context.Context, in seedInput, e SeedQuote) (string, error) {
	id, err := s.tree.PushKey(ctx, domain.QuotesRoot)
	if err != nil {
		return "", err
	}

	q := domain.Quote{
		ID:        id,
		Text:      e.Text,
		Author:    e.Author,
		Category:  in.category,
		UserID:    in.uid,
		Timestamp: domain.Millis(s.now()),
	}

	if err := s.tree.Set(ctx, domain.QuotePath(id), q.Canonical()); err != nil {
		return id, err
	}

	return id, nil
}

func (s *Seeder) verify(ctx context.Context, in seedInput, p seedPerformed) (SeedResult, error) {
	res := SeedResult{Category: in.category, Outcome: p.outcome}

	for _, r := range p.results {
		if r.Err != nil {
			res.Failed++
			s.logger.WarnContext(ctx, "seed write failed",
				slog.String("category", in.category),
				slog.Any("error", r.Err),
			)

			continue
		}

		res.IDs = append(res.IDs, r.Value)
	}

	if p.outcome == SeedWritten && len(res.IDs) == 0 && res.Failed > 0 {
		res.Outcome = SeedAllFailed

		if err := s.tree.Remove(context.WithoutCancel(ctx), domain.SeededMarkerPath(in.category)); err != nil {
			s.logger.ErrorContext(ctx, "releasing seed marker failed",
				slog.String("category", in.category),
				slog.Any("error", err),
			)
		}
	}

	s.logger.InfoContext(ctx, "seeding finished",
		slog.String("category", in.category),
		slog.String("outcome", string(res.Outcome)),
		slog.Int("written", len(res.IDs)),
		slog.Int("failed", res.Failed),
	)

	return res, nil
}
