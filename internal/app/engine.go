package app

import (
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// EngineConfig contains what the engine's components share.
type EngineConfig struct {
	Tree    ports.RemoteTree
	Session ports.SessionContext

	// Seeding enables default quotes for empty categories.
	Seeding         bool
	SeedConcurrency int

	LikesViewBuffer   int
	LikesReadyTimeout time.Duration

	ActivityRecentLimit int

	Logger *slog.Logger
	Now    func() time.Time
}

// Engine bundles the components serving one process. They share one
// executor, one activity logger, and one like state manager.
type Engine struct {
	Activity *ActivityLogger
	Likes    *LikeStateManager
	Seeder   *Seeder
	Quotes   *QuoteRepository
	Profile  *ProfileService
	Catalog  *StaticCatalog
}

// NewEngine wires the components. Seeder is nil when seeding is disabled.
// Panics if Tree is nil.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Tree == nil {
		panic("Engine: Tree is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exec := NewExecutor(logger)

	activity := NewActivityLogger(ActivityLoggerConfig{
		Tree:        cfg.Tree,
		Session:     cfg.Session,
		RecentLimit: cfg.ActivityRecentLimit,
		Logger:      logger,
		Now:         cfg.Now,
	})

	likes := NewLikeStateManager(LikeStateManagerConfig{
		Tree:         cfg.Tree,
		Session:      cfg.Session,
		Activity:     activity,
		ViewBuffer:   cfg.LikesViewBuffer,
		ReadyTimeout: cfg.LikesReadyTimeout,
		Logger:       logger,
		Now:          cfg.Now,
	})

	var seeder *Seeder
	if cfg.Seeding {
		seeder = NewSeeder(SeederConfig{
			Tree:        cfg.Tree,
			Executor:    exec,
			Concurrency: cfg.SeedConcurrency,
			Logger:      logger,
			Now:         cfg.Now,
		})
	}

	return &Engine{
		Activity: activity,
		Likes:    likes,
		Seeder:   seeder,
		Quotes: NewQuoteRepository(QuoteRepositoryConfig{
			Tree:     cfg.Tree,
			Session:  cfg.Session,
			Seeder:   seeder,
			Likes:    likes,
			Activity: activity,
			Executor: exec,
			Logger:   logger,
			Now:      cfg.Now,
		}),
		Profile: NewProfileService(ProfileServiceConfig{
			Tree:     cfg.Tree,
			Session:  cfg.Session,
			Likes:    likes,
			Activity: activity,
			Logger:   logger,
			Now:      cfg.Now,
		}),
		Catalog: NewStaticCatalog(likes),
	}
}

// Close stops every live like view.
func (e *Engine) Close() {
	e.Likes.Close()
}
