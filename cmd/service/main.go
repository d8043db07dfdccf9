// Package main runs the quote sync service: it loads the profile, opens the
// configured tree backend and change bus, and serves the HTTP API until
// SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/session"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/memtree"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/natsbus"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/redistree"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree/sqlitetree"
	"github.com/jsamuelsen/quotehub-sync/internal/app"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/config"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service and blocks until ctx is cancelled. Resources are
// released in reverse order of acquisition.
func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("backend", cfg.Tree.Backend),
		slog.String("bus", cfg.Tree.Bus),
	)

	var closers []func() error

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i](); cerr != nil {
				logger.Error("shutdown step failed", slog.Any("error", cerr))
			}
		}
	}()

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	closers = append(closers, func() error { return tel.Shutdown(context.WithoutCancel(ctx)) })

	store, bus, closeExtra, err := openTree(ctx, &cfg.Tree)
	if err != nil {
		return fmt.Errorf("opening tree: %w", err)
	}

	closers = append(closers, func() error { closeExtra(); return nil })

	treeClient, err := clients.New(store, bus, &clients.Config{
		Backend: cfg.Tree.Backend,
		Timeout: cfg.Client.Timeout,
		Retry:   cfg.Client.Retry,
		Circuit: cfg.Client.CircuitBreaker,
		Logger:  logger,
	})
	if err != nil {
		return errors.Join(fmt.Errorf("creating tree client: %w", err), bus.Close(), store.Close())
	}

	closers = append(closers, treeClient.Close)

	remoteTree := acl.NewRemoteTree(acl.RemoteTreeConfig{Client: treeClient, Logger: logger})

	// The store is required for readiness; the bus only degrades it.
	health := ports.NewHealthRegistry(ports.WithCheckTimeout(cfg.Client.Timeout))
	for _, c := range []ports.HealthChecker{remoteTree, acl.NewBusChecker(treeClient)} {
		if err := health.Register(c); err != nil {
			return fmt.Errorf("registering health check: %w", err)
		}
	}

	sessions := session.NewManager(logger)

	var verifier *session.Verifier
	if cfg.Auth.JWT.Enabled {
		verifier = session.NewVerifier(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer)
	}

	engine := app.NewEngine(app.EngineConfig{
		Tree:                remoteTree,
		Session:             sessions,
		Seeding:             cfg.Seeding.Enabled,
		SeedConcurrency:     cfg.Seeding.Concurrency,
		LikesViewBuffer:     cfg.Likes.ViewBuffer,
		LikesReadyTimeout:   cfg.Likes.ReadyTimeout,
		ActivityRecentLimit: cfg.Activity.RecentLimit,
		Logger:              logger,
	})

	closers = append(closers, func() error { engine.Close(); return nil })

	server := http.New(&cfg.Server, logger)

	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:     logger,
		AppConfig:  &cfg.App,
		AuthConfig: &cfg.Auth,
		Verifier:   verifier,
		HealthHandler: handlers.NewHealthHandler(health,
			handlers.NewBuildInfo(Version, Commit, BuildTime).WithBackend(cfg.Tree.Backend, cfg.Tree.Bus)),
		QuoteHandler: handlers.NewQuoteHandler(engine.Quotes, engine.Likes),
		MeHandler: handlers.NewMeHandler(handlers.MeHandlerConfig{
			Repo:     engine.Quotes,
			Likes:    engine.Likes,
			Activity: engine.Activity,
			Profile:  engine.Profile,
			PageSize: cfg.Activity.PageSize,
		}),
		SessionHandler: handlers.NewSessionHandler(engine.Profile, sessions),
		StaticHandler:  handlers.NewStaticHandler(engine.Catalog),
		Timeout:        cfg.Server.RequestTimeout,
		Tracing:        cfg.Telemetry.Enabled,
	})

	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}

// loadConfig reads the profile named by APP_ENVIRONMENT, local by default,
// and validates it.
func loadConfig() (*config.Config, error) {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	f := cfg.Log.File

	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    f.Enabled,
			Level:      f.Level,
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		},
	})
}

// openTree opens the configured store and bus. closeExtra releases a Redis
// connection held only by the bus; the client closes everything else.
func openTree(ctx context.Context, cfg *config.TreeConfig) (tree.Store, tree.Bus, func(), error) {
	var rdb *redis.Client

	redisClient := func() (*redis.Client, error) {
		if rdb != nil {
			return rdb, nil
		}

		c, err := redistree.NewClient(ctx, redistree.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return nil, err
		}

		rdb = c

		return rdb, nil
	}

	var (
		store tree.Store
		err   error
	)

	switch cfg.Backend {
	case "sqlite":
		store, err = sqlitetree.Open(ctx, cfg.SQLite.Path)
	case "redis":
		var c *redis.Client
		if c, err = redisClient(); err == nil {
			store = redistree.NewStore(c, cfg.Redis.Prefix)
		}
	default:
		store = memtree.New()
	}

	if err != nil {
		return nil, nil, nil, fmt.Errorf("backend %s: %w", cfg.Backend, err)
	}

	var bus tree.Bus

	switch cfg.Bus {
	case "redis":
		var c *redis.Client
		if c, err = redisClient(); err == nil {
			bus = redistree.NewBus(c, cfg.Redis.Channel)
		}
	case "nats":
		bus, err = natsbus.Connect(cfg.NATS.URL, cfg.NATS.Subject, cfg.NATS.Timeout)
	default:
		bus = tree.NewLocalBus()
	}

	if err != nil {
		_ = store.Close()
		return nil, nil, nil, fmt.Errorf("bus %s: %w", cfg.Bus, err)
	}

	closeExtra := func() {}
	if rdb != nil && cfg.Backend != "redis" {
		closeExtra = func() { _ = rdb.Close() }
	}

	return store, bus, closeExtra, nil
}
