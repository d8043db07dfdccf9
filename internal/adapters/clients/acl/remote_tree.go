package acl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/logging"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

var activeSubscriptions = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "quotehub",
	Subsystem: "tree",
	Name:      "subscriptions_active",
	Help:      "Number of open remote tree subscriptions.",
}, []string{"backend"})

// RemoteTreeConfig contains configuration for the remote tree adapter.
type RemoteTreeConfig struct {
	// Client is the instrumented tree client.
	Client *clients.Client

	// Logger is the structured logger.
	Logger *slog.Logger
}

// RemoteTree implements ports.RemoteTree over a tree client.
type RemoteTree struct {
	client  *clients.Client
	backend string
	logger  *slog.Logger
	gauge   prometheus.Gauge
}

var _ ports.RemoteTree = (*RemoteTree)(nil)

// NewRemoteTree creates the adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewRemoteTree(cfg RemoteTreeConfig) *RemoteTree {
	if cfg.Client == nil {
		panic("RemoteTree: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Client.Backend()

	return &RemoteTree{
		client:  cfg.Client,
		backend: backend,
		logger:  logger.With(slog.String("component", "acl.RemoteTree")),
		gauge:   activeSubscriptions.WithLabelValues(backend),
	}
}

// Get returns the record at path and its direct children.
func (t *RemoteTree) Get(ctx context.Context, path string) (ports.Snapshot, error) {
	p, err := cleanPath(path)
	if err != nil {
		return ports.Snapshot{}, err
	}

	return t.read(ctx, ports.At(p))
}

// GetOnce evaluates q once.
func (t *RemoteTree) GetOnce(ctx context.Context, q ports.Query) (ports.Snapshot, error) {
	p, err := cleanPath(q.Path)
	if err != nil {
		return ports.Snapshot{}, err
	}

	q.Path = p

	return t.read(ctx, q)
}

// Set writes value at path and announces the change.
func (t *RemoteTree) Set(ctx context.Context, path string, value any) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}

	raw, err := EncodeRecord(value)
	if err != nil {
		return err
	}

	if err := t.client.Put(ctx, p, raw); err != nil {
		return MapTreeError(err, t.backend, "set", p)
	}

	t.announce(ctx, p)

	return nil
}

// SetIfAbsent writes value only when path holds no record.
func (t *RemoteTree) SetIfAbsent(ctx context.Context, path string, value any) (bool, error) {
	p, err := cleanPath(path)
	if err != nil {
		return false, err
	}

	raw, err := EncodeRecord(value)
	if err != nil {
		return false, err
	}

	written, err := t.client.PutIfAbsent(ctx, p, raw)
	if err != nil {
		return false, MapTreeError(err, t.backend, "set if absent", p)
	}

	if written {
		t.announce(ctx, p)
	}

	return written, nil
}

// Remove deletes path and its subtree.
func (t *RemoteTree) Remove(ctx context.Context, path string) error {
	p, err := cleanPath(path)
	if err != nil {
		return err
	}

	if err := t.client.Delete(ctx, p); err != nil {
		return MapTreeError(err, t.backend, "remove", p)
	}

	t.announce(ctx, p)

	return nil
}

// PushKey returns a time-ordered UUIDv7 key. Keys are generated locally, so
// the parent path is only validated.
func (t *RemoteTree) PushKey(_ context.Context, parentPath string) (string, error) {
	if _, err := cleanPath(parentPath); err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating push key: %w", err)
	}

	return id.String(), nil
}

// Subscribe starts a live query. The first delivery is the current result.
func (t *RemoteTree) Subscribe(ctx context.Context, q ports.Query) (ports.Subscription, error) {
	p, err := cleanPath(q.Path)
	if err != nil {
		return nil, err
	}

	q.Path = p

	sub, err := newSubscription(ctx, t, q)
	if err != nil {
		return nil, MapTreeError(err, t.backend, "subscribe", p)
	}

	return sub, nil
}

// Name returns the health check name.
func (t *RemoteTree) Name() string {
	return "tree"
}

// Check pings the backend store. The change bus has its own checker.
func (t *RemoteTree) Check(ctx context.Context) error {
	if err := t.client.Ping(ctx); err != nil {
		return MapTreeError(err, t.backend, "ping", "/")
	}

	return nil
}

// BusChecker reports change bus health. A bus outage stalls live
// subscriptions while reads and writes keep working, so it only degrades
// readiness.
type BusChecker struct {
	client  *clients.Client
	backend string
}

var _ ports.OptionalChecker = (*BusChecker)(nil)

// NewBusChecker creates the checker for client's bus.
func NewBusChecker(client *clients.Client) *BusChecker {
	return &BusChecker{client: client, backend: client.Backend()}
}

// Name returns the health check name.
func (b *BusChecker) Name() string {
	return "bus"
}

// Optional marks the bus as non-critical.
func (b *BusChecker) Optional() bool {
	return true
}

// Check pings the change bus.
func (b *BusChecker) Check(ctx context.Context) error {
	if err := b.client.PingBus(ctx); err != nil {
		return MapTreeError(err, b.backend, "ping bus", "/")
	}

	return nil
}

// read evaluates q against the backend.
func (t *RemoteTree) read(ctx context.Context, q ports.Query) (ports.Snapshot, error) {
	value, err := t.client.Get(ctx, q.Path)
	if err != nil {
		return ports.Snapshot{}, MapTreeError(err, t.backend, "get", q.Path)
	}

	entries, err := t.client.Children(ctx, q.Path)
	if err != nil {
		return ports.Snapshot{}, MapTreeError(err, t.backend, "list", q.Path)
	}

	entries, err = tree.Apply(entries, q)
	if err != nil {
		return ports.Snapshot{}, MapTreeError(err, t.backend, "query", q.String())
	}

	return toSnapshot(q.Path, value, entries), nil
}

// announce publishes a change notice. The write itself already succeeded,
// so a failed notice is logged rather than returned; subscribers catch up
// on the next notice for the same subtree.
func (t *RemoteTree) announce(ctx context.Context, path string) {
	err := t.client.Publish(context.WithoutCancel(ctx), path)
	if err == nil {
		logging.FromContext(ctx).Log(ctx, logging.LevelTrace, "change announced", slog.String("path", path))
		return
	}

	if errors.Is(err, context.Canceled) {
		return
	}

	t.logger.ErrorContext(ctx, "publishing change notice failed",
		slog.String("path", path),
		slog.Any("error", err),
	)
}
