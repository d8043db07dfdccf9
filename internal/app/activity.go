package app

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// ActivityCursor marks the last entry of a page. Pages continue with
// strictly older entries.
type ActivityCursor struct {
	Timestamp int64
	ID        string
}

// ActivityLoggerConfig contains dependencies for the activity logger.
type ActivityLoggerConfig struct {
	Tree        ports.RemoteTree
	Session     ports.SessionContext
	RecentLimit int
	Logger      *slog.Logger
	Now         func() time.Time
}

// ActivityLogger appends to and reads the signed-in user's activity log.
// Entries are never updated; the whole log is cleared in one step.
type ActivityLogger struct {
	tree        ports.RemoteTree
	session     ports.SessionContext
	recentLimit int
	logger      *slog.Logger
	now         func() time.Time
}

// NewActivityLogger creates an activity logger.
// Panics if Tree is nil. RecentLimit defaults to 5.
func NewActivityLogger(cfg ActivityLoggerConfig) *ActivityLogger {
	if cfg.Tree == nil {
		panic("ActivityLogger: Tree is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := cfg.RecentLimit
	if limit <= 0 {
		limit = 5
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &ActivityLogger{
		tree:        cfg.Tree,
		session:     sessionOrAnonymous(cfg.Session),
		recentLimit: limit,
		logger:      logger.With(slog.String("component", "app.ActivityLogger")),
		now:         now,
	}
}

// Record appends an entry under a fresh push key. A zero timestamp means now.
func (a *ActivityLogger) Record(ctx context.Context, action, description, quoteID string, timestamp int64) (domain.ActivityLogEntry, error) {
	uid, err := requireUser(ctx, a.session, "record activity")
	if err != nil {
		return domain.ActivityLogEntry{}, err
	}

	if action == "" {
		return domain.ActivityLogEntry{}, domain.NewValidationError("action", "must not be empty")
	}

	if timestamp == 0 {
		timestamp = domain.Millis(a.now())
	}

	id, err := a.tree.PushKey(ctx, domain.ActivityLogPath(uid))
	if err != nil {
		return domain.ActivityLogEntry{}, fmt.Errorf("allocating activity key: %w", err)
	}

	entry := domain.ActivityLogEntry{
		ID:          id,
		Action:      action,
		Description: description,
		Timestamp:   timestamp,
		QuoteID:     quoteID,
	}

	if err := a.tree.Set(ctx, domain.JoinPath(domain.ActivityLogPath(uid), id), entry); err != nil {
		return domain.ActivityLogEntry{}, fmt.Errorf("writing activity entry: %w", err)
	}

	return entry, nil
}

// recordQuiet records an entry and logs instead of returning failures. The
// log is secondary to the quote write that triggered it.
func (a *ActivityLogger) recordQuiet(ctx context.Context, action, description, quoteID string) {
	if a == nil {
		return
	}

	if _, err := a.Record(ctx, action, description, quoteID, 0); err != nil {
		loggerFor(ctx, a.logger).WarnContext(ctx, "recording activity failed",
			slog.String("action", action),
			slog.String("quote_id", quoteID),
			slog.Any("error", err),
		)
	}
}

// Recent returns at most limit entries, newest first. A limit of zero or
// less uses the configured window.
func (a *ActivityLogger) Recent(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error) {
	uid, err := requireUser(ctx, a.session, "read activity")
	if err != nil {
		return nil, err
	}

	snap, err := a.tree.GetOnce(ctx, a.recentQuery(uid, limit))
	if err != nil {
		return nil, fmt.Errorf("reading activity: %w", err)
	}

	return newestFirst(snap)
}

// Watch streams the recent window, newest first, after every change to the
// log. Breaking out of the range ends the subscription.
func (a *ActivityLogger) Watch(ctx context.Context, limit int) (iter.Seq2[[]domain.ActivityLogEntry, error], error) {
	uid, err := requireUser(ctx, a.session, "watch activity")
	if err != nil {
		return nil, err
	}

	sub, err := a.tree.Subscribe(ctx, a.recentQuery(uid, limit))
	if err != nil {
		return nil, fmt.Errorf("subscribing to activity: %w", err)
	}

	return func(yield func([]domain.ActivityLogEntry, error) bool) {
		for snap, err := range ports.Snapshots(sub) {
			if err != nil {
				if !yield(nil, err) {
					return
				}

				continue
			}

			entries, err := newestFirst(snap)
			if !yield(entries, err) {
				return
			}
		}
	}, nil
}

// Page lists the full log newest first, starting after cursor. It returns up
// to limit+1 entries so callers can tell whether another page exists.
func (a *ActivityLogger) Page(ctx context.Context, after *ActivityCursor, limit int) ([]domain.ActivityLogEntry, error) {
	uid, err := requireUser(ctx, a.session, "read activity")
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		return nil, domain.NewValidationError("limit", "must be positive")
	}

	snap, err := a.tree.GetOnce(ctx, ports.At(domain.ActivityLogPath(uid)).OrderBy("timestamp"))
	if err != nil {
		return nil, fmt.Errorf("reading activity: %w", err)
	}

	all, err := newestFirst(snap)
	if err != nil {
		return nil, err
	}

	start := 0
	if after != nil {
		start = len(all)
		for i, e := range all {
			if olderThan(e, *after) {
				start = i
				break
			}
		}
	}

	end := min(start+limit+1, len(all))

	return all[start:end], nil
}

// Clear removes the whole log.
func (a *ActivityLogger) Clear(ctx context.Context) error {
	uid, err := requireUser(ctx, a.session, "clear activity")
	if err != nil {
		return err
	}

	if err := a.tree.Remove(ctx, domain.ActivityLogPath(uid)); err != nil {
		return fmt.Errorf("clearing activity: %w", err)
	}

	return nil
}

func (a *ActivityLogger) recentQuery(uid string, limit int) ports.Query {
	if limit <= 0 {
		limit = a.recentLimit
	}

	return ports.At(domain.ActivityLogPath(uid)).OrderBy("timestamp").Last(limit)
}

// newestFirst decodes an ascending timestamp-ordered snapshot and reverses it.
func newestFirst(snap ports.Snapshot) ([]domain.ActivityLogEntry, error) {
	entries, err := ports.DecodeChildren[domain.ActivityLogEntry](snap)
	if err != nil {
		return nil, err
	}

	for i, c := range snap.Children {
		if entries[i].ID == "" {
			entries[i].ID = c.Key
		}
	}

	slices.Reverse(entries)

	return entries, nil
}

// olderThan orders entries newest first: by timestamp, then by key.
func olderThan(e domain.ActivityLogEntry, c ActivityCursor) bool {
	if e.Timestamp != c.Timestamp {
		return e.Timestamp < c.Timestamp
	}

	return e.ID < c.ID
}
