package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	appctx "github.com/jsamuelsen/quotehub-sync/internal/app/context"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// QuoteRepositoryConfig contains dependencies for the quote repository.
type QuoteRepositoryConfig struct {
	Tree    ports.RemoteTree
	Session ports.SessionContext

	// Seeder fills empty categories. Nil disables seeding.
	Seeder *Seeder

	// Likes re-stamps the liked flag on every quote returned. Nil means
	// every quote is returned unliked.
	Likes *LikeStateManager

	// Activity records create, update, and delete. Nil disables recording.
	Activity *ActivityLogger

	Executor *Executor

	// Concurrency bounds parallel removals in ClearAllCustom.
	Concurrency int

	Logger *slog.Logger
	Now    func() time.Time
}

// QuoteRepository reads and writes quotes. The record under quotes/{id} is
// canonical; a quote authored by a user is mirrored under
// users/{uid}/customQuotes/{id}. The tree has no transactions, so
// multi-path writes report PartialWriteFailure when only some paths land.
type QuoteRepository struct {
	tree        ports.RemoteTree
	session     ports.SessionContext
	seeder      *Seeder
	likes       *LikeStateManager
	activity    *ActivityLogger
	exec        *Executor
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewQuoteRepository creates a quote repository.
// Panics if Tree is nil. Defaults logger to slog.Default() if nil.
func NewQuoteRepository(cfg QuoteRepositoryConfig) *QuoteRepository {
	if cfg.Tree == nil {
		panic("QuoteRepository: Tree is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exec := cfg.Executor
	if exec == nil {
		exec = NewExecutor(logger)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &QuoteRepository{
		tree:        cfg.Tree,
		session:     sessionOrAnonymous(cfg.Session),
		seeder:      cfg.Seeder,
		likes:       cfg.Likes,
		activity:    cfg.Activity,
		exec:        exec,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "app.QuoteRepository")),
		now:         now,
	}
}

type createInput struct {
	uid   string
	quote domain.Quote
}

// Create stores a new quote authored by the session user and mirrors it in
// their custom quotes. It returns the new id. The canonical record is written
// first and the mirror after it is read back. Once the canonical write lands,
// any later failure is a PartialWriteFailure naming both paths.
func (r *QuoteRepository) Create(ctx context.Context, q domain.Quote) (string, error) {
	uid, err := requireUser(ctx, r.session, "create quote")
	if err != nil {
		return "", err
	}

	op := Operation[createInput, domain.Quote, domain.Quote, string]{
		Name: "create_quote",
		Validate: func(_ context.Context, in createInput) error {
			return in.quote.Validate()
		},
		Perform: func(ctx context.Context, in createInput) (domain.Quote, error) {
			id, err := r.tree.PushKey(ctx, domain.QuotesRoot)
			if err != nil {
				return domain.Quote{}, err
			}

			created := in.quote
			created.ID = id
			created.UserID = in.uid
			created.Timestamp = domain.Millis(r.now())

			if err := r.tree.Set(ctx, domain.QuotePath(id), created.Canonical()); err != nil {
				return domain.Quote{}, err
			}

			return created, nil
		},
		Verify: func(ctx context.Context, in createInput, created domain.Quote) (domain.Quote, error) {
			canonical := domain.QuotePath(created.ID)
			mirror := domain.CustomQuotePath(in.uid, created.ID)

			snap, err := r.tree.Get(ctx, canonical)
			if err == nil && len(snap.Value) == 0 {
				err = domain.NewNotFoundError("quote", created.ID)
			}

			if err != nil {
				return domain.Quote{}, domain.NewPartialWriteError("create quote",
					[]string{canonical}, []string{mirror}, err)
			}

			return created, nil
		},
		Archive: func(ctx context.Context, in createInput, created domain.Quote) error {
			mirror := domain.CustomQuotePath(in.uid, created.ID)
			if err := r.tree.Set(ctx, mirror, created.Canonical()); err != nil {
				return domain.NewPartialWriteError("create quote",
					[]string{domain.QuotePath(created.ID)}, []string{mirror}, err)
			}

			return nil
		},
		Respond: func(ctx context.Context, _ createInput, created domain.Quote) (string, error) {
			r.activity.recordQuiet(ctx, domain.ActionQuoteCreated,
				"Created quote in "+created.Category+" category", created.ID)

			return created.ID, nil
		},
	}

	return Execute(ctx, r.exec, op, createInput{uid: uid, quote: q})
}

// Get returns the canonical quote with Liked stamped for the session user.
func (r *QuoteRepository) Get(ctx context.Context, id string) (domain.Quote, error) {
	q, err := r.readCanonical(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	stamped, err := r.stamp(ctx, []domain.Quote{q})
	if err != nil {
		return domain.Quote{}, err
	}

	return stamped[0], nil
}

// QueryByCategory returns the quotes whose category equals category
// exactly, oldest first. An empty result triggers seeding once per process
// for that category, after which the query runs again.
func (r *QuoteRepository) QueryByCategory(ctx context.Context, category string) ([]domain.Quote, error) {
	if category == "" {
		return nil, domain.NewValidationError("category", "must not be empty")
	}

	q := categoryQuery(category)

	quotes, err := r.queryOnce(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(quotes) == 0 && r.seeder != nil && !r.seeder.Attempted(category) {
		uid, _ := r.session.CurrentUserID(ctx)

		res, err := r.seeder.Seed(ctx, category, uid)
		if err != nil {
			loggerFor(ctx, r.logger).WarnContext(ctx, "seeding failed",
				slog.String("category", category),
				slog.Any("error", err),
			)
		}

		if res.Outcome == SeedWritten || res.Outcome == SeedClaimedElsewhere {
			quotes, err = r.queryOnce(ctx, q)
			if err != nil {
				return nil, err
			}
		}
	}

	return r.stamp(ctx, quotes)
}

// Watch streams the quotes of category after every change to the quotes
// collection, each delivery stamped with the session user's likes.
func (r *QuoteRepository) Watch(ctx context.Context, category string) (iter.Seq2[[]domain.Quote, error], error) {
	if category == "" {
		return nil, domain.NewValidationError("category", "must not be empty")
	}

	sub, err := r.tree.Subscribe(ctx, categoryQuery(category))
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", category, err)
	}

	return func(yield func([]domain.Quote, error) bool) {
		for snap, err := range ports.Snapshots(sub) {
			if err != nil {
				if !yield(nil, err) {
					return
				}

				continue
			}

			quotes, err := decodeQuotes(snap)
			if err == nil {
				quotes, err = r.stamp(ctx, quotes)
			}

			if !yield(quotes, err) {
				return
			}
		}
	}, nil
}

// Update rewrites text, author, and category of a quote the session user
// authored. The canonical record and the mirror are written independently;
// when only one lands the error is a PartialWriteFailure.
func (r *QuoteRepository) Update(ctx context.Context, id, text, author, category string) (domain.Quote, error) {
	uid, err := requireUser(ctx, r.session, "update quote")
	if err != nil {
		return domain.Quote{}, err
	}

	edit := domain.Quote{ID: id, Text: text, Author: author, Category: category}
	if err := edit.Validate(); err != nil {
		return domain.Quote{}, err
	}

	current, err := r.readCanonical(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	if current.UserID != uid {
		return domain.Quote{}, domain.NewPermissionDeniedError("update quote", "not the author")
	}

	mirror, err := r.tree.Get(ctx, domain.CustomQuotePath(uid, id))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("reading custom quote: %w", err)
	}

	updated := current
	updated.Text = text
	updated.Author = author
	updated.Category = category
	updated.Liked = false
	updated.Timestamp = domain.Millis(r.now())

	paths := []string{domain.QuotePath(id)}
	if len(mirror.Value) > 0 {
		paths = append(paths, domain.CustomQuotePath(uid, id))
	}

	writes := make([]func(context.Context) (string, error), len(paths))
	for i, p := range paths {
		writes[i] = func(ctx context.Context) (string, error) {
			return p, r.tree.Set(ctx, p, updated)
		}
	}

	if err := collectPartial("update quote", ParallelPartial(ctx, writes...)); err != nil {
		return domain.Quote{}, err
	}

	r.activity.recordQuiet(ctx, domain.ActionQuoteUpdated, "Updated quote in "+category+" category", id)

	stamped, err := r.stamp(ctx, []domain.Quote{updated})
	if err != nil {
		return updated, nil //nolint:nilerr // the write succeeded; stamping is cosmetic
	}

	return stamped[0], nil
}

// Delete removes the canonical record and the author's mirror. The two
// removals are staged: if the second fails the first is restored and the
// caller gets the plain failure. Only a failed restore leaves a
// PartialWriteFailure. Like relations held by other users are left in place.
func (r *QuoteRepository) Delete(ctx context.Context, id string) error {
	uid, err := requireUser(ctx, r.session, "delete quote")
	if err != nil {
		return err
	}

	if id == "" {
		return domain.NewValidationError("id", "must not be empty")
	}

	canonicalPath := domain.QuotePath(id)
	mirrorPath := domain.CustomQuotePath(uid, id)

	canonical, mirror, err := Parallel2(ctx,
		func(ctx context.Context) (ports.Snapshot, error) { return r.tree.Get(ctx, canonicalPath) },
		func(ctx context.Context) (ports.Snapshot, error) { return r.tree.Get(ctx, mirrorPath) },
	)
	if err != nil {
		return fmt.Errorf("reading quote %s: %w", id, err)
	}

	if len(canonical.Value) == 0 && len(mirror.Value) == 0 {
		return domain.NewNotFoundError("quote", id)
	}

	category := ""

	if len(canonical.Value) > 0 {
		var q domain.Quote
		if err := canonical.Decode(&q); err != nil {
			return err
		}

		if q.UserID != uid {
			return domain.NewPermissionDeniedError("delete quote", "not the author")
		}

		category = q.Category
	}

	rc := appctx.New(ctx)
	staged := make(map[string]string)

	for _, a := range []*removeAction{
		{tree: r.tree, path: canonicalPath, previous: canonical.Value},
		{tree: r.tree, path: mirrorPath, previous: mirror.Value},
	} {
		if len(a.previous) == 0 {
			continue
		}

		staged[a.String()] = a.path
		if err := rc.Stage(a); err != nil {
			return err
		}
	}

	if err := rc.Commit(ctx); err != nil {
		var ce *appctx.CommitError
		if !errors.As(err, &ce) || len(ce.Applied) == 0 || ce.RolledBack() {
			return fmt.Errorf("deleting quote %s: %w", id, err)
		}

		written := make([]string, 0, len(ce.Applied))
		for _, d := range ce.Applied {
			written = append(written, staged[d])
		}

		loggerFor(ctx, r.logger).ErrorContext(ctx, "delete partially applied",
			slog.String("quote_id", id),
			slog.Any("error", err),
		)

		return domain.NewPartialWriteError("delete quote", written, []string{staged[ce.Failed]}, err)
	}

	r.activity.recordQuiet(ctx, domain.ActionQuoteDeleted, "Deleted quote from "+category+" category", id)

	return nil
}

// LatestCustom returns the session user's most recently written custom
// quote, if any.
func (r *QuoteRepository) LatestCustom(ctx context.Context) (domain.Quote, bool, error) {
	uid, err := requireUser(ctx, r.session, "read custom quotes")
	if err != nil {
		return domain.Quote{}, false, err
	}

	quotes, err := r.queryOnce(ctx, ports.At(domain.CustomQuotesPath(uid)).OrderBy("timestamp").Last(1))
	if err != nil {
		return domain.Quote{}, false, err
	}

	if len(quotes) == 0 {
		return domain.Quote{}, false, nil
	}

	stamped, err := r.stamp(ctx, quotes)
	if err != nil {
		return domain.Quote{}, false, err
	}

	return stamped[0], true, nil
}

// ClearAllCustom removes every quote the session user authored: the
// canonical records first, then the customQuotes subtree, then the
// activity log. It returns the number of quotes removed.
func (r *QuoteRepository) ClearAllCustom(ctx context.Context) (int, error) {
	uid, err := requireUser(ctx, r.session, "clear custom quotes")
	if err != nil {
		return 0, err
	}

	snap, err := r.tree.Get(ctx, domain.CustomQuotesPath(uid))
	if err != nil {
		return 0, fmt.Errorf("listing custom quotes: %w", err)
	}

	ids := snap.Keys()

	err = FanOut(ctx, r.concurrency, ids, func(ctx context.Context, id string) error {
		return r.tree.Remove(ctx, domain.QuotePath(id))
	})
	if err != nil {
		return 0, fmt.Errorf("removing canonical quotes: %w", err)
	}

	if err := r.tree.Remove(ctx, domain.CustomQuotesPath(uid)); err != nil {
		return 0, domain.NewPartialWriteError("clear custom quotes",
			[]string{domain.QuotesRoot}, []string{domain.CustomQuotesPath(uid)}, err)
	}

	if r.activity != nil {
		if err := r.activity.Clear(ctx); err != nil {
			return len(ids), domain.NewPartialWriteError("clear custom quotes",
				[]string{domain.CustomQuotesPath(uid)}, []string{domain.ActivityLogPath(uid)}, err)
		}
	}

	loggerFor(ctx, r.logger).InfoContext(ctx, "custom quotes cleared", slog.Int("count", len(ids)))

	return len(ids), nil
}

func (r *QuoteRepository) readCanonical(ctx context.Context, id string) (domain.Quote, error) {
	if id == "" {
		return domain.Quote{}, domain.NewValidationError("id", "must not be empty")
	}

	snap, err := r.tree.Get(ctx, domain.QuotePath(id))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("reading quote %s: %w", id, err)
	}

	var q domain.Quote
	if err := snap.Decode(&q); err != nil {
		if domain.IsNotFound(err) {
			return domain.Quote{}, domain.NewNotFoundError("quote", id)
		}

		return domain.Quote{}, err
	}

	if q.ID == "" {
		q.ID = id
	}

	return q, nil
}

func (r *QuoteRepository) queryOnce(ctx context.Context, q ports.Query) ([]domain.Quote, error) {
	snap, err := r.tree.GetOnce(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", q, err)
	}

	return decodeQuotes(snap)
}

func (r *QuoteRepository) stamp(ctx context.Context, quotes []domain.Quote) ([]domain.Quote, error) {
	if r.likes == nil {
		return domain.LikeSet{}.Stamp(quotes), nil
	}

	return r.likes.Stamp(ctx, quotes)
}

func categoryQuery(category string) ports.Query {
	return ports.At(domain.QuotesRoot).OrderBy("category").Equal(category)
}

func decodeQuotes(snap ports.Snapshot) ([]domain.Quote, error) {
	quotes, err := ports.DecodeChildren[domain.Quote](snap)
	if err != nil {
		return nil, err
	}

	for i, c := range snap.Children {
		if quotes[i].ID == "" {
			quotes[i].ID = c.Key
		}
	}

	return quotes, nil
}

// collectPartial turns independent write results into nil, the sole cause
// when nothing landed, or a PartialWriteFailure.
func collectPartial(operation string, results []PartialResult[string]) error {
	var (
		written, failed []string
		errs            []error
	)

	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Value)
			errs = append(errs, r.Err)

			continue
		}

		written = append(written, r.Value)
	}

	switch {
	case len(errs) == 0:
		return nil
	case len(written) == 0:
		return fmt.Errorf("%s: %w", operation, errors.Join(errs...))
	default:
		return domain.NewPartialWriteError(operation, written, failed, errors.Join(errs...))
	}
}

// removeAction deletes one path and restores its previous record on
// rollback.
type removeAction struct {
	tree     ports.RemoteTree
	path     string
	previous json.RawMessage
}

func (a *removeAction) Apply(ctx context.Context) error {
	return a.tree.Remove(ctx, a.path)
}

func (a *removeAction) Undo(ctx context.Context) error {
	if len(a.previous) == 0 {
		return nil
	}

	return a.tree.Set(context.WithoutCancel(ctx), a.path, a.previous)
}

func (a *removeAction) String() string {
	return "remove " + a.path
}
