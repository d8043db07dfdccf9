package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	appctx "github.com/jsamuelsen/quotehub-sync/internal/app/context"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// LikeStateManagerConfig contains dependencies for the like state manager.
type LikeStateManagerConfig struct {
	Tree       ports.RemoteTree
	Session    ports.SessionContext
	Activity   *ActivityLogger
	Aggregator *CategoryAggregator

	// ViewBuffer is the per-watcher buffer of like-set updates.
	ViewBuffer int

	// ReadyTimeout bounds the wait for a new view's first delivery before
	// falling back to a one-shot read.
	ReadyTimeout time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// LikeStateManager owns the like relation of every signed-in user.
//
// Toggles are optimistic: while the remote write is in flight, State and
// Stamp report the target value. A failed write reverts to the previous
// value and the like-set is left untouched. Toggles on the same
// (user, quote) pair run one at a time.
type LikeStateManager struct {
	tree         ports.RemoteTree
	session      ports.SessionContext
	activity     *ActivityLogger
	agg          *CategoryAggregator
	buffer       int
	readyTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	views  map[string]*LikeView
	closed bool

	locks       *keyLock
	inflight    sync.Map
	unsubscribe func()
}

// NewLikeStateManager creates the manager and registers for auth changes so
// a user's view stops when they sign out.
// Panics if Tree is nil.
func NewLikeStateManager(cfg LikeStateManagerConfig) *LikeStateManager {
	if cfg.Tree == nil {
		panic("LikeStateManager: Tree is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	agg := cfg.Aggregator
	if agg == nil {
		agg = NewCategoryAggregator()
	}

	timeout := cfg.ReadyTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &LikeStateManager{
		tree:         cfg.Tree,
		session:      sessionOrAnonymous(cfg.Session),
		activity:     cfg.Activity,
		agg:          agg,
		buffer:       cfg.ViewBuffer,
		readyTimeout: timeout,
		logger:       logger.With(slog.String("component", "app.LikeStateManager")),
		now:          now,
		baseCtx:      ctx,
		cancel:       cancel,
		views:        make(map[string]*LikeView),
		locks:        newKeyLock(),
	}

	m.unsubscribe = m.session.OnAuthChange(func(ev ports.AuthEvent) {
		if !ev.SignedIn {
			m.StopView(ev.UserID)
		}
	})

	return m
}

func likeKey(uid, quoteID string) string {
	return uid + "/" + quoteID
}

// Toggle flips the like on q for the session user and returns q as it
// should now be displayed. On failure the returned quote carries the
// pre-toggle flag.
func (m *LikeStateManager) Toggle(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	uid, err := requireUser(ctx, m.session, "toggle like")
	if err != nil {
		return q, err
	}

	if q.ID == "" {
		return q, domain.NewValidationError("id", "must not be empty")
	}

	key := likeKey(uid, q.ID)

	unlock, err := m.locks.Lock(ctx, key)
	if err != nil {
		return q, err
	}
	defer unlock()

	set, err := m.likeSet(ctx, uid)
	if err != nil {
		return q, err
	}

	was := set.Contains(q.ID)
	now := m.now()

	state := domain.Liking
	if was {
		state = domain.Unliking
	}

	m.inflight.Store(key, state)
	defer m.inflight.Delete(key)

	path := domain.LikedQuotePath(uid, q.ID)
	like := q.AsLike(now)

	if was {
		err = m.tree.Remove(ctx, path)
	} else {
		err = m.tree.Set(ctx, path, like)
	}

	if err != nil {
		reverted := q
		reverted.Liked = was

		loggerFor(ctx, m.logger).WarnContext(ctx, "like toggle failed, reverting",
			slog.String("quote_id", q.ID),
			slog.String("state", state.String()),
			slog.Any("error", err),
		)

		return reverted, fmt.Errorf("toggling like on %s: %w", q.ID, err)
	}

	appctx.Invalidate(ctx, likeSetKey(uid))

	if v := m.existingView(uid); v != nil {
		if was {
			v.apply(q.ID, nil)
		} else {
			v.apply(q.ID, &like)
		}
	}

	if was {
		m.activity.recordQuiet(ctx, domain.ActionQuoteUnliked, "Removed a quote from "+q.Category+" favorites", q.ID)
		return q.Canonical(), nil
	}

	m.activity.recordQuiet(ctx, domain.ActionQuoteLiked, "Liked a quote in "+q.Category+" category", q.ID)

	return like, nil
}

// ToggleAsync starts Toggle and returns its pending result.
func (m *LikeStateManager) ToggleAsync(ctx context.Context, q domain.Quote) *Future[domain.Quote] {
	return Async(ctx, func(ctx context.Context) (domain.Quote, error) {
		return m.Toggle(ctx, q)
	})
}

// State returns the like state of quoteID for the session user. Anonymous
// sessions always see Unliked.
func (m *LikeStateManager) State(ctx context.Context, quoteID string) (domain.LikeState, error) {
	uid, ok := m.session.CurrentUserID(ctx)
	if !ok {
		return domain.Unliked, nil
	}

	if s, ok := m.inflight.Load(likeKey(uid, quoteID)); ok {
		return s.(domain.LikeState), nil //nolint:forcetypeassert // only LikeState is stored
	}

	set, err := m.likeSet(ctx, uid)
	if err != nil {
		return domain.Unliked, err
	}

	if set.Contains(quoteID) {
		return domain.Liked, nil
	}

	return domain.Unliked, nil
}

// Stamp returns copies of quotes with Liked taken from the session user's
// like-set and any in-flight toggle. The canonical flag is discarded.
func (m *LikeStateManager) Stamp(ctx context.Context, quotes []domain.Quote) ([]domain.Quote, error) {
	uid, ok := m.session.CurrentUserID(ctx)
	if !ok {
		return domain.LikeSet{}.Stamp(quotes), nil
	}

	set, err := m.likeSet(ctx, uid)
	if err != nil {
		return nil, err
	}

	out := set.Stamp(quotes)
	for i, q := range out {
		if s, ok := m.inflight.Load(likeKey(uid, q.ID)); ok {
			out[i].Liked = s.(domain.LikeState).Displayed() //nolint:forcetypeassert // only LikeState is stored
		}
	}

	return out, nil
}

// LikeStatic likes a curated static quote. Static quotes have no canonical
// record, so each call writes a new like relation under a fresh key.
func (m *LikeStateManager) LikeStatic(ctx context.Context, category string, sq StaticQuote) (domain.Quote, error) {
	uid, err := requireUser(ctx, m.session, "like static quote")
	if err != nil {
		return domain.Quote{}, err
	}

	id, err := m.tree.PushKey(ctx, domain.LikedQuotesPath(uid))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("allocating like key: %w", err)
	}

	like := domain.Quote{
		ID:       id,
		Text:     sq.Text,
		Author:   sq.Author,
		Category: category,
	}.AsLike(m.now())

	if err := m.tree.Set(ctx, domain.LikedQuotePath(uid, id), like); err != nil {
		return domain.Quote{}, fmt.Errorf("writing static like: %w", err)
	}

	if v := m.existingView(uid); v != nil {
		v.apply(id, &like)
	}

	m.activity.recordQuiet(ctx, domain.ActionQuoteLiked, "Liked a quote in "+category+" category", id)

	return like, nil
}

// Likes returns the session user's current like-set and category counts.
func (m *LikeStateManager) Likes(ctx context.Context) (LikeSnapshot, error) {
	uid, err := requireUser(ctx, m.session, "read likes")
	if err != nil {
		return LikeSnapshot{}, err
	}

	if v, err := m.view(uid); err == nil {
		if snap, ok := v.await(ctx, m.readyTimeout); ok {
			return snap, nil
		}
	}

	set, err := m.readLikes(ctx, uid)
	if err != nil {
		return LikeSnapshot{}, err
	}

	return LikeSnapshot{Likes: set, Counts: m.agg.Aggregate(set.Quotes())}, nil
}

// Watch streams the session user's like state: the current state, then one
// per change. The channel closes when ctx ends, the user signs out, or the
// manager closes.
func (m *LikeStateManager) Watch(ctx context.Context) (<-chan LikeSnapshot, error) {
	uid, err := requireUser(ctx, m.session, "watch likes")
	if err != nil {
		return nil, err
	}

	v, err := m.view(uid)
	if err != nil {
		return nil, err
	}

	return v.watch(ctx), nil
}

// StopView cancels uid's view, if any.
func (m *LikeStateManager) StopView(uid string) {
	m.mu.Lock()
	v, ok := m.views[uid]
	delete(m.views, uid)
	m.mu.Unlock()

	if ok {
		v.stop()
		m.logger.Debug("like view stopped", slog.String("user_id", uid))
	}
}

// ActiveViews returns the number of running views.
func (m *LikeStateManager) ActiveViews() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.views)
}

// Close stops every view and deregisters from auth changes.
func (m *LikeStateManager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	m.closed = true
	views := m.views
	m.views = make(map[string]*LikeView)
	m.mu.Unlock()

	m.unsubscribe()

	for _, v := range views {
		v.stop()
	}

	m.cancel()
}

// view returns uid's running view, starting one if needed. Views live on
// the manager's context, not the request's.
func (m *LikeStateManager) view(uid string) (*LikeView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, domain.NewUnavailableError("likes", "manager closed")
	}

	if v, ok := m.views[uid]; ok && !v.stopped() {
		return v, nil
	}

	sub, err := m.tree.Subscribe(m.baseCtx, ports.At(domain.LikedQuotesPath(uid)))
	if err != nil {
		return nil, fmt.Errorf("subscribing to likes: %w", err)
	}

	v := newLikeView(uid, sub, m.agg, m.buffer, m.now, m.logger)
	m.views[uid] = v

	return v, nil
}

func (m *LikeStateManager) existingView(uid string) *LikeView {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.views[uid]
}

// likeSet returns the live set when the view is ready, else a one-shot read.
func (m *LikeStateManager) likeSet(ctx context.Context, uid string) (domain.LikeSet, error) {
	if v, err := m.view(uid); err == nil {
		if snap, ok := v.await(ctx, m.readyTimeout); ok {
			return snap.Likes, nil
		}
	} else {
		loggerFor(ctx, m.logger).WarnContext(ctx, "like view unavailable, reading once", slog.Any("error", err))
	}

	return m.readLikes(ctx, uid)
}

// readLikes reads the like-set once, memoized per request when ctx carries
// a RequestContext.
func (m *LikeStateManager) readLikes(ctx context.Context, uid string) (domain.LikeSet, error) {
	return appctx.Load[domain.LikeSet](ctx, likeSetProvider{tree: m.tree, agg: m.agg, uid: uid})
}

// likeSetProvider fetches one user's like-set.
type likeSetProvider struct {
	tree ports.RemoteTree
	agg  *CategoryAggregator
	uid  string
}

func (p likeSetProvider) Key() string {
	return likeSetKey(p.uid)
}

func likeSetKey(uid string) string {
	return "likes:" + uid
}

func (p likeSetProvider) Fetch(ctx context.Context) (domain.LikeSet, error) {
	snap, err := p.tree.Get(ctx, domain.LikedQuotesPath(p.uid))
	if err != nil {
		return domain.LikeSet{}, fmt.Errorf("reading likes: %w", err)
	}

	set, _, err := p.agg.Fold(snap)

	return set, err
}
