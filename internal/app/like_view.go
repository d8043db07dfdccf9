package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// LikeSnapshot is one immutable state of a user's likes. Version increases
// with every replacement, whether from a delivery or a local reconcile.
type LikeSnapshot struct {
	Likes   domain.LikeSet
	Counts  domain.CategoryCount
	Version uint64
}

// confirmedHold bounds how long a confirmed toggle overrides deliveries
// that do not reflect it yet.
const confirmedHold = 30 * time.Second

// confirmedLike is a toggle whose write succeeded. A nil like is a removal.
type confirmedLike struct {
	like  *domain.Quote
	until time.Time
}

// LikeView keeps one user's like-set current from a subscription on
// users/{uid}/likedQuotes. The set is replaced wholesale on every delivery;
// read errors keep the previous set. Confirmed toggles stay applied on top
// of deliveries until one reflects them or confirmedHold passes.
type LikeView struct {
	uid    string
	sub    ports.Subscription
	agg    *CategoryAggregator
	logger *slog.Logger
	buffer int
	now    func() time.Time

	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}

	mu        sync.RWMutex
	snap      LikeSnapshot
	lastErr   error
	confirmed map[string]confirmedLike
	watchers  map[int]chan LikeSnapshot
	nextID    int
}

func newLikeView(
	uid string,
	sub ports.Subscription,
	agg *CategoryAggregator,
	buffer int,
	now func() time.Time,
	logger *slog.Logger,
) *LikeView {
	v := &LikeView{
		uid:       uid,
		sub:       sub,
		agg:       agg,
		logger:    logger.With(slog.String("user_id", uid)),
		buffer:    max(buffer, 1),
		now:       now,
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
		confirmed: make(map[string]confirmedLike),
		watchers:  make(map[int]chan LikeSnapshot),
	}

	go v.run()

	return v
}

func (v *LikeView) run() {
	defer close(v.done)
	defer v.closeWatchers()

	for d := range v.sub.Deliveries() {
		if d.Err != nil {
			v.mu.Lock()
			v.lastErr = d.Err
			v.mu.Unlock()

			v.logger.Warn("like view delivery failed, keeping previous set", slog.Any("error", d.Err))

			continue
		}

		set, counts, err := v.agg.Fold(d.Snapshot)
		if err != nil {
			v.logger.Error("decoding like set failed", slog.Any("error", err))
			continue
		}

		v.replace(set, counts)
	}
}

func (v *LikeView) replace(set domain.LikeSet, counts domain.CategoryCount) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if merged, changed := v.overlayLocked(set); changed {
		set = merged
		counts = v.agg.Aggregate(merged.Quotes())
	}

	v.replaceLocked(set, counts)
}

// overlayLocked applies confirmed toggles the delivered set does not
// reflect yet. Entries the set agrees with, or that expired, are dropped.
func (v *LikeView) overlayLocked(set domain.LikeSet) (domain.LikeSet, bool) {
	if len(v.confirmed) == 0 {
		return set, false
	}

	now := v.now()
	quotes := set.Quotes()
	changed := false

	for id, c := range v.confirmed {
		if set.Contains(id) == (c.like != nil) || now.After(c.until) {
			delete(v.confirmed, id)
			continue
		}

		quotes = withLike(quotes, id, c.like)
		changed = true
	}

	if !changed {
		return set, false
	}

	return domain.NewLikeSet(quotes), true
}

func (v *LikeView) replaceLocked(set domain.LikeSet, counts domain.CategoryCount) {
	v.snap = LikeSnapshot{Likes: set, Counts: counts, Version: v.snap.Version + 1}
	v.lastErr = nil

	for _, ch := range v.watchers {
		offerLatest(ch, v.snap)
	}

	v.readyOnce.Do(func() { close(v.ready) })
}

// apply reconciles a confirmed toggle before the subscription catches up.
// A nil like removes id. Before the first delivery there is no set to patch;
// the toggle is held and laid over that delivery instead.
func (v *LikeView) apply(id string, like *domain.Quote) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.confirmed[id] = confirmedLike{like: like, until: v.now().Add(confirmedHold)}

	select {
	case <-v.ready:
	default:
		return
	}

	next := withLike(v.snap.Likes.Quotes(), id, like)
	v.replaceLocked(domain.NewLikeSet(next), v.agg.Aggregate(next))
}

// withLike returns quotes with id replaced by like, or dropped when like is nil.
func withLike(quotes []domain.Quote, id string, like *domain.Quote) []domain.Quote {
	next := make([]domain.Quote, 0, len(quotes)+1)
	for _, q := range quotes {
		if q.ID != id {
			next = append(next, q)
		}
	}

	if like != nil {
		next = append(next, *like)
	}

	return next
}

// Snapshot returns the current state and whether the first delivery arrived.
func (v *LikeView) Snapshot() (LikeSnapshot, bool) {
	select {
	case <-v.ready:
	default:
		return LikeSnapshot{}, false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.snap, true
}

// Err returns the last delivery error, cleared by the next good delivery.
func (v *LikeView) Err() error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.lastErr
}

// await waits for the first delivery, up to timeout.
func (v *LikeView) await(ctx context.Context, timeout time.Duration) (LikeSnapshot, bool) {
	if snap, ok := v.Snapshot(); ok {
		return snap, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-v.ready:
		return v.Snapshot()
	case <-v.done:
	case <-timer.C:
	case <-ctx.Done():
	}

	return LikeSnapshot{}, false
}

// watch registers a watcher that receives the current state (once ready)
// and every later one. Slow watchers skip intermediate states. The channel
// is closed when ctx ends or the view stops.
func (v *LikeView) watch(ctx context.Context) <-chan LikeSnapshot {
	ch := make(chan LikeSnapshot, v.buffer)

	v.mu.Lock()

	select {
	case <-v.done:
		v.mu.Unlock()
		close(ch)

		return ch
	default:
	}

	id := v.nextID
	v.nextID++
	v.watchers[id] = ch

	select {
	case <-v.ready:
		offerLatest(ch, v.snap)
	default:
	}

	v.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-v.done:
		}

		v.mu.Lock()
		defer v.mu.Unlock()

		if c, ok := v.watchers[id]; ok {
			delete(v.watchers, id)
			close(c)
		}
	}()

	return ch
}

func (v *LikeView) closeWatchers() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for id, ch := range v.watchers {
		delete(v.watchers, id)
		close(ch)
	}
}

// stop cancels the subscription; run exits once the channel closes.
func (v *LikeView) stop() {
	v.sub.Cancel()
}

func (v *LikeView) stopped() bool {
	select {
	case <-v.done:
		return true
	default:
		return false
	}
}

// offerLatest sends s, dropping the oldest buffered state when full. Only
// the view's writer calls it, under the view lock.
func offerLatest(ch chan LikeSnapshot, s LikeSnapshot) {
	select {
	case ch <- s:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- s:
	default:
	}
}
