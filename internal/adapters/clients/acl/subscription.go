package acl

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// subscription re-reads its query whenever a change notice overlaps the
// watched path. Notices that arrive while a read is pending collapse into
// one re-read, so a slow consumer always receives the latest state rather
// than a backlog.
type subscription struct {
	tree  *RemoteTree
	query ports.Query

	out   chan ports.Delivery
	dirty chan struct{}

	ctx        context.Context
	cancel     context.CancelFunc
	stopListen func()
	once       sync.Once
}

var _ ports.Subscription = (*subscription)(nil)

func newSubscription(parent context.Context, t *RemoteTree, q ports.Query) (*subscription, error) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))

	s := &subscription{
		tree:   t,
		query:  q,
		out:    make(chan ports.Delivery, 1),
		dirty:  make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}

	// listen before the first read so no change can slip between them
	stop, err := t.client.Listen(ctx, func(changed string) {
		if tree.Overlaps(q.Path, changed) {
			s.markDirty()
		}
	})
	if err != nil {
		cancel()
		return nil, err
	}

	s.stopListen = stop
	s.markDirty()

	// the subscriber's context ends the subscription too
	go func() {
		select {
		case <-parent.Done():
			s.Cancel()
		case <-ctx.Done():
		}
	}()

	t.gauge.Inc()

	go s.run()

	return s, nil
}

func (s *subscription) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *subscription) run() {
	defer close(s.out)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.dirty:
		}

		snap, err := s.tree.read(s.ctx, s.query)
		if s.ctx.Err() != nil {
			return
		}

		if err != nil {
			s.tree.logger.Warn("subscription read failed",
				slog.String("query", s.query.String()),
				slog.Any("error", err),
			)
		}

		select {
		case s.out <- ports.Delivery{Snapshot: snap, Err: err}:
		case <-s.ctx.Done():
			return
		}
	}
}

// Deliveries returns the delivery channel. It is closed after Cancel.
func (s *subscription) Deliveries() <-chan ports.Delivery {
	return s.out
}

// Cancel stops the subscription. It is safe to call more than once.
func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		s.stopListen()
		s.tree.gauge.Dec()
	})
}
