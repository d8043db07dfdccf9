package redistree

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
)

// Bus carries change notices over Redis pub/sub on a single channel, so
// every process sees notices in publish order.
type Bus struct {
	rdb     redis.UniversalClient
	channel string
}

var _ tree.Bus = (*Bus)(nil)

// NewBus wraps rdb.
func NewBus(rdb redis.UniversalClient, channel string) *Bus {
	return &Bus{rdb: rdb, channel: channel}
}

// Publish announces a change at path.
func (b *Bus) Publish(ctx context.Context, path string) error {
	if err := b.rdb.Publish(ctx, b.channel, path).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}

	return nil
}

// Listen subscribes to the channel and calls fn per notice.
func (b *Bus) Listen(ctx context.Context, fn func(path string)) (func(), error) {
	sub := b.rdb.Subscribe(ctx, b.channel)

	// confirms the subscription before any write can race past it
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	done := make(chan struct{})

	var once sync.Once

	stop := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}

	go func() {
		ch := sub.Channel()

		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case <-done:
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					stop()
					return
				}

				fn(m.Payload)
			}
		}
	}()

	return stop, nil
}

// Ping checks connectivity.
func (b *Bus) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// Close is a no-op; the Store owns the shared client.
func (b *Bus) Close() error {
	return nil
}
