// Package natsbus carries tree change notices over NATS core pub/sub.
package natsbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
)

// Bus publishes notices on one subject.
type Bus struct {
	nc      *nats.Conn
	subject string
}

var _ tree.Bus = (*Bus)(nil)

// Connect dials url and returns a bus on subject.
func Connect(url, subject string, timeout time.Duration) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.Name("quotehub-sync"),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	return &Bus{nc: nc, subject: subject}, nil
}

// Publish announces a change at path.
func (b *Bus) Publish(_ context.Context, path string) error {
	if err := b.nc.Publish(b.subject, []byte(path)); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}

	return nil
}

// Listen subscribes and calls fn per notice. NATS delivers a subscription's
// messages on one goroutine, so fn sees them in order.
func (b *Bus) Listen(ctx context.Context, fn func(path string)) (func(), error) {
	sub, err := b.nc.Subscribe(b.subject, func(msg *nats.Msg) {
		fn(string(msg.Data))
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe: %w", err)
	}

	// the server must register interest before later publishes can reach us
	if err := b.nc.FlushWithContext(ctx); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("nats flush: %w", err)
	}

	var once sync.Once

	done := make(chan struct{})
	stop := func() {
		once.Do(func() {
			close(done)
			_ = sub.Unsubscribe()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()

	return stop, nil
}

// Ping reports the connection state.
func (b *Bus) Ping(context.Context) error {
	if !b.nc.IsConnected() {
		return fmt.Errorf("nats: %s", b.nc.Status())
	}

	return nil
}

// Close drains the connection.
func (b *Bus) Close() error {
	return b.nc.Drain()
}
