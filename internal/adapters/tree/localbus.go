package tree

import (
	"context"
	"sync"
)

const localListenerBuffer = 256

// LocalBus is an in-process Bus for single-node backends.
type LocalBus struct {
	mu        sync.RWMutex
	listeners map[int]*localListener
	nextID    int
	closed    bool
}

type localListener struct {
	notices chan string
	done    chan struct{}
	once    sync.Once
}

func (l *localListener) stop() {
	l.once.Do(func() { close(l.done) })
}

// NewLocalBus creates an in-process bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{listeners: make(map[int]*localListener)}
}

// Publish delivers path to every listener. It blocks while a listener's
// buffer is full, so a stalled listener slows writers rather than losing
// notices.
func (b *LocalBus) Publish(ctx context.Context, path string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	for _, l := range b.listeners {
		select {
		case l.notices <- path:
		case <-l.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Listen registers fn until stop is called or ctx ends.
func (b *LocalBus) Listen(ctx context.Context, fn func(path string)) (func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}

	id := b.nextID
	b.nextID++

	l := &localListener{
		notices: make(chan string, localListenerBuffer),
		done:    make(chan struct{}),
	}
	b.listeners[id] = l
	b.mu.Unlock()

	stop := func() {
		l.stop()
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}

	go func() {
		for {
			select {
			case p := <-l.notices:
				fn(p)
			case <-l.done:
				return
			case <-ctx.Done():
				stop()
				return
			}
		}
	}()

	return stop, nil
}

// Ping always succeeds while the bus is open.
func (b *LocalBus) Ping(context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	return nil
}

// Close stops every listener.
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	for id, l := range b.listeners {
		l.stop()
		delete(b.listeners, id)
	}

	return nil
}
