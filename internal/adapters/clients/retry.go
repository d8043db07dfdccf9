package clients

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"time"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/tree"
	"github.com/jsamuelsen/quotehub-sync/internal/platform/config"
)

const defaultJitterFactor = 0.25

// backoff spaces read retries: initial * multiplier^attempt, capped at max,
// then spread by ±jitter of itself.
type backoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
}

func newBackoff(cfg config.RetryConfig) backoff {
	b := backoff{
		initial:    cfg.InitialInterval,
		max:        cfg.MaxInterval,
		multiplier: cfg.Multiplier,
		jitter:     cfg.JitterFactor,
	}
	if b.jitter == 0 {
		b.jitter = defaultJitterFactor
	}

	return b
}

func (b backoff) delay(attempt int) time.Duration {
	d := min(float64(b.initial)*math.Pow(b.multiplier, float64(attempt)), float64(b.max))

	spread := 2*rand.Float64() - 1 //nolint:gosec // jitter only

	return time.Duration(d + d*b.jitter*spread)
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryable reports whether another attempt could succeed. parent is the
// caller's context: once it is done nothing is retried, while an attempt's
// own deadline is.
func retryable(parent context.Context, err error) bool {
	switch {
	case err == nil, parent.Err() != nil:
		return false
	case errors.Is(err, tree.ErrClosed), errors.Is(err, tree.ErrInvalidPath):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// dropped redis connections
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
