package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallel2(t *testing.T) {
	a, b, err := Parallel2(context.Background(),
		func(context.Context) (string, error) { return "canonical", nil },
		func(context.Context) (int, error) { return 2, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, "canonical", a)
	assert.Equal(t, 2, b)

	_, _, err = Parallel2(context.Background(),
		func(context.Context) (string, error) { return "", errInjected },
		func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, errInjected)
}

func TestParallel3(t *testing.T) {
	a, b, c, err := Parallel3(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
		func(context.Context) (int, error) { return 3, nil },
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{a, b, c})
}

func TestParallelPartial_KeepsEveryResult(t *testing.T) {
	results := ParallelPartial(context.Background(),
		func(context.Context) (string, error) { return "quotes/q1", nil },
		func(context.Context) (string, error) { return "users/u1/customQuotes/q1", errInjected },
	)

	require.Len(t, results, 2)
	assert.Equal(t, "quotes/q1", results[0].Value)
	require.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, errInjected)
}

func TestParallelPartialLimit_BoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32

	fns := make([]func(context.Context) (int, error), 10)
	for i := range fns {
		fns[i] = func(context.Context) (int, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}

			time.Sleep(5 * time.Millisecond)
			running.Add(-1)

			return i, nil
		}
	}

	results := ParallelPartialLimit(context.Background(), 3, fns...)

	require.Len(t, results, 10)
	for i, r := range results {
		assert.Equal(t, i, r.Value)
	}

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestFanOut(t *testing.T) {
	var sum atomic.Int64

	err := FanOut(context.Background(), 3, []int{1, 2, 3, 4, 5}, func(_ context.Context, n int) error {
		sum.Add(int64(n))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), sum.Load())

	err = FanOut(context.Background(), 0, []int{1}, func(context.Context, int) error { return errInjected })
	require.Error(t, err)
	assert.ErrorIs(t, err, errInjected)
}

func TestFuture(t *testing.T) {
	t.Run("await returns the result", func(t *testing.T) {
		f := Async(context.Background(), func(context.Context) (string, error) { return "done", nil })

		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "done", v)

		select {
		case <-f.Done():
		default:
			t.Fatal("done not closed after await")
		}
	})

	t.Run("await returns the error", func(t *testing.T) {
		f := Async(context.Background(), func(context.Context) (int, error) { return 0, errInjected })

		_, err := f.Await(context.Background())
		assert.ErrorIs(t, err, errInjected)
	})

	t.Run("cancelled wait abandons only the wait", func(t *testing.T) {
		release := make(chan struct{})

		f := Async(context.Background(), func(context.Context) (int, error) {
			<-release
			return 7, nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.Await(ctx)
		require.ErrorIs(t, err, context.Canceled)

		close(release)

		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("operation sees the caller context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		f := Async(ctx, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})

		cancel()

		_, err := f.Await(context.Background())
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
