package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Tree reads that do not depend on each other run concurrently. All-or-nothing
// reads use Parallel2/Parallel3; multi-path writes that must report what
// landed use ParallelPartial.

// all runs fns concurrently under a shared context that is cancelled on the
// first error.
func all(ctx context.Context, fns ...func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, fn := range fns {
		g.Go(func() error { return fn(ctx) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("parallel execution failed: %w", err)
	}

	return nil
}

// into adapts fn to store its value in *dst.
func into[T any](dst *T, fn func(context.Context) (T, error)) func(context.Context) error {
	return func(ctx context.Context) (err error) {
		*dst, err = fn(ctx)
		return err
	}
}

// Parallel2 runs two reads concurrently and returns both results or the
// first error.
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (T1, T2, error) {
	var (
		r1 T1
		r2 T2
	)

	if err := all(ctx, into(&r1, fn1), into(&r2, fn2)); err != nil {
		var (
			z1 T1
			z2 T2
		)

		return z1, z2, err
	}

	return r1, r2, nil
}

// Parallel3 is Parallel2 for three reads.
func Parallel3[T1, T2, T3 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
	fn3 func(context.Context) (T3, error),
) (T1, T2, T3, error) {
	var (
		r1 T1
		r2 T2
		r3 T3
	)

	if err := all(ctx, into(&r1, fn1), into(&r2, fn2), into(&r3, fn3)); err != nil {
		var (
			z1 T1
			z2 T2
			z3 T3
		)

		return z1, z2, z3, err
	}

	return r1, r2, r3, nil
}

// PartialResult is one outcome of ParallelPartial.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartial runs every fn to completion, without cancelling the rest
// on failure, and returns their outcomes in order.
func ParallelPartial[T any](ctx context.Context, fns ...func(context.Context) (T, error)) []PartialResult[T] {
	return ParallelPartialLimit(ctx, 0, fns...)
}

// ParallelPartialLimit is ParallelPartial with at most limit fns running at
// once. A limit below one means no bound.
func ParallelPartialLimit[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) []PartialResult[T] {
	results := make([]PartialResult[T], len(fns))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, fn := range fns {
		g.Go(func() error {
			v, err := fn(ctx)
			results[i] = PartialResult[T]{Value: v, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return results
}

// FanOut applies fn to every item with at most workers calls in flight,
// stopping at the first error.
func FanOut[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for _, item := range items {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error { return fn(gctx, item) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("fan out failed: %w", err)
	}

	return ctx.Err()
}

// Future is the pending result of an operation started with Async.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Async starts fn on its own goroutine. fn runs under ctx, so cancelling
// ctx cancels the operation itself.
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		f.value, f.err = fn(ctx)
	}()

	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await waits for the result or for ctx to end. Giving up on the wait does
// not stop the operation.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
