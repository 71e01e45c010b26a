package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Parallel2 runs two lookups concurrently and returns both values or the first error.
// The context passed to each function is canceled as soon as either fails.
//
// Example:
//
//	total, page, err := Parallel2(ctx,
//	    func(ctx context.Context) (int64, error) { return repo.Count(ctx, filter) },
//	    func(ctx context.Context) ([]domain.Quote, error) { return repo.List(ctx, query) },
//	)
func Parallel2[T1, T2 any](
	ctx context.Context,
	fn1 func(context.Context) (T1, error),
	fn2 func(context.Context) (T2, error),
) (v1 T1, v2 T2, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var fnErr error

		v1, fnErr = fn1(gctx)

		return fnErr
	})

	g.Go(func() error {
		var fnErr error

		v2, fnErr = fn2(gctx)

		return fnErr
	})

	if err = g.Wait(); err != nil {
		var (
			zero1 T1
			zero2 T2
		)

		return zero1, zero2, fmt.Errorf("parallel lookup: %w", err)
	}

	return v1, v2, nil
}
