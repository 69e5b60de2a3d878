package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEach runs fn for every index in [0, n) on at most jobs goroutines
// (GOMAXPROCS when jobs <= 0). fn reports per-item failures through its
// own result slot; the returned error is only the context's.
func forEach(ctx context.Context, n, jobs int, fn func(ctx context.Context, i int)) error {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(jobs, n), 1))
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i)
			return nil
		})
	}
	return g.Wait()
}
