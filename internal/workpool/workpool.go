// Package workpool runs independent tasks on a bounded number of goroutines
// and collects their results in input order.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool bounds the number of concurrently running tasks. Its size is fixed at
// construction and is shared by every fan-out that uses it.
type Pool struct {
	size int
}

// New returns a pool running at most size tasks at once. A non-positive size
// falls back to GOMAXPROCS.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{size: size}
}

// Size returns the concurrency limit.
func (p *Pool) Size() int { return p.size }

// Map applies fn to every item and returns the results in the order of items.
// The first error cancels the context passed to the remaining tasks and is
// returned once all started tasks have finished.
func Map[In, Out any](ctx context.Context, p *Pool, items []In, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)
	for i, it := range items {
		g.Go(func() error {
			r, err := fn(gctx, it)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
