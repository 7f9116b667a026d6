// Package worker provides bounded concurrent fan-out for per-item
// enrichment work, e.g. geocoding repairs across a list of alerts.
package worker

import (
	"context"
	"sync"
)

// Pool bounds how many items are processed concurrently.
type Pool struct {
	workers int
}

// NewPool creates a pool with the specified number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// ForEach runs fn for every index in [0, n), at most p.workers at a
// time, and returns when all calls have finished. fn is responsible
// for recording its own outcome at its index: failures stay isolated
// to the item that produced them, and callers keep the original item
// order regardless of completion order. A cancelled context stops
// unstarted items; running ones observe ctx themselves.
func (p *Pool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if n <= 0 {
		return
	}

	indices := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > n {
		workers = n
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(ctx, i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			close(indices)
			wg.Wait()
			return
		case indices <- i:
		}
	}
	close(indices)
	wg.Wait()
}
