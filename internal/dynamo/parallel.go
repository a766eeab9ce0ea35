package dynamo

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MinChunk is the smallest index range handed to a single worker.
const MinChunk = 512

// Workers resolves a configured worker count; zero means one per CPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// ParallelFor executes fn over [0, n) split into contiguous chunks.
// Small ranges and workers <= 1 run on the calling goroutine.
func ParallelFor(n, workers int, fn func(start, end int)) {
	workers = Workers(workers)
	if n <= MinChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/MinChunk < workers {
		workers = n / MinChunk
	}
	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error {
			fn(s, e)
			return nil
		})
	}
	_ = g.Wait()
}
