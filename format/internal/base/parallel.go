package base

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers resolves a requested worker count; n <= 0 means one per CPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Split divides n items between at most workers contiguous parts and
// returns the number of parts and the size of each (the last may be short).
func Split(n, workers int) (parts, size int) {
	if n <= 0 {
		return 0, 0
	}
	workers = min(Workers(workers), n)
	size = (n + workers - 1) / workers
	return (n + size - 1) / size, size
}

// Parallel runs fn once per part of [0, n) as computed by Split and returns
// when all of them have finished.
func Parallel(n, workers int, fn func(part, lo, hi int)) {
	parts, size := Split(n, workers)
	if parts == 1 {
		fn(0, 0, n)
		return
	}
	var g errgroup.Group
	for part := range parts {
		lo := part * size
		hi := min(lo+size, n)
		g.Go(func() error {
			fn(part, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// ForEach calls fn for every i in [0, n) with at most workers calls in flight.
func ForEach(n, workers int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(Workers(workers))
	for i := range n {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
