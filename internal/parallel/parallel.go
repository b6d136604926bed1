// Package parallel provides parallel execution utilities for simulations and
// batch computations.
//
// Workers in a Pool own private state, typically a tape, which is never shared
// between goroutines. Work is split into batches handed out in index order;
// a batch's result must depend only on its index range, so the aggregate is
// the same whatever the number of workers.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
	BatchSize    int  // Items per batch handed to a Pool worker.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64, // Typical cache line aware chunk.
		BatchSize:    64,
	}
}

// Sequential returns a configuration running everything on the caller's goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1, BatchSize: 64}
}

// workers returns the effective number of workers.
func (c Config) workers() int {
	if !c.Enabled || c.NumWorkers < 1 {
		return 1
	}
	return c.NumWorkers
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers < 2 {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Batch is a contiguous range [Start, End) of work items.
type Batch struct {
	Index int
	Start int
	End   int
}

// Len returns the number of items in the batch.
func (b Batch) Len() int {
	return b.End - b.Start
}

// Batches splits n items into batches of at most size items.
func Batches(n, size int) []Batch {
	if size < 1 {
		size = 1
	}
	out := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		out = append(out, Batch{Index: len(out), Start: start, End: min(start+size, n)})
	}
	return out
}

// Pool is a fixed set of workers, each owning a private W.
type Pool[W any] struct {
	cfg     Config
	workers []W
}

// NewPool creates the workers of a pool. newWorker is called once per worker,
// sequentially.
func NewPool[W any](cfg Config, newWorker func(i int) (W, error)) (*Pool[W], error) {
	n := cfg.workers()
	workers := make([]W, n)
	for i := range workers {
		w, err := newWorker(i)
		if err != nil {
			return nil, err
		}
		workers[i] = w
	}
	return &Pool[W]{cfg: cfg, workers: workers}, nil
}

// Workers returns the worker states. They must not be touched while Run is
// in progress.
func (p *Pool[W]) Workers() []W {
	return p.workers
}

// Size returns the number of workers.
func (p *Pool[W]) Size() int {
	return len(p.workers)
}

// Run splits n items into batches of cfg.BatchSize and calls task for each of
// them on some worker. A worker processes one batch at a time. The first error
// cancels the context passed to the remaining tasks and is returned.
func (p *Pool[W]) Run(ctx context.Context, n int, task func(ctx context.Context, w W, b Batch) error) error {
	batches := Batches(n, p.cfg.BatchSize)

	if len(p.workers) == 1 {
		for _, b := range batches {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := task(ctx, p.workers[0], b); err != nil {
				return err
			}
		}
		return nil
	}

	var next atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error {
			for {
				i := int(next.Add(1)) - 1
				if i >= len(batches) {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := task(ctx, w, batches[i]); err != nil {
					return err
				}
			}
		})
	}
	return g.Wait()
}
