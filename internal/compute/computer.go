// Package compute drives the root solver over every coefficient vector of a
// degree using a fixed-size worker pool. Results are merged by a single
// collector with full input accounting: every enumerated unit contributes an
// outcome, failed solves contribute zero roots but still count.
package compute

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"polyroots/internal/logging"
	"polyroots/internal/poly"
	"polyroots/internal/solver"
)

// milestoneInterval is how many completed units pass between log lines.
// Progress callbacks are never throttled; only logging is.
const milestoneInterval = 10000

// ProgressFunc observes batch progress. It is invoked from the collector
// once per completed unit with (processed, total). Implementations must be
// cheap and non-blocking; they run on the driver's goroutine.
type ProgressFunc func(processed, total uint64)

// Result is the outcome of one batch computation.
type Result struct {
	Degree   int
	Roots    []complex128
	Units    uint64 // enumerated units that produced an outcome
	Failures uint64 // solves that did not converge
	Complete bool   // false when the batch was cancelled mid-run
}

// Config configures the worker pool.
type Config struct {
	// Workers is the pool size. Zero or negative means hardware parallelism.
	Workers int
}

// DefaultConfig returns a pool sized to hardware parallelism.
func DefaultConfig() Config {
	return Config{Workers: runtime.GOMAXPROCS(0)}
}

// Computer runs root solves across a worker pool.
type Computer struct {
	solver  solver.Solver
	workers int
}

// New creates a Computer using the given solver. The solver must be safe
// for concurrent use.
func New(s solver.Solver, cfg Config) *Computer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Computer{solver: s, workers: workers}
}

// outcome is one unit's contribution: the roots found, or none on failure.
type outcome struct {
	roots  []complex128
	failed bool
}

// Compute solves every ±1 polynomial of the degree and returns the merged
// root collection. Per-unit solve failures are isolated and counted; they
// never abort the batch. On context cancellation the partial result is
// returned alongside ctx.Err() with Complete=false - completeness is an
// explicit flag, never inferred from the root count.
func (c *Computer) Compute(ctx context.Context, degree int, progress ProgressFunc) (*Result, error) {
	enum, err := poly.NewEnumerator(degree)
	if err != nil {
		return nil, err
	}
	total := enum.Total()

	log := logging.Get(logging.CategoryCompute)
	log.Info("batch start: degree=%d units=%d workers=%d", degree, total, c.workers)
	timer := logging.StartTimer(logging.CategoryCompute, "batch")

	units := make(chan poly.CoefficientVector, c.workers*2)
	outcomes := make(chan outcome, c.workers*2)

	var failures atomic.Uint64

	g, gctx := errgroup.WithContext(ctx)

	// Producer: stream units to idle workers, stop dispatching on cancel.
	g.Go(func() error {
		defer close(units)
		for {
			v, ok := enum.Next()
			if !ok {
				return nil
			}
			select {
			case units <- v:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	// Workers: stateless solves, no shared mutable state beyond the
	// read-only unit. Units already dispatched are drained even after
	// cancellation so accounting stays exact.
	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for v := range units {
				roots, err := c.solver.Roots(v)
				if err != nil {
					failures.Add(1)
					log.Debug("solve failed for %v: %v", v, err)
					roots = nil
				}
				outcomes <- outcome{roots: roots, failed: err != nil}
			}
			return nil
		})
	}

	// Close the outcome stream once the pool drains.
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(outcomes)
	}()

	// Collector: single writer owns the accumulator, results arrive in
	// arbitrary order. Progress fires once per completed unit.
	result := &Result{Degree: degree}
	var processed uint64
	for out := range outcomes {
		result.Roots = append(result.Roots, out.roots...)
		processed++
		if progress != nil {
			progress(processed, total)
		}
		if processed%milestoneInterval == 0 {
			log.Info("processed %d/%d polynomials", processed, total)
		}
	}

	err = <-done

	result.Units = processed
	result.Failures = failures.Load()
	result.Complete = processed == total

	timer.StopWithInfo()
	log.Info("batch end: degree=%d roots=%d failures=%d complete=%v",
		degree, len(result.Roots), result.Failures, result.Complete)

	if err != nil {
		return result, err
	}
	return result, nil
}
