// Package pipeline orchestrates a polyroots run: enumerate and solve,
// persist, reload, aggregate. Each run moves through an explicit stage
// machine; any stage can fail, failure is terminal for that run and tagged
// with the originating stage, and never corrupts previously persisted data.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"polyroots/internal/compute"
	"polyroots/internal/heatmap"
	"polyroots/internal/logging"
	"polyroots/internal/solver"
	"polyroots/internal/store"
)

// -----------------------------------------------------------------------------
// Stages
// -----------------------------------------------------------------------------

// Stage identifies where a run is in its lifecycle.
type Stage int

const (
	StageIdle Stage = iota
	// StageSolving covers interleaved enumeration and root solving.
	StageSolving
	// StagePersisted means the collection is durably written and cataloged.
	StagePersisted
	StageLoading
	StageAggregating
	StageDone
	// StageFailed is terminal for the run.
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageSolving:
		return "solving"
	case StagePersisted:
		return "persisted"
	case StageLoading:
		return "loading"
	case StageAggregating:
		return "aggregating"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// StageError tags a failure with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageFunc observes stage transitions. Invocations must be cheap and
// non-blocking; they run on the pipeline's goroutine.
type StageFunc func(runID string, from, to Stage)

// -----------------------------------------------------------------------------
// Pipeline
// -----------------------------------------------------------------------------

// ComputeSummary reports the outcome of a compute-and-persist run.
type ComputeSummary struct {
	RunID    string
	Degree   int
	Path     string
	Roots    int
	Failures uint64
	Complete bool
	Elapsed  time.Duration
}

// Pipeline wires the computer, the store, and the aggregator together.
type Pipeline struct {
	dataDir  string
	computer *compute.Computer
	catalog  *store.Catalog
	onStage  StageFunc
}

// New opens a pipeline over dataDir. workers <= 0 means hardware
// parallelism. onStage may be nil.
func New(dataDir string, workers int, onStage StageFunc) (*Pipeline, error) {
	catalog, err := store.OpenCatalog(store.CatalogPath(dataDir))
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		dataDir:  dataDir,
		computer: compute.New(solver.NewCompanionSolver(), compute.Config{Workers: workers}),
		catalog:  catalog,
		onStage:  onStage,
	}, nil
}

// Close releases the catalog.
func (p *Pipeline) Close() error {
	return p.catalog.Close()
}

// Catalog exposes the run catalog for listing.
func (p *Pipeline) Catalog() *store.Catalog {
	return p.catalog
}

// transition logs and reports a stage change, returning the new stage.
func (p *Pipeline) transition(runID string, from, to Stage) Stage {
	logging.Pipeline("run %s: %s -> %s", runID, from, to)
	if p.onStage != nil {
		p.onStage(runID, from, to)
	}
	return to
}

// fail marks the run failed and wraps the error with its stage.
func (p *Pipeline) fail(runID string, at Stage, err error) error {
	p.transition(runID, at, StageFailed)
	logging.PipelineError("run %s failed at %s: %v", runID, at, err)
	return &StageError{Stage: at, Err: err}
}

// ComputeAndPersist enumerates and solves every ±1 polynomial of the
// degree, persists the collection, and records the run in the catalog.
// On cancellation the partial collection is still persisted and recorded
// with Complete=false; completeness is a catalog fact, never an inference
// from file length.
func (p *Pipeline) ComputeAndPersist(ctx context.Context, degree int, progress compute.ProgressFunc) (*ComputeSummary, error) {
	runID := uuid.NewString()
	start := time.Now()
	stage := StageIdle

	logging.Pipeline("run %s: compute degree=%d", runID, degree)
	stage = p.transition(runID, stage, StageSolving)

	result, computeErr := p.computer.Compute(ctx, degree, progress)
	if computeErr != nil && result == nil {
		// Parameter rejection: fail fast, nothing computed, no side effects.
		return nil, p.fail(runID, stage, computeErr)
	}

	path := store.PathFor(p.dataDir, degree)
	if err := store.Save(result.Roots, path); err != nil {
		return nil, p.fail(runID, stage, err)
	}

	rec := store.RunRecord{
		Degree:     degree,
		Path:       path,
		Roots:      int64(len(result.Roots)),
		Failures:   int64(result.Failures),
		Complete:   result.Complete,
		FinishedAt: time.Now(),
	}
	if err := p.catalog.Record(rec); err != nil {
		return nil, p.fail(runID, stage, err)
	}

	stage = p.transition(runID, stage, StagePersisted)

	summary := &ComputeSummary{
		RunID:    runID,
		Degree:   degree,
		Path:     path,
		Roots:    len(result.Roots),
		Failures: result.Failures,
		Complete: result.Complete,
		Elapsed:  time.Since(start),
	}

	if computeErr != nil {
		// Cancelled mid-batch: partial state is persisted and flagged,
		// but the failure originated while solving.
		p.transition(runID, stage, StageFailed)
		logging.PipelineError("run %s failed at %s: %v", runID, StageSolving, computeErr)
		return summary, &StageError{Stage: StageSolving, Err: computeErr}
	}

	p.transition(runID, stage, StageDone)
	return summary, nil
}

// LoadAndAggregate reloads the persisted collection for the degree and bins
// it into a size×size log-compressed histogram.
func (p *Pipeline) LoadAndAggregate(degree, size int, progress compute.ProgressFunc) (*heatmap.Grid, *heatmap.Stats, error) {
	runID := uuid.NewString()
	stage := StageIdle

	logging.Pipeline("run %s: heatmap degree=%d size=%d", runID, degree, size)

	// Fail fast on parameters before touching the store.
	if err := heatmap.ValidateGridSize(size); err != nil {
		return nil, nil, p.fail(runID, stage, err)
	}

	stage = p.transition(runID, stage, StageLoading)
	roots, err := store.Load(store.PathFor(p.dataDir, degree))
	if err != nil {
		return nil, nil, p.fail(runID, stage, fmt.Errorf("degree %d: %w", degree, err))
	}

	stage = p.transition(runID, stage, StageAggregating)
	grid, stats, err := heatmap.Aggregate(roots, size, func(current, total uint64) {
		if progress != nil {
			progress(current, total)
		}
	})
	if err != nil {
		return nil, nil, p.fail(runID, stage, fmt.Errorf("degree %d: %w", degree, err))
	}

	p.transition(runID, stage, StageDone)
	return grid, stats, nil
}
