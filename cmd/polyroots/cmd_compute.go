package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"polyroots/internal/pipeline"
)

var computeDegree int

// computeCmd enumerates, solves, and persists one degree.
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute and persist the roots of every ±1 polynomial of a degree",
	Long: `Enumerates all 2^degree coefficient vectors, solves each polynomial via
balanced companion-matrix eigenvalues across a worker pool, and writes the
merged root collection to the data directory. The run is recorded in the
catalog; an interrupted run is persisted partially and marked incomplete.`,
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().IntVar(&computeDegree, "degree", 0, "Polynomial degree in [1,25] (default: configured)")
}

func runCompute(cmd *cobra.Command, args []string) error {
	degree := computeDegree
	if degree == 0 {
		degree = cfg.Compute.DefaultDegree
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(cfg.DataDir, cfg.Compute.Workers, func(runID string, from, to pipeline.Stage) {
		logger.Info("stage transition",
			zap.String("run", runID),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
	})
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info("computing roots",
		zap.Int("degree", degree),
		zap.Int("workers", cfg.WorkerCount()),
		zap.Uint64("polynomials", uint64(1)<<uint(degree)))

	// Display throttling is this observer's choice; the computer itself
	// reports every completed unit.
	var lastPercent uint64
	progress := func(processed, total uint64) {
		percent := processed * 100 / total
		if percent != lastPercent || processed == total {
			lastPercent = percent
			cmd.PrintErrf("\rsolving: %d/%d (%d%%)", processed, total, percent)
		}
	}

	summary, err := p.ComputeAndPersist(ctx, degree, progress)
	cmd.PrintErrln()
	if summary != nil {
		logger.Info("run finished",
			zap.String("run", summary.RunID),
			zap.Int("roots", summary.Roots),
			zap.Uint64("solve_failures", summary.Failures),
			zap.Bool("complete", summary.Complete),
			zap.Duration("elapsed", summary.Elapsed),
			zap.String("path", summary.Path))
	}
	if err != nil {
		if ctx.Err() != nil && summary != nil {
			logger.Warn("interrupted; partial collection persisted and marked incomplete")
		}
		return err
	}

	cmd.Printf("degree %d: %d roots (%d solve failures) -> %s\n",
		degree, summary.Roots, summary.Failures, summary.Path)
	return nil
}
