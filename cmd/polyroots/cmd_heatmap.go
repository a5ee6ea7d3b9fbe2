package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"polyroots/internal/config"
	"polyroots/internal/heatmap"
	"polyroots/internal/pipeline"
)

var (
	heatmapDegree     int
	heatmapSize       int
	heatmapResolution int
	heatmapOut        string
)

// heatmapCmd loads a persisted collection and bins it.
var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Aggregate a persisted root collection into a log-compressed histogram",
	Long: `Loads the root collection previously computed for the degree and bins it
into an NxN histogram over [-1.8,1.8]^2 with ln(count+1) compression.
Prints the statistics a renderer needs for percentile-based normalization;
--out additionally writes the grid as raw row-major little-endian float64.`,
	RunE: runHeatmap,
}

func init() {
	heatmapCmd.Flags().IntVar(&heatmapDegree, "degree", 0, "Polynomial degree in [1,25] (default: configured)")
	heatmapCmd.Flags().IntVar(&heatmapSize, "size", 0, "Grid size in [100,10000] (default: configured)")
	heatmapCmd.Flags().IntVar(&heatmapResolution, "resolution", 0, "Output resolution in [50,10000], passed through to presentation")
	heatmapCmd.Flags().StringVar(&heatmapOut, "out", "", "Write the grid to this file")
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	degree := heatmapDegree
	if degree == 0 {
		degree = cfg.Compute.DefaultDegree
	}
	size := heatmapSize
	if size == 0 {
		size = cfg.Heatmap.DefaultGridSize
	}
	resolution := heatmapResolution
	if resolution == 0 {
		resolution = cfg.Heatmap.DefaultResolution
	}
	// Resolution is consumed only by presentation, but it is vetted here
	// so a bad parameter fails before any aggregation work.
	if err := config.ValidateResolution(resolution); err != nil {
		return err
	}

	p, err := pipeline.New(cfg.DataDir, cfg.Compute.Workers, nil)
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info("aggregating", zap.Int("degree", degree), zap.Int("size", size))

	grid, stats, err := p.LoadAndAggregate(degree, size, func(current, total uint64) {
		logger.Debug("binning complete", zap.Uint64("current", current), zap.Uint64("total", total))
	})
	if err != nil {
		return err
	}

	cmd.Printf("degree %d, grid %dx%d\n", degree, grid.Size, grid.Size)
	cmd.Printf("roots binned:   %d\n", stats.Binned)
	cmd.Printf("roots dropped:  %d\n", stats.Dropped)
	cmd.Printf("positive cells: %d\n", stats.PositiveCells)
	cmd.Printf("value range:    [%.6f, %.6f]\n", stats.Min, stats.Max)
	cmd.Printf("p5 lower bound: %.6f\n", stats.Percentile(0.05))
	cmd.Printf("resolution:     %d (for presentation)\n", resolution)

	if heatmapOut != "" {
		if err := writeGrid(grid, heatmapOut); err != nil {
			return err
		}
		cmd.Printf("grid written to %s\n", heatmapOut)
	}
	return nil
}

// writeGrid dumps the compressed grid as raw row-major little-endian
// float64, the same headerless convention the root store uses.
func writeGrid(grid *heatmap.Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, row := range grid.Cells {
		if err := binary.Write(w, binary.LittleEndian, row); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
