// Package heatmap bins a root collection into a square 2D histogram over a
// fixed window of the complex plane and log-compresses the counts for
// visualization. The aggregator returns data by value; caching and display
// belong to the presentation layer.
package heatmap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"polyroots/internal/logging"
)

// The aggregation window. Roots of ±1 polynomials concentrate near the unit
// circle; this frame shows the full structure with a margin.
const (
	XMin = -1.8
	XMax = 1.8
	YMin = -1.8
	YMax = 1.8
)

// Grid size bounds. Below 100 the structure is invisible; above 10000 the
// grid alone costs more memory than the root data.
const (
	MinGridSize = 100
	MaxGridSize = 10000
)

var (
	// ErrGridSize is returned when the size parameter is out of bounds.
	// Checked before any computation starts.
	ErrGridSize = errors.New("grid size out of range")

	// ErrEmptyResult is returned when aggregation produces no positive
	// cells: the collection was empty or every root fell outside the
	// window. Reported explicitly, never silently swallowed.
	ErrEmptyResult = errors.New("histogram has no positive cells")
)

// ValidateGridSize rejects sizes outside [MinGridSize, MaxGridSize].
func ValidateGridSize(size int) error {
	if size < MinGridSize || size > MaxGridSize {
		return fmt.Errorf("%w: size must be in [%d,%d], got %d",
			ErrGridSize, MinGridSize, MaxGridSize, size)
	}
	return nil
}

// ProgressFunc observes aggregation completion. Binning is not
// incrementally observable, so it fires exactly once with (size, size).
type ProgressFunc func(current, total uint64)

// Grid is a log-compressed size×size histogram: Cells[row][col] holds
// ln(count+1) for the cell. Row index follows the imaginary axis, column
// index the real axis.
type Grid struct {
	Size  int
	Cells [][]float64
}

// Stats summarizes the strictly-positive cells so a presentation layer can
// derive a percentile-based lower color bound for log-scaled normalization.
type Stats struct {
	Binned  uint64 // roots that landed inside the window
	Dropped uint64 // roots outside the window, discarded (never clamped)

	PositiveCells int
	Min           float64   // smallest positive compressed value
	Max           float64   // largest compressed value
	Values        []float64 // all positive compressed values, ascending
}

// Percentile returns the value at fraction p (0..1) of the positive cells.
func (s *Stats) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	idx := int(p * float64(len(s.Values)-1))
	return s.Values[idx]
}

// Aggregate bins the collection into a size×size histogram over the fixed
// window and applies ln(count+1) per cell. Identical inputs always produce
// identical grids. A window-edge root lands in the edge cell (the outer
// edges are closed, as in the usual 2D histogram convention); strictly
// outside roots are dropped.
func Aggregate(roots []complex128, size int, progress ProgressFunc) (*Grid, *Stats, error) {
	if err := ValidateGridSize(size); err != nil {
		return nil, nil, err
	}

	log := logging.Get(logging.CategoryHeatmap)
	log.Info("aggregating %d roots into %dx%d grid", len(roots), size, size)
	timer := logging.StartTimer(logging.CategoryHeatmap, "aggregate")

	cells := make([][]float64, size)
	for i := range cells {
		cells[i] = make([]float64, size)
	}

	xScale := float64(size) / (XMax - XMin)
	yScale := float64(size) / (YMax - YMin)

	stats := &Stats{}
	for _, z := range roots {
		x, y := real(z), imag(z)
		if x < XMin || x > XMax || y < YMin || y > YMax {
			stats.Dropped++
			continue
		}
		col := int((x - XMin) * xScale)
		row := int((y - YMin) * yScale)
		if col == size {
			col = size - 1
		}
		if row == size {
			row = size - 1
		}
		cells[row][col]++
		stats.Binned++
	}

	// Log compression: monotonic, sidesteps the log(0) singularity.
	for row := range cells {
		for col, count := range cells[row] {
			if count == 0 {
				continue
			}
			v := math.Log(count + 1)
			cells[row][col] = v
			stats.Values = append(stats.Values, v)
		}
	}
	sort.Float64s(stats.Values)
	stats.PositiveCells = len(stats.Values)
	if stats.PositiveCells > 0 {
		stats.Min = stats.Values[0]
		stats.Max = stats.Values[len(stats.Values)-1]
	}

	if progress != nil {
		progress(uint64(size), uint64(size))
	}
	timer.StopWithInfo()

	if stats.PositiveCells == 0 {
		log.Warn("empty histogram: %d roots binned, %d dropped", stats.Binned, stats.Dropped)
		return nil, nil, fmt.Errorf("%w: %d roots in collection, %d outside window",
			ErrEmptyResult, len(roots), stats.Dropped)
	}

	log.Info("aggregated: %d binned, %d dropped, %d positive cells",
		stats.Binned, stats.Dropped, stats.PositiveCells)

	return &Grid{Size: size, Cells: cells}, stats, nil
}
