package compute

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"polyroots/internal/solver"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// flakySolver fails whenever the trailing coefficient is negative,
// otherwise returns one fixed root per polynomial.
type flakySolver struct {
	calls atomic.Uint64
}

func (f *flakySolver) Roots(coeffs []float64) ([]complex128, error) {
	f.calls.Add(1)
	if coeffs[len(coeffs)-1] < 0 {
		return nil, solver.ErrNoConvergence
	}
	return []complex128{complex(0.5, 0.5)}, nil
}

func TestCompute_FullAccounting(t *testing.T) {
	const degree = 8
	c := New(solver.NewCompanionSolver(), Config{Workers: 4})

	var calls uint64
	var last, lastTotal uint64
	res, err := c.Compute(context.Background(), degree, func(processed, total uint64) {
		calls++
		require.Greater(t, processed, last, "progress must advance")
		last = processed
		lastTotal = total
	})
	require.NoError(t, err)

	wantUnits := uint64(1) << degree
	assert.Equal(t, wantUnits, res.Units)
	assert.Equal(t, uint64(0), res.Failures)
	assert.True(t, res.Complete)
	assert.Len(t, res.Roots, degree*int(wantUnits),
		"collection length must be degree * 2^degree when all solves succeed")

	assert.Equal(t, wantUnits, calls, "one progress call per completed unit")
	assert.Equal(t, wantUnits, last)
	assert.Equal(t, wantUnits, lastTotal)
}

func TestCompute_FailuresIsolatedAndCounted(t *testing.T) {
	const degree = 6
	fs := &flakySolver{}
	c := New(fs, Config{Workers: 3})

	res, err := c.Compute(context.Background(), degree, nil)
	require.NoError(t, err)

	total := uint64(1) << degree
	assert.Equal(t, total, res.Units, "failed units still count as processed")
	assert.Equal(t, total, fs.calls.Load(), "every unit reaches the solver")
	// Exactly half of the ±1 patterns end in -1.
	assert.Equal(t, total/2, res.Failures)
	assert.Len(t, res.Roots, int(total/2), "failed solves contribute zero roots")
	assert.True(t, res.Complete)
}

func TestCompute_RejectsBadDegree(t *testing.T) {
	c := New(solver.NewCompanionSolver(), DefaultConfig())

	_, err := c.Compute(context.Background(), 0, nil)
	require.Error(t, err)

	_, err = c.Compute(context.Background(), 26, nil)
	require.Error(t, err)
}

func TestCompute_CancellationMarksIncomplete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(solver.NewCompanionSolver(), Config{Workers: 2})
	res, err := c.Compute(ctx, 10, nil)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res, "partial result must be returned on cancellation")
	assert.False(t, res.Complete)
	assert.Less(t, res.Units, uint64(1)<<10)
}

func TestCompute_DefaultWorkerCount(t *testing.T) {
	c := New(solver.NewCompanionSolver(), Config{Workers: 0})
	assert.Greater(t, c.workers, 0, "zero workers must fall back to hardware parallelism")
}
