package solver

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyroots/internal/poly"
)

// evalPoly evaluates the polynomial at z by Horner's method.
func evalPoly(coeffs []float64, z complex128) complex128 {
	acc := complex(0, 0)
	for _, c := range coeffs {
		acc = acc*z + complex(c, 0)
	}
	return acc
}

// assertRootSet checks that got matches want as a multiset within tol.
func assertRootSet(t *testing.T, want, got []complex128, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))

	used := make([]bool, len(got))
	for _, w := range want {
		found := false
		for i, g := range got {
			if !used[i] && cmplx.Abs(g-w) <= tol {
				used[i] = true
				found = true
				break
			}
		}
		assert.True(t, found, "no root matches %v (got %v)", w, got)
	}
}

func TestRoots_QuadraticPlusMinusTwo(t *testing.T) {
	s := NewCompanionSolver()
	roots, err := s.Roots([]float64{1, 0, -4})
	require.NoError(t, err)
	assertRootSet(t, []complex128{2, -2}, roots, 1e-6)
}

func TestRoots_QuadraticImaginary(t *testing.T) {
	s := NewCompanionSolver()
	roots, err := s.Roots([]float64{1, 0, 1})
	require.NoError(t, err)
	assertRootSet(t, []complex128{complex(0, 1), complex(0, -1)}, roots, 1e-6)
}

func TestRoots_CubicDistinct(t *testing.T) {
	s := NewCompanionSolver()
	roots, err := s.Roots([]float64{1, -6, 11, -6})
	require.NoError(t, err)
	assertRootSet(t, []complex128{1, 2, 3}, roots, 1e-6)
}

func TestRoots_Linear(t *testing.T) {
	s := NewCompanionSolver()
	roots, err := s.Roots([]float64{2, 4})
	require.NoError(t, err)
	assertRootSet(t, []complex128{-2}, roots, 1e-12)
}

func TestRoots_TrailingZerosSplitOff(t *testing.T) {
	// x^3 - x^2 = x^2 (x - 1)
	s := NewCompanionSolver()
	roots, err := s.Roots([]float64{1, -1, 0, 0})
	require.NoError(t, err)
	assertRootSet(t, []complex128{0, 0, 1}, roots, 1e-9)
}

func TestRoots_InvalidInput(t *testing.T) {
	s := NewCompanionSolver()

	_, err := s.Roots(nil)
	assert.ErrorIs(t, err, ErrBadCoefficients)

	_, err = s.Roots([]float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrBadCoefficients)
}

func TestRoots_HighDegreeResiduals(t *testing.T) {
	// Every ±1 polynomial of a moderate degree must produce a full root
	// set with small residuals.
	const degree = 8
	s := NewCompanionSolver()

	e, err := poly.NewEnumerator(degree)
	require.NoError(t, err)

	for {
		v, ok := e.Next()
		if !ok {
			break
		}
		roots, err := s.Roots(v)
		require.NoError(t, err, "coefficients %v", v)
		require.Len(t, roots, degree, "coefficients %v", v)

		for _, r := range roots {
			res := cmplx.Abs(evalPoly(v, r))
			assert.Less(t, res, 1e-6, "residual at root %v of %v", r, v)
		}
	}
}

func TestRoots_ClusteredWilkinson(t *testing.T) {
	// (x-1)(x-2)...(x-10) expanded; a classic ill-conditioned case for
	// naive iteration, fine for the balanced companion approach.
	coeffs := []float64{1, -55, 1320, -18150, 157773, -902055,
		3416930, -8409500, 12753576, -10628640, 3628800}

	s := NewCompanionSolver()
	roots, err := s.Roots(coeffs)
	require.NoError(t, err)
	require.Len(t, roots, 10)

	want := make([]complex128, 0, 10)
	for k := 1; k <= 10; k++ {
		want = append(want, complex(float64(k), 0))
	}
	// Root condition numbers for this polynomial amplify coefficient
	// rounding; 1e-3 is the realistic matching tolerance here.
	assertRootSet(t, want, roots, 1e-3)
}
