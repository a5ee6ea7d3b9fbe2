// Package solver finds the complex roots of real-coefficient polynomials.
// The method is the np.roots family: eigenvalues of the balanced companion
// matrix, computed by a shifted complex Hessenberg QR iteration. The ±1
// coefficient polynomials this project feeds it can have tightly clustered
// roots at higher degrees, which naive Newton iteration handles poorly.
package solver

import (
	"errors"
	"fmt"
	"math/cmplx"
)

var (
	// ErrBadCoefficients is returned for an empty coefficient slice or a
	// zero leading term.
	ErrBadCoefficients = errors.New("invalid polynomial coefficients")

	// ErrNoConvergence is returned when the QR iteration fails to deflate
	// an eigenvalue within the iteration budget. Callers count these; one
	// stubborn polynomial never aborts a batch.
	ErrNoConvergence = errors.New("eigenvalue iteration did not converge")
)

// Solver computes the complex roots, with multiplicity, of one polynomial.
// Implementations must be stateless and safe for concurrent use.
type Solver interface {
	// Roots takes coefficients ordered highest degree first and returns
	// the roots in no particular order. On failure the returned slice is
	// empty, never partial.
	Roots(coeffs []float64) ([]complex128, error)
}

// CompanionSolver solves via balanced companion-matrix eigenvalues.
type CompanionSolver struct {
	// maxIter is the QR iteration budget per eigenvalue.
	maxIter int
}

// NewCompanionSolver returns a solver with the standard iteration budget.
func NewCompanionSolver() *CompanionSolver {
	return &CompanionSolver{maxIter: 40}
}

// Roots implements Solver.
func (s *CompanionSolver) Roots(coeffs []float64) ([]complex128, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("%w: empty coefficient vector", ErrBadCoefficients)
	}
	if coeffs[0] == 0 {
		return nil, fmt.Errorf("%w: leading coefficient is zero", ErrBadCoefficients)
	}

	// Normalize to monic form.
	monic := make([]float64, len(coeffs))
	inv := 1 / coeffs[0]
	for i, c := range coeffs {
		monic[i] = c * inv
	}

	// Split off roots at the origin (trailing zero coefficients) so the
	// companion matrix stays nonsingular-friendly.
	var roots []complex128
	for len(monic) > 1 && monic[len(monic)-1] == 0 {
		roots = append(roots, 0)
		monic = monic[:len(monic)-1]
	}

	degree := len(monic) - 1
	switch degree {
	case 0:
		return roots, nil
	case 1:
		return append(roots, complex(-monic[1], 0)), nil
	case 2:
		r1, r2 := quadratic(monic[1], monic[2])
		return append(roots, r1, r2), nil
	}

	h := companion(monic)
	balance(h)
	eig, err := hessenbergQR(h, s.maxIter)
	if err != nil {
		return nil, err
	}
	return append(roots, eig...), nil
}

// quadratic solves x^2 + bx + c = 0 in closed form, avoiding cancellation
// by computing the larger-magnitude root first.
func quadratic(b, c float64) (complex128, complex128) {
	disc := cmplx.Sqrt(complex(b*b-4*c, 0))
	bb := complex(b, 0)
	var q complex128
	if b >= 0 {
		q = -(bb + disc) / 2
	} else {
		q = -(bb - disc) / 2
	}
	if q == 0 {
		return 0, 0
	}
	return q, complex(c, 0) / q
}
