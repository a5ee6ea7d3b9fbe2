// Package poly enumerates the monic polynomials whose non-leading
// coefficients are restricted to {+1,-1}. For degree d there are exactly
// 2^d of them; the enumerator decodes an integer counter 0..2^d-1 into a
// sign pattern instead of materializing the combinations.
package poly

import (
	"errors"
	"fmt"
)

// Degree bounds. Above 25 the batch (degree * 2^degree roots) no longer
// fits a reasonable single-machine run.
const (
	MinDegree = 1
	MaxDegree = 25
)

// ErrDegreeRange is returned when a degree parameter is out of bounds.
// Checked before any computation starts.
var ErrDegreeRange = errors.New("polynomial degree out of range")

// ValidateDegree rejects degrees outside [MinDegree, MaxDegree].
func ValidateDegree(degree int) error {
	if degree < MinDegree || degree > MaxDegree {
		return fmt.Errorf("%w: degree must be in [%d,%d], got %d",
			ErrDegreeRange, MinDegree, MaxDegree, degree)
	}
	return nil
}

// CoefficientVector is an ordered list of polynomial coefficients,
// highest degree first. Vectors produced by the enumerator have length
// degree+1, a leading 1, and every remaining entry in {-1,+1}.
type CoefficientVector []float64

// Degree returns the polynomial degree encoded by the vector.
func (v CoefficientVector) Degree() int {
	return len(v) - 1
}

// Enumerator lazily produces every valid coefficient vector for a degree.
// Iteration order is deterministic (counter order), exhaustive, and free of
// duplicates. Memory per step is O(degree).
type Enumerator struct {
	degree int
	total  uint64
	next   uint64
}

// NewEnumerator creates an enumerator for the given degree.
func NewEnumerator(degree int) (*Enumerator, error) {
	if err := ValidateDegree(degree); err != nil {
		return nil, err
	}
	return &Enumerator{
		degree: degree,
		total:  uint64(1) << uint(degree),
	}, nil
}

// Total returns the number of vectors the enumerator will produce (2^degree).
func (e *Enumerator) Total() uint64 {
	return e.total
}

// Degree returns the degree this enumerator was built for.
func (e *Enumerator) Degree() int {
	return e.degree
}

// Next returns the next coefficient vector, or false when the sequence is
// exhausted. Each call allocates a fresh vector; callers may retain it.
func (e *Enumerator) Next() (CoefficientVector, bool) {
	if e.next >= e.total {
		return nil, false
	}
	v := decode(e.next, e.degree)
	e.next++
	return v, true
}

// Reset rewinds the enumerator to the start of the sequence.
func (e *Enumerator) Reset() {
	e.next = 0
}

// decode expands counter bits into a coefficient vector: bit j of the
// counter selects the sign of coefficient j+1 (0 -> -1, 1 -> +1).
func decode(counter uint64, degree int) CoefficientVector {
	v := make(CoefficientVector, degree+1)
	v[0] = 1
	for j := 0; j < degree; j++ {
		if (counter>>uint(j))&1 == 1 {
			v[j+1] = 1
		} else {
			v[j+1] = -1
		}
	}
	return v
}
