package solver

import (
	"math"
	"math/cmplx"
)

// Machine epsilon for float64, used as the deflation threshold.
const eps = 2.220446049250313e-16

// companion builds the first-row companion matrix of a monic polynomial.
// The matrix is upper Hessenberg: row zero carries the negated coefficients
// and the subdiagonal is all ones.
func companion(monic []float64) [][]complex128 {
	n := len(monic) - 1
	h := make([][]complex128, n)
	for i := range h {
		h[i] = make([]complex128, n)
	}
	for j := 0; j < n; j++ {
		h[0][j] = complex(-monic[j+1], 0)
	}
	for i := 1; i < n; i++ {
		h[i][i-1] = 1
	}
	return h
}

// balance applies the Parlett-Reinsch diagonal scaling so that row and
// column norms match in magnitude. Powers of the radix keep the scaling
// exact in floating point; eigenvalues are unchanged.
func balance(h [][]complex128) {
	const radix = 2.0
	const sqrdx = radix * radix

	n := len(h)
	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			c, r := 0.0, 0.0
			for j := 0; j < n; j++ {
				if j != i {
					c += cmplx.Abs(h[j][i])
					r += cmplx.Abs(h[i][j])
				}
			}
			if c == 0 || r == 0 {
				continue
			}

			g := r / radix
			f := 1.0
			s := c + r
			for c < g {
				f *= radix
				c *= sqrdx
			}
			g = r * radix
			for c > g {
				f /= radix
				c /= sqrdx
			}

			if (c+r)/f < 0.95*s {
				changed = true
				inv := 1 / f
				for j := 0; j < n; j++ {
					h[i][j] *= complex(inv, 0)
				}
				for j := 0; j < n; j++ {
					h[j][i] *= complex(f, 0)
				}
			}
		}
	}
}

// hessenbergQR runs an explicit single-shift QR iteration with Givens
// rotations on an upper Hessenberg matrix and returns its eigenvalues.
// maxIter bounds the iterations spent per eigenvalue before giving up.
func hessenbergQR(h [][]complex128, maxIter int) ([]complex128, error) {
	n := len(h)
	eig := make([]complex128, 0, n)

	cs := make([]float64, n)
	ss := make([]complex128, n)

	hi := n - 1
	iters := 0
	for hi >= 0 {
		if hi == 0 {
			eig = append(eig, h[0][0])
			break
		}

		// Look for a negligible subdiagonal entry; the block below the
		// split is the active one.
		l := 0
		for m := hi; m >= 1; m-- {
			small := eps * (cmplx.Abs(h[m-1][m-1]) + cmplx.Abs(h[m][m]))
			if cmplx.Abs(h[m][m-1]) <= small {
				h[m][m-1] = 0
				l = m
				break
			}
		}

		if l == hi {
			eig = append(eig, h[hi][hi])
			hi--
			iters = 0
			continue
		}
		if l == hi-1 {
			r1, r2 := eig2x2(h[hi-1][hi-1], h[hi-1][hi], h[hi][hi-1], h[hi][hi])
			eig = append(eig, r1, r2)
			hi -= 2
			iters = 0
			continue
		}

		iters++
		if iters > maxIter {
			return nil, ErrNoConvergence
		}

		// Wilkinson shift: trailing 2x2 eigenvalue closest to the corner.
		// Every tenth iteration use an ad hoc shift to break limit cycles.
		var shift complex128
		if iters%10 == 0 {
			shift = h[hi][hi] + complex(0.75*cmplx.Abs(h[hi][hi-1]), 0)
		} else {
			a, b := h[hi-1][hi-1], h[hi-1][hi]
			c, d := h[hi][hi-1], h[hi][hi]
			p := (a - d) / 2
			q := cmplx.Sqrt(p*p + b*c)
			if cmplx.Abs(p+q) < cmplx.Abs(p-q) {
				shift = d + p + q
			} else {
				shift = d + p - q
			}
		}

		qrStep(h, l, hi, shift, cs, ss)
	}

	return eig, nil
}

// qrStep performs one explicit-shift QR sweep on the block [l,hi]:
// factor H-sI with a chain of Givens rotations, then form RQ+sI.
func qrStep(h [][]complex128, l, hi int, shift complex128, cs []float64, ss []complex128) {
	for i := l; i <= hi; i++ {
		h[i][i] -= shift
	}

	// Left rotations zero the subdiagonal.
	for k := l; k < hi; k++ {
		c, s := givens(h[k][k], h[k+1][k])
		cs[k], ss[k] = c, s
		for j := k; j <= hi; j++ {
			t1, t2 := h[k][j], h[k+1][j]
			h[k][j] = complex(c, 0)*t1 + s*t2
			h[k+1][j] = -cmplx.Conj(s)*t1 + complex(c, 0)*t2
		}
		h[k+1][k] = 0
	}

	// Right multiplication by the adjoints restores Hessenberg form.
	for k := l; k < hi; k++ {
		c, s := cs[k], ss[k]
		for i := l; i <= k+1; i++ {
			t1, t2 := h[i][k], h[i][k+1]
			h[i][k] = complex(c, 0)*t1 + cmplx.Conj(s)*t2
			h[i][k+1] = -s*t1 + complex(c, 0)*t2
		}
	}

	for i := l; i <= hi; i++ {
		h[i][i] += shift
	}
}

// givens returns the rotation [[c, s], [-conj(s), c]] with real c that
// maps (a, b) to (r, 0).
func givens(a, b complex128) (float64, complex128) {
	if b == 0 {
		return 1, 0
	}
	na := cmplx.Abs(a)
	if na == 0 {
		return 0, 1
	}
	r := math.Hypot(na, cmplx.Abs(b))
	c := na / r
	s := (a / complex(na, 0)) * cmplx.Conj(b) / complex(r, 0)
	return c, s
}

// eig2x2 returns the eigenvalues of [[a, b], [c, d]].
func eig2x2(a, b, c, d complex128) (complex128, complex128) {
	mid := (a + d) / 2
	q := cmplx.Sqrt((a-d)*(a-d)/4 + b*c)
	return mid + q, mid - q
}
