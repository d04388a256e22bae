package models

import (
	"gonum.org/v1/gonum/mat"
)

func init() {
	Register("Spline", func(Options) Estimator {
		return &Spline{Knots: 5, Degree: 3, Alpha: 1.0}
	})
}

// Spline expands every feature into a cubic B-spline basis over uniform
// knots on its training range, then fits ridge regression on the expanded
// matrix. The ridge step reuses the dual solver so the expansion width never
// enters the linear algebra.
type Spline struct {
	Knots  int
	Degree int
	Alpha  float64

	lo, hi []float64
	ridge  *Ridge
}

// basisPerFeature is n_knots + degree - 1 for a clamped uniform B-spline.
func (s *Spline) basisPerFeature() int { return s.Knots + s.Degree - 1 }

func (s *Spline) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	_, cols := X.Dims()
	r, _ := X.Dims()

	s.lo = make([]float64, cols)
	s.hi = make([]float64, cols)
	for j := 0; j < cols; j++ {
		lo, hi := X.At(0, j), X.At(0, j)
		for i := 1; i < r; i++ {
			v := X.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		s.lo[j], s.hi[j] = lo, hi
	}

	expanded := s.expand(X)
	s.ridge = &Ridge{Alpha: s.Alpha}
	return s.ridge.Fit(expanded, y)
}

func (s *Spline) Predict(X *mat.Dense) ([]float64, error) {
	if s.ridge == nil {
		return nil, notFitted()
	}
	return s.ridge.Predict(s.expand(X))
}

func (s *Spline) expand(X *mat.Dense) *mat.Dense {
	r, cols := X.Dims()
	width := s.basisPerFeature()
	out := mat.NewDense(r, cols*width, nil)

	basis := make([]float64, width)
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			s.evalBasis(X.At(i, j), s.lo[j], s.hi[j], basis)
			for k, v := range basis {
				out.Set(i, j*width+k, v)
			}
		}
	}
	return out
}

// evalBasis fills the clamped B-spline basis values at x via the Cox-de Boor
// recursion. Values outside the training range clamp to the boundary.
func (s *Spline) evalBasis(x, lo, hi float64, out []float64) {
	for k := range out {
		out[k] = 0
	}
	if hi <= lo {
		// Constant feature: all mass on the first basis function.
		out[0] = 1
		return
	}
	if x < lo {
		x = lo
	}
	if x > hi {
		x = hi
	}

	d := s.Degree
	nKnots := s.Knots
	// Clamped knot vector: degree+1 copies at each end, uniform interior.
	m := nKnots + 2*d
	knots := make([]float64, m)
	step := (hi - lo) / float64(nKnots-1)
	for i := 0; i < m; i++ {
		switch {
		case i < d:
			knots[i] = lo
		case i >= m-d:
			knots[i] = hi
		default:
			knots[i] = lo + float64(i-d)*step
		}
	}

	nBasis := len(out)
	work := make([]float64, m)
	// Degree 0: indicator of the knot span containing x.
	for i := 0; i < m-1; i++ {
		if (knots[i] <= x && x < knots[i+1]) || (x == hi && knots[i] < knots[i+1] && knots[i+1] == hi) {
			work[i] = 1
		}
	}
	for deg := 1; deg <= d; deg++ {
		for i := 0; i < m-deg-1; i++ {
			var left, right float64
			if den := knots[i+deg] - knots[i]; den > 0 {
				left = (x - knots[i]) / den * work[i]
			}
			if den := knots[i+deg+1] - knots[i+1]; den > 0 {
				right = (knots[i+deg+1] - x) / den * work[i+1]
			}
			work[i] = left + right
		}
	}
	copy(out, work[:nBasis])
}
