package models

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

func init() {
	Register("MeanBaseline", func(Options) Estimator { return &MeanBaseline{} })
	Register("RandomBaseline", func(o Options) Estimator {
		return &RandomBaseline{rng: rand.New(rand.NewSource(o.RandomState))}
	})
	Register("LastValueBaseline", func(Options) Estimator { return &LastValueBaseline{} })
}

// MeanBaseline predicts the training mean regardless of input. Any model
// worth running should beat it.
type MeanBaseline struct {
	mean   float64
	fitted bool
}

func (m *MeanBaseline) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	m.mean = 0
	for _, v := range y {
		m.mean += v
	}
	m.mean /= float64(len(y))
	m.fitted = true
	return nil
}

func (m *MeanBaseline) Predict(X *mat.Dense) ([]float64, error) {
	if !m.fitted {
		return nil, notFitted()
	}
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = m.mean
	}
	return out, nil
}

// RandomBaseline draws uniformly from the training target range.
type RandomBaseline struct {
	rng    *rand.Rand
	lo, hi float64
	fitted bool
}

func (r *RandomBaseline) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	r.lo, r.hi = y[0], y[0]
	for _, v := range y[1:] {
		if v < r.lo {
			r.lo = v
		}
		if v > r.hi {
			r.hi = v
		}
	}
	r.fitted = true
	return nil
}

func (r *RandomBaseline) Predict(X *mat.Dense) ([]float64, error) {
	if !r.fitted {
		return nil, notFitted()
	}
	rows, _ := X.Dims()
	out := make([]float64, rows)
	for i := range out {
		out[i] = r.lo + r.rng.Float64()*(r.hi-r.lo)
	}
	return out, nil
}

// LastValueBaseline predicts the last training target, the degenerate
// "carry forward" reference.
type LastValueBaseline struct {
	last   float64
	fitted bool
}

func (l *LastValueBaseline) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	l.last = y[len(y)-1]
	l.fitted = true
	return nil
}

func (l *LastValueBaseline) Predict(X *mat.Dense) ([]float64, error) {
	if !l.fitted {
		return nil, notFitted()
	}
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = l.last
	}
	return out, nil
}
