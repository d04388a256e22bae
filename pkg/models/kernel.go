package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/chembench/molprop/pkg/errors"
)

func init() {
	Register("KernelRidge", func(Options) Estimator { return &KernelRidge{Alpha: 1.0} })
	Register("SVR", func(Options) Estimator {
		return &SVR{C: 1.0, Epsilon: 0.1, MaxIter: 2000, LearningRate: 0.01}
	})
}

// rbfGamma is the "scale" heuristic: 1 / (features * variance of X).
func rbfGamma(X *mat.Dense) float64 {
	r, c := X.Dims()
	var sum, sq float64
	n := float64(r * c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			sum += v
			sq += v * v
		}
	}
	variance := sq/n - (sum/n)*(sum/n)
	if variance <= 0 {
		return 1.0 / float64(c)
	}
	return 1.0 / (float64(c) * variance)
}

func rbfKernel(a, b []float64, gamma float64) float64 {
	var d float64
	for j := range a {
		diff := a[j] - b[j]
		d += diff * diff
	}
	return math.Exp(-gamma * d)
}

// gramRBF builds the symmetric train kernel matrix.
func gramRBF(X *mat.Dense, gamma float64) *mat.SymDense {
	n, _ := X.Dims()
	K := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			K.SetSym(i, j, rbfKernel(X.RawRowView(i), X.RawRowView(j), gamma))
		}
	}
	return K
}

// KernelRidge is ridge regression in RBF kernel space, solved in closed
// form: (K + αI) β = y.
type KernelRidge struct {
	Alpha float64

	gamma float64
	x     *mat.Dense
	beta  []float64
}

func (kr *KernelRidge) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	n := len(y)
	kr.gamma = rbfGamma(X)
	kr.x = mat.DenseCopyOf(X)

	K := gramRBF(X, kr.gamma)
	for i := 0; i < n; i++ {
		K.SetSym(i, i, K.At(i, i)+kr.Alpha)
	}

	var chol mat.Cholesky
	if !chol.Factorize(K) {
		return errors.New(errors.ModelFitFailed, "kernel system is not positive definite")
	}
	beta := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(beta, mat.NewVecDense(n, y)); err != nil {
		return errors.Wrap(err, errors.ModelFitFailed, "kernel ridge solve failed")
	}
	kr.beta = beta.RawVector().Data
	return nil
}

func (kr *KernelRidge) Predict(X *mat.Dense) ([]float64, error) {
	if kr.beta == nil {
		return nil, notFitted()
	}
	r, _ := X.Dims()
	n, _ := kr.x.Dims()
	out := make([]float64, r)
	for q := 0; q < r; q++ {
		var s float64
		for i := 0; i < n; i++ {
			s += kr.beta[i] * rbfKernel(X.RawRowView(q), kr.x.RawRowView(i), kr.gamma)
		}
		out[q] = s
	}
	return out, nil
}

// SVR is epsilon-insensitive support vector regression with an RBF kernel,
// trained by projected subgradient descent on the dual coefficients. The
// tiny training sets here make the simple solver adequate.
type SVR struct {
	C            float64
	Epsilon      float64
	MaxIter      int
	LearningRate float64

	gamma float64
	x     *mat.Dense
	beta  []float64
	b     float64
}

func (s *SVR) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	n := len(y)
	s.gamma = rbfGamma(X)
	s.x = mat.DenseCopyOf(X)

	K := gramRBF(X, s.gamma)
	beta := make([]float64, n)
	s.b = 0
	for _, v := range y {
		s.b += v
	}
	s.b /= float64(n)

	f := make([]float64, n)
	for iter := 0; iter < s.MaxIter; iter++ {
		for i := 0; i < n; i++ {
			f[i] = s.b
			for j := 0; j < n; j++ {
				f[i] += beta[j] * K.At(i, j)
			}
		}

		var active int
		var gradB float64
		for i := 0; i < n; i++ {
			resid := f[i] - y[i]
			if math.Abs(resid) <= s.Epsilon {
				continue
			}
			active++
			sign := 1.0
			if resid < 0 {
				sign = -1.0
			}
			gradB += sign
			// Subgradient of the hinge plus the regularizer K β.
			beta[i] -= s.LearningRate * (sign + beta[i]/s.C)
			if beta[i] > s.C {
				beta[i] = s.C
			} else if beta[i] < -s.C {
				beta[i] = -s.C
			}
		}
		s.b -= s.LearningRate * gradB / float64(n)
		if active == 0 {
			break
		}
	}

	s.beta = beta
	return nil
}

func (s *SVR) Predict(X *mat.Dense) ([]float64, error) {
	if s.beta == nil {
		return nil, notFitted()
	}
	r, _ := X.Dims()
	n, _ := s.x.Dims()
	out := make([]float64, r)
	for q := 0; q < r; q++ {
		v := s.b
		for i := 0; i < n; i++ {
			v += s.beta[i] * rbfKernel(X.RawRowView(q), s.x.RawRowView(i), s.gamma)
		}
		out[q] = v
	}
	return out, nil
}
