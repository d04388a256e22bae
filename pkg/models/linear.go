package models

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/chembench/molprop/pkg/errors"
)

func init() {
	Register("Linear", func(Options) Estimator { return &LinearRegression{} })
	Register("Ridge", func(Options) Estimator { return &Ridge{Alpha: 1.0} })
	Register("Lasso", func(Options) Estimator {
		return &CoordinateDescent{Alpha: 1.0, L1Ratio: 1.0, MaxIter: 1000, Tol: 1e-4}
	})
	Register("ElasticNet", func(Options) Estimator {
		return &CoordinateDescent{Alpha: 1.0, L1Ratio: 0.5, MaxIter: 1000, Tol: 1e-4}
	})
}

// centered subtracts the column means of X and the mean of y, remembering
// both so predictions can add the intercept back. All the linear models fit
// the intercept this way rather than via an explicit ones column.
type centered struct {
	xMean []float64
	yMean float64
}

func (c *centered) center(X *mat.Dense, y []float64) (*mat.Dense, []float64) {
	r, cols := X.Dims()
	c.xMean = make([]float64, cols)
	for j := 0; j < cols; j++ {
		var s float64
		for i := 0; i < r; i++ {
			s += X.At(i, j)
		}
		c.xMean[j] = s / float64(r)
	}
	c.yMean = 0
	for _, v := range y {
		c.yMean += v
	}
	c.yMean /= float64(r)

	Xc := mat.NewDense(r, cols, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			Xc.Set(i, j, X.At(i, j)-c.xMean[j])
		}
	}
	yc := make([]float64, r)
	for i, v := range y {
		yc[i] = v - c.yMean
	}
	return Xc, yc
}

func (c *centered) intercept(coef []float64) float64 {
	b := c.yMean
	for j, m := range c.xMean {
		b -= coef[j] * m
	}
	return b
}

func linearPredict(X *mat.Dense, coef []float64, intercept float64) []float64 {
	r, _ := X.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		s := intercept
		for j, w := range coef {
			s += X.At(i, j) * w
		}
		out[i] = s
	}
	return out
}

// LinearRegression is ordinary least squares. With more features than
// samples the system is underdetermined; the SVD picks the minimum-norm
// solution, matching the usual least-squares convention.
type LinearRegression struct {
	centered
	coef []float64
	b    float64
}

func (l *LinearRegression) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	Xc, yc := l.center(X, y)
	r, cols := Xc.Dims()

	var svd mat.SVD
	if !svd.Factorize(Xc, mat.SVDThin) {
		return errors.New(errors.ModelFitFailed, "SVD did not converge")
	}
	rank := 0
	values := svd.Values(nil)
	if len(values) > 0 {
		tol := float64(max(r, cols)) * values[0] * 1e-15
		for _, s := range values {
			if s > tol {
				rank++
			}
		}
	}

	var sol mat.Dense
	svd.SolveTo(&sol, mat.NewDense(r, 1, yc), rank)

	l.coef = make([]float64, cols)
	mat.Col(l.coef, 0, &sol)
	l.b = l.intercept(l.coef)
	return nil
}

func (l *LinearRegression) Predict(X *mat.Dense) ([]float64, error) {
	if l.coef == nil {
		return nil, notFitted()
	}
	return linearPredict(X, l.coef, l.b), nil
}

// Ridge is L2-regularized least squares, solved in the dual so the cost
// scales with the sample count rather than the feature count.
type Ridge struct {
	Alpha float64

	centered
	coef []float64
	b    float64
}

func (r *Ridge) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	Xc, yc := r.center(X, y)
	n, cols := Xc.Dims()

	// Solve (X Xᵀ + αI) a = y, then w = Xᵀ a.
	gram := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var s float64
			for k := 0; k < cols; k++ {
				s += Xc.At(i, k) * Xc.At(j, k)
			}
			if i == j {
				s += r.Alpha
			}
			gram.SetSym(i, j, s)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(gram) {
		return errors.New(errors.ModelFitFailed, "ridge system is not positive definite")
	}
	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, mat.NewVecDense(n, yc)); err != nil {
		return errors.Wrap(err, errors.ModelFitFailed, "ridge solve failed")
	}

	r.coef = make([]float64, cols)
	for j := 0; j < cols; j++ {
		var s float64
		for i := 0; i < n; i++ {
			s += Xc.At(i, j) * alpha.AtVec(i)
		}
		r.coef[j] = s
	}
	r.b = r.intercept(r.coef)
	return nil
}

func (r *Ridge) Predict(X *mat.Dense) ([]float64, error) {
	if r.coef == nil {
		return nil, notFitted()
	}
	return linearPredict(X, r.coef, r.b), nil
}

// CoordinateDescent fits Lasso (L1Ratio 1) and ElasticNet by cyclic
// coordinate descent with soft thresholding.
type CoordinateDescent struct {
	Alpha   float64
	L1Ratio float64
	MaxIter int
	Tol     float64

	centered
	coef []float64
	b    float64
}

func (cd *CoordinateDescent) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	Xc, yc := cd.center(X, y)
	n, cols := Xc.Dims()

	l1 := cd.Alpha * cd.L1Ratio * float64(n)
	l2 := cd.Alpha * (1 - cd.L1Ratio) * float64(n)

	colNorm := make([]float64, cols)
	for j := 0; j < cols; j++ {
		var s float64
		for i := 0; i < n; i++ {
			v := Xc.At(i, j)
			s += v * v
		}
		colNorm[j] = s
	}

	w := make([]float64, cols)
	resid := make([]float64, n)
	copy(resid, yc)

	for iter := 0; iter < cd.MaxIter; iter++ {
		var maxDelta float64
		for j := 0; j < cols; j++ {
			if colNorm[j] == 0 {
				continue
			}
			// Partial residual correlation with feature j.
			var rho float64
			for i := 0; i < n; i++ {
				rho += Xc.At(i, j) * resid[i]
			}
			rho += colNorm[j] * w[j]

			newW := softThreshold(rho, l1) / (colNorm[j] + l2)
			if delta := newW - w[j]; delta != 0 {
				for i := 0; i < n; i++ {
					resid[i] -= delta * Xc.At(i, j)
				}
				if ad := math.Abs(delta); ad > maxDelta {
					maxDelta = ad
				}
				w[j] = newW
			}
		}
		if maxDelta < cd.Tol {
			break
		}
	}

	cd.coef = w
	cd.b = cd.intercept(w)
	return nil
}

func (cd *CoordinateDescent) Predict(X *mat.Dense) ([]float64, error) {
	if cd.coef == nil {
		return nil, notFitted()
	}
	return linearPredict(X, cd.coef, cd.b), nil
}

func softThreshold(x, t float64) float64 {
	switch {
	case x > t:
		return x - t
	case x < -t:
		return x + t
	default:
		return 0
	}
}
