package models

import (
	"github.com/YuminosukeSato/scigo/sklearn/lightgbm"
	"gonum.org/v1/gonum/mat"

	"github.com/chembench/molprop/pkg/errors"
)

func init() {
	Register("LightGBM", func(o Options) Estimator {
		return &LightGBM{seed: int(o.RandomState)}
	})
}

// LightGBM adapts the scigo gradient boosting implementation to the
// Estimator contract. It fills the boosted-tree-library slot in the battery
// alongside the hand-rolled GradientBoosting stages.
type LightGBM struct {
	seed int
	reg  *lightgbm.LGBMRegressor
}

func (l *LightGBM) Fit(X *mat.Dense, y []float64) error {
	if err := checkFit(X, y); err != nil {
		return err
	}
	l.reg = lightgbm.NewLGBMRegressor().
		WithRandomState(l.seed).
		WithDeterministic(true)

	yv := mat.NewVecDense(len(y), y)
	if err := l.reg.Fit(X, yv); err != nil {
		return errors.Wrap(err, errors.ModelFitFailed, "lightgbm fit failed")
	}
	return nil
}

func (l *LightGBM) Predict(X *mat.Dense) ([]float64, error) {
	if l.reg == nil {
		return nil, notFitted()
	}
	pred, err := l.reg.Predict(X)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidResponse, "lightgbm predict failed")
	}
	r, _ := pred.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = pred.At(i, 0)
	}
	return out, nil
}
