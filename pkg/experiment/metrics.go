package experiment

import (
	"github.com/YuminosukeSato/scigo/metrics"
	"gonum.org/v1/gonum/mat"

	"github.com/chembench/molprop/pkg/errors"
)

// MAE is the mean absolute error over paired slices.
func MAE(truth, pred []float64) (float64, error) {
	if len(truth) == 0 || len(truth) != len(pred) {
		return 0, errors.WithFields(
			errors.New(errors.InvalidInput, "mismatched metric inputs"),
			errors.Fields{"truth": len(truth), "pred": len(pred)})
	}
	v, err := metrics.MAE(
		mat.NewVecDense(len(truth), truth),
		mat.NewVecDense(len(pred), pred))
	if err != nil {
		return 0, errors.Wrap(err, errors.InvalidInput, "MAE failed")
	}
	return v, nil
}

// PooledR2 computes R² over the pooled (truth, prediction) pairs of a whole
// run. When the truths carry no variance the metric is undefined and the
// error carries the UndefinedMetric code; callers flag and move on.
func PooledR2(truth, pred []float64) (float64, error) {
	if len(truth) == 0 || len(truth) != len(pred) {
		return 0, errors.WithFields(
			errors.New(errors.InvalidInput, "mismatched metric inputs"),
			errors.Fields{"truth": len(truth), "pred": len(pred)})
	}
	v, err := metrics.R2Score(
		mat.NewVecDense(len(truth), truth),
		mat.NewVecDense(len(pred), pred))
	if err != nil {
		return 0, errors.Wrap(err, errors.UndefinedMetric, "R2 undefined")
	}
	return v, nil
}
