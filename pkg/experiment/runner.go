package experiment

import (
	"context"

	"github.com/YuminosukeSato/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"

	"github.com/chembench/molprop/pkg/chem"
	"github.com/chembench/molprop/pkg/chem/fingerprint"
	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/dataset"
	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/logging"
	"github.com/chembench/molprop/pkg/models"
	"github.com/chembench/molprop/pkg/results"
)

// Runner executes the regression battery for one dataset.
type Runner struct {
	cfg   *config.Config
	ds    *dataset.Dataset
	runID string

	// FitFailures counts fit or predict errors per model name across the
	// whole run, for the final report.
	FitFailures map[string]int
}

func NewRunner(cfg *config.Config, ds *dataset.Dataset, runID string) *Runner {
	return &Runner{cfg: cfg, ds: ds, runID: runID, FitFailures: map[string]int{}}
}

// RunTask runs every registered model on one task and representation over
// all configured trials. A model failure is recorded and counted but never
// aborts the remaining work.
func (r *Runner) RunTask(ctx context.Context, task config.Task, reprName string) ([]results.TrialRecord, error) {
	logger := logging.GetLogger()

	y, err := r.ds.Targets(task)
	if err != nil {
		return nil, err
	}

	fp, err := fingerprint.ForName(reprName)
	if err != nil {
		return nil, err
	}
	cache := fingerprint.NewCache(fp)

	full := cache.Matrix(molecules(r.ds))
	_, dim := full.Dims()

	modelNames := models.Names()
	records := make([]results.TrialRecord, 0, r.cfg.Experiment.Trials*len(modelNames))

	for trial := 1; trial <= r.cfg.Experiment.Trials; trial++ {
		if err := errors.CheckContext(ctx, "regression battery"); err != nil {
			return records, err
		}
		tctx := logging.WithScope(ctx, logging.Scope{
			Task:           task.Key,
			Representation: reprName,
			Trial:          trial,
		})

		split, err := NewSplit(trial, r.ds.Len(), r.cfg.Experiment.TrainSize, r.cfg.Experiment.TestSize)
		if err != nil {
			return records, err
		}

		xTrain := pickRows(full, split.Train, dim)
		xTest := pickRows(full, split.Test, dim)
		yTrain := pickValues(y, split.Train)

		scaler := preprocessing.NewStandardScaler(true, true)
		if err := scaler.Fit(xTrain); err != nil {
			return records, errors.Wrap(err, errors.ModelFitFailed, "feature scaling failed")
		}
		xTrainStd, err := scaledDense(scaler, xTrain)
		if err != nil {
			return records, err
		}
		xTestStd, err := scaledDense(scaler, xTest)
		if err != nil {
			return records, err
		}

		testIdx := split.Test[0]
		truth := y[testIdx]
		smiles := r.ds.Records[testIdx].SMILES

		for _, name := range modelNames {
			rec := results.TrialRecord{
				RunID:          r.runID,
				Task:           task.Key,
				Representation: reprName,
				Method:         name,
				Trial:          trial,
				SMILES:         smiles,
				TrueValue:      truth,
			}

			pred, err := r.fitPredict(name, trial, xTrainStd, yTrain, xTestStd)
			if err != nil {
				logger.Warn(tctx, "model %s failed: %v", name, err)
				r.FitFailures[name]++
				rec.FailReason = err.Error()
			} else {
				rec.Predicted = pred
				rec.OK = true
			}
			records = append(records, rec)
		}

		if trial%10 == 0 {
			logger.Info(tctx, "completed trial %d/%d", trial, r.cfg.Experiment.Trials)
		}
	}
	return records, nil
}

func (r *Runner) fitPredict(name string, trial int, xTrain *mat.Dense, yTrain []float64, xTest *mat.Dense) (float64, error) {
	est, err := models.New(name, models.Options{RandomState: int64(trial)})
	if err != nil {
		return 0, err
	}
	if err := est.Fit(xTrain, yTrain); err != nil {
		return 0, err
	}
	pred, err := est.Predict(xTest)
	if err != nil {
		return 0, err
	}
	if len(pred) == 0 {
		return 0, errors.New(errors.InvalidResponse, "empty prediction")
	}
	return pred[0], nil
}

func scaledDense(scaler *preprocessing.StandardScaler, X *mat.Dense) (*mat.Dense, error) {
	out, err := scaler.Transform(X)
	if err != nil {
		return nil, errors.Wrap(err, errors.ModelFitFailed, "feature transform failed")
	}
	return mat.DenseCopyOf(out), nil
}

func molecules(ds *dataset.Dataset) []*chem.Molecule {
	out := make([]*chem.Molecule, len(ds.Records))
	for i := range ds.Records {
		out[i] = ds.Records[i].Mol
	}
	return out
}

func pickRows(full *mat.Dense, idx []int, dim int) *mat.Dense {
	out := mat.NewDense(len(idx), dim, nil)
	for i, srcRow := range idx {
		out.SetRow(i, full.RawRowView(srcRow))
	}
	return out
}

func pickValues(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, src := range idx {
		out[i] = y[src]
	}
	return out
}
