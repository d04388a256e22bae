// Package models provides the regression battery run against every molecular
// representation: linear families, tree ensembles, kernel methods, neural
// networks, and the reference baselines. Every estimator trains on a feature
// matrix with one row per molecule and predicts a single numeric property.
package models

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/chembench/molprop/pkg/errors"
)

// Estimator is the contract every model implements. Fit must be called
// before Predict; estimators are single-use and never shared across trials.
type Estimator interface {
	Fit(X *mat.Dense, y []float64) error
	Predict(X *mat.Dense) ([]float64, error)
}

// Options carries per-trial state into stochastic estimators. Deterministic
// estimators ignore it.
type Options struct {
	// RandomState seeds any internal randomness so that a trial is exactly
	// reproducible.
	RandomState int64
}

// Constructor builds a fresh estimator for one trial.
type Constructor func(opts Options) Estimator

var registry = map[string]Constructor{}
var order []string

// Register adds a named constructor. Called from init in the files defining
// each model family; duplicate names panic at startup.
func Register(name string, c Constructor) {
	if _, dup := registry[name]; dup {
		panic("models: duplicate registration of " + name)
	}
	registry[name] = c
	order = append(order, name)
}

// New builds the named estimator.
func New(name string, opts Options) (Estimator, error) {
	c, ok := registry[name]
	if !ok {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "unknown model"),
			errors.Fields{"model": name})
	}
	return c(opts), nil
}

// Names returns every registered model name in registration order.
func Names() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// NamesSorted returns the registered names alphabetically, for stable
// reporting independent of init order.
func NamesSorted() []string {
	out := Names()
	sort.Strings(out)
	return out
}

func checkFit(X *mat.Dense, y []float64) error {
	r, _ := X.Dims()
	if r == 0 {
		return errors.New(errors.ModelFitFailed, "empty training set")
	}
	if r != len(y) {
		return errors.WithFields(
			errors.New(errors.ModelFitFailed, "row count does not match target length"),
			errors.Fields{"rows": r, "targets": len(y)})
	}
	return nil
}

func notFitted() error {
	return errors.New(errors.InvalidInput, "estimator used before Fit")
}
