// Package experiment drives the trials: deterministic splits, the regression
// battery over every representation, and the language model queries, all
// producing the same per-trial records.
package experiment

import (
	"math/rand"

	"github.com/chembench/molprop/pkg/errors"
)

// Split is one trial's partition of the molecule pool.
type Split struct {
	Trial int
	Test  []int
	Train []int
}

// NewSplit derives the partition for a trial. The generator is seeded with
// the trial index alone, so every model, representation and language model
// sees the identical split, and re-runs reproduce it exactly. Test and train
// come from one permutation, which makes them disjoint by construction.
func NewSplit(trial, poolSize, trainSize, testSize int) (Split, error) {
	if trial < 1 {
		return Split{}, errors.WithFields(
			errors.New(errors.InvalidInput, "trial index must be positive"),
			errors.Fields{"trial": trial})
	}
	if poolSize < trainSize+testSize {
		return Split{}, errors.WithFields(
			errors.New(errors.InvalidInput, "molecule pool too small for split"),
			errors.Fields{"pool": poolSize, "train": trainSize, "test": testSize})
	}

	rng := rand.New(rand.NewSource(int64(trial)))
	perm := rng.Perm(poolSize)

	s := Split{Trial: trial}
	s.Test = append(s.Test, perm[:testSize]...)
	s.Train = append(s.Train, perm[testSize:testSize+trainSize]...)
	return s, nil
}
