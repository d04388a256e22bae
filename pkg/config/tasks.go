package config

import (
	"github.com/chembench/molprop/pkg/errors"
)

// Linear-transform constants for the synthetic LTMW task. The target is
// a*MW + b, recomputed from the molecular-weight column at load time.
const (
	LTMWSlope     = 6.462356980390821
	LTMWIntercept = -162.75140504630065
)

// Task identifies one target molecular property.
type Task struct {
	// Key is the short identifier used in filenames and CLI filters.
	Key string

	// Column is the dataset column holding the target value.
	Column string

	// Description is the human-readable property name used in summaries.
	Description string

	// DerivedFrom, when non-empty, marks the target as a linear transform
	// (LTMWSlope*x + LTMWIntercept) of another column rather than a stored
	// column of its own.
	DerivedFrom string
}

// Derived reports whether the task target is computed instead of read.
func (t Task) Derived() bool { return t.DerivedFrom != "" }

// Tasks returns the nine fixed regression targets, in canonical order.
func Tasks() []Task {
	return []Task{
		{Key: "ltmw", Column: "aM_w+b", Description: "Linear transform of molecular weight", DerivedFrom: "Molecular Weight"},
		{Key: "logp", Column: "LogP", Description: "Octanol-water partition coefficient"},
		{Key: "sp3", Column: "sp3", Description: "Fraction of SP3 carbons"},
		{Key: "tpsa", Column: "TPSA", Description: "Topological polar surface area"},
		{Key: "mr", Column: "MolMR", Description: "Molecular refractivity"},
		{Key: "hka", Column: "HKA", Description: "Hall-Kier alpha"},
		{Key: "bj", Column: "BJ", Description: "Balaban J index"},
		{Key: "chi1v", Column: "Chi", Description: "Chi1v connectivity index"},
		{Key: "mw", Column: "Molecular Weight", Description: "Molecular weight"},
	}
}

// TaskByKey looks a task up by its short identifier.
func TaskByKey(key string) (Task, bool) {
	for _, t := range Tasks() {
		if t.Key == key {
			return t, true
		}
	}
	return Task{}, false
}

// SelectTasks resolves a CLI/ config task filter to the task list; an empty
// filter selects every task.
func SelectTasks(keys []string) ([]Task, error) {
	if len(keys) == 0 {
		return Tasks(), nil
	}
	out := make([]Task, 0, len(keys))
	for _, key := range keys {
		t, ok := TaskByKey(key)
		if !ok {
			return nil, errors.WithFields(
				errors.New(errors.ConfigurationError, "unknown task"),
				errors.Fields{"task": key})
		}
		out = append(out, t)
	}
	return out, nil
}
