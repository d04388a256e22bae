// Package dataset loads the molecular property table used by the experiments.
// Records are keyed by SMILES; each task reads one numeric column, and the
// derived tasks are computed from another column at load time.
package dataset

import (
	"context"
	"math"
	"sort"

	"github.com/chembench/molprop/pkg/chem"
	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/logging"
)

// Record is one molecule with its parsed structure and every property
// column present in the source file.
type Record struct {
	SMILES     string
	Mol        *chem.Molecule
	Properties map[string]float64
}

// Dataset is the loaded, filtered molecule pool. Records keep file order so
// that index-based sampling is stable across runs.
type Dataset struct {
	Records []Record
	columns map[string]bool

	// Excluded counts SMILES dropped at load time because they failed to
	// parse. The same pool is used for every task, so exclusion is uniform.
	Excluded int
}

// Columns returns the numeric column names found in the source, sorted.
func (d *Dataset) Columns() []string {
	out := make([]string, 0, len(d.columns))
	for c := range d.columns {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// HasColumn reports whether every record carries the named property.
func (d *Dataset) HasColumn(name string) bool { return d.columns[name] }

// Len returns the number of usable molecules.
func (d *Dataset) Len() int { return len(d.Records) }

// Targets returns the target vector for a task, deriving values when the
// task is a function of another column.
func (d *Dataset) Targets(task config.Task) ([]float64, error) {
	col := task.Column
	if task.Derived() {
		col = task.DerivedFrom
	}
	if !d.HasColumn(col) {
		return nil, errors.WithFields(
			errors.New(errors.MissingColumn, "task column not present in dataset"),
			errors.Fields{"task": task.Key, "column": col})
	}

	y := make([]float64, len(d.Records))
	for i, r := range d.Records {
		v := r.Properties[col]
		if task.Derived() {
			v = config.LTMWSlope*v + config.LTMWIntercept
		}
		y[i] = v
	}
	return y, nil
}

// build filters raw rows into a Dataset: SMILES that fail to parse or rows
// with non-finite values are dropped, with a count kept for reporting.
func build(smiles []string, props []map[string]float64, columns []string) *Dataset {
	logger := logging.GetLogger()

	d := &Dataset{columns: map[string]bool{}}
	for _, c := range columns {
		d.columns[c] = true
	}

	for i, s := range smiles {
		mol, err := chem.ParseSMILES(s)
		if err != nil {
			logger.Warn(context.Background(), "excluding unparseable SMILES %q: %v", s, err)
			d.Excluded++
			continue
		}
		bad := false
		for _, v := range props[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				bad = true
				break
			}
		}
		if bad {
			logger.Warn(context.Background(), "excluding SMILES %q with non-finite property", s)
			d.Excluded++
			continue
		}
		d.Records = append(d.Records, Record{SMILES: s, Mol: mol, Properties: props[i]})
	}

	if d.Excluded > 0 {
		logger.Info(context.Background(), "dataset loaded: %d molecules, %d excluded", len(d.Records), d.Excluded)
	}
	return d
}
