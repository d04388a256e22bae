package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/errors"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sample = `Compound ID,SMILES,Molecular Weight,LogP,TPSA
ethanol,CCO,46.07,-0.31,20.23
benzene,c1ccccc1,78.11,1.69,0.0
broken,C1CC,0.0,0.0,0.0
acetic acid,CC(=O)O,60.05,0.09,37.3
`

func TestLoadCSV(t *testing.T) {
	ds, err := LoadCSV(writeCSV(t, sample), "SMILES")
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 1, ds.Excluded)
	assert.True(t, ds.HasColumn("LogP"))
	assert.True(t, ds.HasColumn("Molecular Weight"))
	assert.False(t, ds.HasColumn("Compound ID"))
	assert.Equal(t, "CCO", ds.Records[0].SMILES)
	assert.InDelta(t, -0.31, ds.Records[0].Properties["LogP"], 1e-9)
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"), "SMILES")
	require.Error(t, err)
	assert.Equal(t, errors.ConfigurationError, errors.CodeOf(err))
}

func TestLoadCSVMissingSMILESColumn(t *testing.T) {
	_, err := LoadCSV(writeCSV(t, sample), "structure")
	require.Error(t, err)
	assert.Equal(t, errors.MissingColumn, errors.CodeOf(err))
}

func TestTargets(t *testing.T) {
	ds, err := LoadCSV(writeCSV(t, sample), "SMILES")
	require.NoError(t, err)

	logp, err := ds.Targets(config.Task{Key: "logp", Column: "LogP"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.31, 1.69, 0.09}, logp, 1e-9)

	_, err = ds.Targets(config.Task{Key: "bj", Column: "BJ"})
	require.Error(t, err)
	assert.Equal(t, errors.MissingColumn, errors.CodeOf(err))
}

func TestTargetsDerived(t *testing.T) {
	ds, err := LoadCSV(writeCSV(t, sample), "SMILES")
	require.NoError(t, err)

	task, ok := config.TaskByKey("ltmw")
	require.True(t, ok)
	y, err := ds.Targets(task)
	require.NoError(t, err)

	for i, r := range ds.Records {
		want := config.LTMWSlope*r.Properties["Molecular Weight"] + config.LTMWIntercept
		assert.InDelta(t, want, y[i], 1e-9)
	}
}

func TestLoadDispatch(t *testing.T) {
	ds, err := Load(context.Background(), writeCSV(t, sample), "SMILES")
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}
