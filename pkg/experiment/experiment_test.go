package experiment

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chembench/molprop/internal/testutil"
	"github.com/chembench/molprop/pkg/config"
	"github.com/chembench/molprop/pkg/core"
	"github.com/chembench/molprop/pkg/dataset"
	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/models"
	"github.com/chembench/molprop/pkg/prompt"
)

func TestNewSplitDeterministic(t *testing.T) {
	a, err := NewSplit(7, 100, 50, 1)
	require.NoError(t, err)
	b, err := NewSplit(7, 100, 50, 1)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewSplit(8, 100, 50, 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.Test, c.Test)
}

func TestNewSplitDisjoint(t *testing.T) {
	for trial := 1; trial <= 20; trial++ {
		s, err := NewSplit(trial, 60, 50, 1)
		require.NoError(t, err)
		assert.Len(t, s.Train, 50)
		assert.Len(t, s.Test, 1)

		seen := map[int]bool{s.Test[0]: true}
		for _, i := range s.Train {
			assert.False(t, seen[i], "trial %d reuses index %d", trial, i)
			seen[i] = true
		}
	}
}

func TestNewSplitValidation(t *testing.T) {
	_, err := NewSplit(0, 100, 50, 1)
	require.Error(t, err)

	_, err = NewSplit(1, 10, 50, 1)
	require.Error(t, err)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestMAEAgainstMeanBaseline(t *testing.T) {
	// Predicting the mean gives MAE equal to the mean absolute deviation.
	truth := []float64{1, 2, 3, 4, 10}
	mean := 4.0
	pred := []float64{mean, mean, mean, mean, mean}

	got, err := MAE(truth, pred)
	require.NoError(t, err)

	var mad float64
	for _, v := range truth {
		mad += math.Abs(v - mean)
	}
	mad /= float64(len(truth))
	assert.InDelta(t, mad, got, 1e-12)
}

func TestPooledR2Undefined(t *testing.T) {
	_, err := PooledR2([]float64{5, 5, 5}, []float64{4, 5, 6})
	require.Error(t, err)
	assert.Equal(t, errors.UndefinedMetric, errors.CodeOf(err))

	r2, err := PooledR2([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-12)
}

// testDataset builds a small pool of valid molecules with a linear target.
func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	smiles := []string{
		"C", "CC", "CCC", "CCCC", "CCCCC", "CCCCCC",
		"CO", "CCO", "CCCO", "CCN", "CCCN", "c1ccccc1",
	}
	content := "SMILES,LogP,Molecular Weight\n"
	for i, s := range smiles {
		content += fmt.Sprintf("%s,%f,%f\n", s, float64(i)*0.5, 16.0+12.0*float64(i))
	}
	path := filepath.Join(t.TempDir(), "mini.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := dataset.LoadCSV(path, "SMILES")
	require.NoError(t, err)
	require.Equal(t, len(smiles), ds.Len())
	return ds
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Experiment.Trials = 2
	cfg.Experiment.TrainSize = 8
	cfg.Experiment.TestSize = 1
	return cfg
}

func TestRunnerRunTask(t *testing.T) {
	if testing.Short() {
		t.Skip("trains the full battery")
	}
	ds := testDataset(t)
	cfg := testConfig(t)

	task, ok := config.TaskByKey("logp")
	require.True(t, ok)

	runner := NewRunner(cfg, ds, "test-run")
	records, err := runner.RunTask(context.Background(), task, "keys")
	require.NoError(t, err)

	names := models.Names()
	require.Len(t, records, cfg.Experiment.Trials*len(names))

	// Within a trial every model sees the same test molecule and truth.
	byTrial := map[int]string{}
	for _, r := range records {
		assert.Equal(t, "test-run", r.RunID)
		assert.Equal(t, "logp", r.Task)
		assert.Equal(t, "keys", r.Representation)
		if prev, seen := byTrial[r.Trial]; seen {
			assert.Equal(t, prev, r.SMILES)
		} else {
			byTrial[r.Trial] = r.SMILES
		}
	}

	// The deterministic baselines always produce a prediction.
	for _, r := range records {
		if r.Method == "MeanBaseline" || r.Method == "LastValueBaseline" {
			assert.True(t, r.OK, "trial %d", r.Trial)
		}
	}
}

func TestRunnerDeterministicAcrossRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("trains the full battery")
	}
	ds := testDataset(t)
	cfg := testConfig(t)
	cfg.Experiment.Trials = 1

	task, ok := config.TaskByKey("mw")
	require.True(t, ok)

	a, err := NewRunner(cfg, ds, "r").RunTask(context.Background(), task, "keys")
	require.NoError(t, err)
	b, err := NewRunner(cfg, ds, "r").RunTask(context.Background(), task, "keys")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func llmTestConfig(t *testing.T) *config.Config {
	cfg := testConfig(t)
	cfg.Output.ResponseDirs = map[string]string{
		"openai": filepath.Join(t.TempDir(), "gpt"),
	}
	return cfg
}

func TestLLMRunnerRunTask(t *testing.T) {
	ds := testDataset(t)
	cfg := llmTestConfig(t)

	task, ok := config.TaskByKey("logp")
	require.True(t, ok)

	llm := new(testutil.MockLLM)
	llm.On("ModelID").Return("gpt-4o")
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(&core.LLMResponse{Content: "The value is approximately 2.35."}, nil)

	runner := NewLLMRunner(cfg, ds, llm, "openai", "test-run")
	records, err := runner.RunTask(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, records, cfg.Experiment.Trials)

	for _, r := range records {
		assert.True(t, r.OK)
		assert.Equal(t, 2.35, r.Predicted)
		assert.Equal(t, "gpt-4o", r.Method)
		assert.Empty(t, r.Representation)
	}
	assert.Empty(t, runner.Missing)

	// Transcript parses back with matching trials and truths.
	entries, err := prompt.ReadTranscriptFile(runner.TranscriptPath(task))
	require.NoError(t, err)
	require.Len(t, entries, cfg.Experiment.Trials)
	for i, e := range entries {
		assert.Equal(t, records[i].Trial, e.Iteration)
		assert.Equal(t, records[i].SMILES, e.SMILES)
		assert.InDelta(t, records[i].TrueValue, e.TrueValue, 1e-9)
	}
}

func TestLLMRunnerUnparseable(t *testing.T) {
	ds := testDataset(t)
	cfg := llmTestConfig(t)

	task, ok := config.TaskByKey("logp")
	require.True(t, ok)

	llm := new(testutil.MockLLM)
	llm.On("ModelID").Return("gpt-4o")
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(&core.LLMResponse{Content: "I cannot determine this value."}, nil)

	runner := NewLLMRunner(cfg, ds, llm, "openai", "test-run")
	records, err := runner.RunTask(context.Background(), task)
	require.NoError(t, err)

	for _, r := range records {
		assert.False(t, r.OK)
		assert.Equal(t, "unparseable response", r.FailReason)
	}
	assert.Equal(t, cfg.Experiment.Trials, runner.Missing["logp"])
}

func TestLLMRunnerGenerationFailure(t *testing.T) {
	ds := testDataset(t)
	cfg := llmTestConfig(t)

	task, ok := config.TaskByKey("logp")
	require.True(t, ok)

	llm := new(testutil.MockLLM)
	llm.On("ModelID").Return("gpt-4o")
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.LLMTransientFailure, "backend unavailable"))

	runner := NewLLMRunner(cfg, ds, llm, "openai", "test-run")
	records, err := runner.RunTask(context.Background(), task)
	require.NoError(t, err)

	for _, r := range records {
		assert.False(t, r.OK)
	}

	// The transcript records the error in place of a reply.
	entries, err := prompt.ReadTranscriptFile(runner.TranscriptPath(task))
	require.NoError(t, err)
	for _, e := range entries {
		assert.Contains(t, e.Response, "Error:")
	}
}
