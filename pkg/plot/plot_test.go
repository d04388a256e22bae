package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chembench/molprop/pkg/results"
)

func TestMAEBarChart(t *testing.T) {
	summaries := []results.Summary{
		{Task: "logp", Representation: "ecfp", Method: "Ridge", MeanMAE: 0.4, Rank: 1, Trials: 2},
		{Task: "logp", Representation: "ecfp", Method: "KNN", MeanMAE: 0.9, Rank: 2, Trials: 2},
		{Task: "logp", Representation: "ecfp", Method: "Broken", Trials: 2, Failures: 2, Rank: 3},
		{Task: "mw", Representation: "ecfp", Method: "Ridge", MeanMAE: 5, Rank: 1, Trials: 2},
	}

	path := filepath.Join(t.TempDir(), "plots", "logp.png")
	require.NoError(t, MAEBarChart(path, "logp", "ecfp", summaries))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestMAEBarChartEmpty(t *testing.T) {
	err := MAEBarChart(filepath.Join(t.TempDir(), "x.png"), "tpsa", "ecfp", nil)
	assert.Error(t, err)
}
