// Package plot renders the aggregated results as horizontal bar charts, one
// bar per method, ordered by rank.
package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chembench/molprop/pkg/errors"
	"github.com/chembench/molprop/pkg/results"
)

// MAEBarChart draws mean MAE per method for one task and representation and
// saves it as PNG. Methods with no usable trials are omitted.
func MAEBarChart(path, task, representation string, summaries []results.Summary) error {
	var rows []results.Summary
	for _, s := range summaries {
		if s.Task != task || s.Representation != representation {
			continue
		}
		if s.Trials == s.Failures {
			continue
		}
		rows = append(rows, s)
	}
	if len(rows) == 0 {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "no summaries to plot"),
			errors.Fields{"task": task, "representation": representation})
	}
	// Best method on top: descending rank so rank 1 lands at the top bar.
	sort.Slice(rows, func(a, b int) bool { return rows[a].Rank > rows[b].Rank })

	p := plot.New()
	p.Title.Text = chartTitle(task, representation)
	p.X.Label.Text = "Mean absolute error"

	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, s := range rows {
		values[i] = s.MeanMAE
		names[i] = s.Method
	}

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return errors.Wrap(err, errors.Unknown, "cannot build bar chart")
	}
	bars.Horizontal = true
	p.Add(bars)
	p.NominalY(names...)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.ConfigurationError, "cannot create plot directory")
		}
	}
	height := vg.Points(float64(20*len(rows) + 80))
	if err := p.Save(6*vg.Inch, height, path); err != nil {
		return errors.Wrap(err, errors.Unknown, "cannot save plot")
	}
	return nil
}

func chartTitle(task, representation string) string {
	if representation == "" {
		return fmt.Sprintf("Task %s", task)
	}
	return fmt.Sprintf("Task %s (%s)", task, representation)
}
