package results

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chembench/molprop/pkg/errors"
)

var summaryHeader = []string{
	"task", "representation", "method",
	"mean_mae", "std_mae", "median_mae",
	"r2", "r2_defined", "rank", "trials", "failures",
}

// WriteSummaryCSV writes summaries in report order.
func WriteSummaryCSV(path string, summaries []Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.ConfigurationError, "cannot create summary directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ConfigurationError, "cannot create summary file")
	}
	defer f.Close()

	rows := append([]Summary(nil), summaries...)
	SortForReport(rows)

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeader); err != nil {
		return errors.Wrap(err, errors.Unknown, "write failed")
	}
	for _, s := range rows {
		record := []string{
			s.Task, s.Representation, s.Method,
			formatFloat(s.MeanMAE), formatFloat(s.StdMAE), formatFloat(s.MedianMAE),
			formatFloat(s.R2), strconv.FormatBool(s.R2Defined),
			strconv.Itoa(s.Rank), strconv.Itoa(s.Trials), strconv.Itoa(s.Failures),
		}
		if err := w.Write(record); err != nil {
			return errors.Wrap(err, errors.Unknown, "write failed")
		}
	}
	w.Flush()
	return w.Error()
}

// ReadSummaryCSV loads a summary file written by WriteSummaryCSV.
func ReadSummaryCSV(path string) ([]Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ConfigurationError, "cannot open summary file")
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "malformed summary file")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]Summary, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(summaryHeader) {
			return nil, errors.New(errors.InvalidInput, "unexpected summary column count")
		}
		s := Summary{Task: row[0], Representation: row[1], Method: row[2]}
		s.MeanMAE = parseFloat(row[3])
		s.StdMAE = parseFloat(row[4])
		s.MedianMAE = parseFloat(row[5])
		s.R2 = parseFloat(row[6])
		s.R2Defined, _ = strconv.ParseBool(row[7])
		s.Rank, _ = strconv.Atoi(row[8])
		s.Trials, _ = strconv.Atoi(row[9])
		s.Failures, _ = strconv.Atoi(row[10])
		out = append(out, s)
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
