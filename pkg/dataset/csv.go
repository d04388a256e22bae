package dataset

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/chembench/molprop/pkg/errors"
)

// LoadCSV reads a delimited property table. The column named smilesColumn
// holds structures; every other column that parses as a number on each row
// becomes a property. Rows whose SMILES cannot be parsed are excluded.
func LoadCSV(path, smilesColumn string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.ConfigurationError, "cannot open dataset file"),
			errors.Fields{"path": path})
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "malformed CSV"),
			errors.Fields{"path": path})
	}
	if len(rows) < 2 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "dataset has no data rows"),
			errors.Fields{"path": path})
	}

	header := rows[0]
	smilesIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), smilesColumn) {
			smilesIdx = i
			break
		}
	}
	if smilesIdx < 0 {
		return nil, errors.WithFields(
			errors.New(errors.MissingColumn, "SMILES column not found"),
			errors.Fields{"path": path, "column": smilesColumn})
	}

	// A column is numeric if every non-empty cell parses as a float.
	numeric := make([]bool, len(header))
	for i := range header {
		if i == smilesIdx {
			continue
		}
		numeric[i] = true
		for _, row := range rows[1:] {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric[i] = false
				break
			}
		}
	}

	var columns []string
	for i, h := range header {
		if numeric[i] {
			columns = append(columns, strings.TrimSpace(h))
		}
	}

	var smiles []string
	var props []map[string]float64
	for _, row := range rows[1:] {
		if smilesIdx >= len(row) {
			continue
		}
		p := map[string]float64{}
		for i, h := range header {
			if !numeric[i] || i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			v, _ := strconv.ParseFloat(cell, 64)
			p[strings.TrimSpace(h)] = v
		}
		smiles = append(smiles, strings.TrimSpace(row[smilesIdx]))
		props = append(props, p)
	}

	return build(smiles, props, columns), nil
}
