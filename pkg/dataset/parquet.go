package dataset

import (
	"context"
	"strings"

	"github.com/apache/arrow/go/v13/arrow"
	"github.com/apache/arrow/go/v13/arrow/array"
	"github.com/apache/arrow/go/v13/arrow/memory"
	"github.com/apache/arrow/go/v13/parquet/file"
	"github.com/apache/arrow/go/v13/parquet/pqarrow"

	"github.com/chembench/molprop/pkg/errors"
)

// LoadParquet reads a property table stored as Parquet. String columns other
// than the SMILES column are ignored; float and integer columns become
// properties.
func LoadParquet(ctx context.Context, path, smilesColumn string) (*Dataset, error) {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.ConfigurationError, "cannot open parquet file"),
			errors.Fields{"path": path})
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "cannot read parquet schema")
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "cannot read parquet table")
	}
	defer table.Release()

	schema := table.Schema()
	smilesIdx := -1
	for i, f := range schema.Fields() {
		if strings.EqualFold(f.Name, smilesColumn) {
			smilesIdx = i
			break
		}
	}
	if smilesIdx < 0 {
		return nil, errors.WithFields(
			errors.New(errors.MissingColumn, "SMILES column not found"),
			errors.Fields{"path": path, "column": smilesColumn})
	}

	rows := int(table.NumRows())
	smiles := make([]string, rows)
	props := make([]map[string]float64, rows)
	for i := range props {
		props[i] = map[string]float64{}
	}

	var columns []string
	for ci := 0; ci < int(table.NumCols()); ci++ {
		field := schema.Field(ci)
		col := table.Column(ci)

		if ci == smilesIdx {
			fillStrings(col, smiles)
			continue
		}
		vals := make([]float64, rows)
		if !fillFloats(col, vals) {
			continue
		}
		columns = append(columns, field.Name)
		for i, v := range vals {
			props[i][field.Name] = v
		}
	}

	return build(smiles, props, columns), nil
}

func fillStrings(col *arrow.Column, out []string) {
	i := 0
	for _, chunk := range col.Data().Chunks() {
		s, ok := chunk.(*array.String)
		if !ok {
			continue
		}
		for j := 0; j < s.Len(); j++ {
			out[i] = s.Value(j)
			i++
		}
	}
}

func fillFloats(col *arrow.Column, out []float64) bool {
	i := 0
	for _, chunk := range col.Data().Chunks() {
		switch arr := chunk.(type) {
		case *array.Float64:
			for j := 0; j < arr.Len(); j++ {
				out[i] = arr.Value(j)
				i++
			}
		case *array.Float32:
			for j := 0; j < arr.Len(); j++ {
				out[i] = float64(arr.Value(j))
				i++
			}
		case *array.Int64:
			for j := 0; j < arr.Len(); j++ {
				out[i] = float64(arr.Value(j))
				i++
			}
		case *array.Int32:
			for j := 0; j < arr.Len(); j++ {
				out[i] = float64(arr.Value(j))
				i++
			}
		default:
			return false
		}
	}
	return i == len(out)
}
