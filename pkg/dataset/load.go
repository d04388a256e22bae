package dataset

import (
	"context"
	"path/filepath"
	"strings"
)

// Load dispatches on file extension: .parquet uses the Arrow reader,
// everything else is treated as CSV.
func Load(ctx context.Context, path, smilesColumn string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return LoadParquet(ctx, path, smilesColumn)
	}
	return LoadCSV(path, smilesColumn)
}
