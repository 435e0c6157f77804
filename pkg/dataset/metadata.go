// pkg/dataset/metadata.go
package dataset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// Header of the column metadata file
var metadataColumns = []string{
	"column", "dtype", "pg_type", "missing_count", "non_null_count",
	"mean", "std", "min", "max",
}

// Summarize computes per-column metadata for a table: inferred type,
// missing and present counts, longest text value and, for numeric
// columns, mean, sample standard deviation, min and max.
func Summarize(name string, table *model.Table) *model.TableMetadata {
	metadata := &model.TableMetadata{
		Name:     name,
		RowCount: table.Len(),
		Columns:  make([]model.Column, 0, len(table.Columns)),
	}

	for _, colName := range table.Columns {
		col := model.Column{
			Name:     colName,
			DataType: InferType(table, colName),
		}

		var values []float64
		for _, row := range table.Rows {
			v := row[colName]
			if IsMissing(v) {
				col.MissingCount++
				continue
			}
			col.NonNullCount++
			if n := len(ToString(v)); n > col.MaxLength {
				col.MaxLength = n
			}
			if col.IsNumeric() {
				if f, err := ToFloat(v); err == nil {
					values = append(values, f)
				}
			}
		}

		if len(values) > 0 {
			col.HasStats = true
			col.Mean, col.Std = stat.MeanStdDev(values, nil)
			col.Min = floats.Min(values)
			col.Max = floats.Max(values)
		}

		metadata.Columns = append(metadata.Columns, col)
	}

	return metadata
}

// MetadataTable renders metadata as a table, one row per column
func MetadataTable(metadata *model.TableMetadata) *model.Table {
	table := model.NewTable(metadataColumns)
	for _, col := range metadata.Columns {
		row := model.Row{
			"column":         col.Name,
			"dtype":          col.DataType,
			"pg_type":        col.PgType,
			"missing_count":  int64(col.MissingCount),
			"non_null_count": int64(col.NonNullCount),
		}
		if col.HasStats {
			row["mean"] = col.Mean
			row["std"] = col.Std
			row["min"] = col.Min
			row["max"] = col.Max
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
