// pkg/model/metadata.go
package model

import "strings"

// Inferred column data types, named after the pandas dtypes the
// downstream modelling code expects.
const (
	DataTypeInt    = "int64"
	DataTypeFloat  = "float64"
	DataTypeObject = "object"
)

// TableMetadata summarizes the columns of a table
type TableMetadata struct {
	Name     string   // Logical table name (e.g. "cleaned_telco")
	RowCount int      // Number of rows summarized
	Columns  []Column // Column summaries in header order
}

// Column represents metadata about a single column
type Column struct {
	Name         string // Normalized column name
	DataType     string // Inferred data type (int64, float64, object)
	PgType       string // Mapped PostgreSQL type
	MissingCount int    // Number of missing cells
	NonNullCount int    // Number of present cells
	MaxLength    int    // Longest textual value, in bytes

	// Numeric summary; only set when HasStats is true
	HasStats bool
	Mean     float64
	Std      float64
	Min      float64
	Max      float64
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *Column {
	normalizedName := strings.ToLower(name)
	for i, col := range tm.Columns {
		if strings.ToLower(col.Name) == normalizedName {
			return &tm.Columns[i]
		}
	}
	return nil
}

// TotalMissing returns the sum of missing cells across all columns
func (tm *TableMetadata) TotalMissing() int {
	total := 0
	for _, col := range tm.Columns {
		total += col.MissingCount
	}
	return total
}

// IsNumeric reports whether the column holds int64 or float64 values
func (col *Column) IsNumeric() bool {
	return col.DataType == DataTypeInt || col.DataType == DataTypeFloat
}

// IsIdentifierColumn checks if a column identifies a customer row
func (col *Column) IsIdentifierColumn() bool {
	name := strings.ToLower(col.Name)
	return name == "customerid" || name == "customer_id" || name == "id"
}
