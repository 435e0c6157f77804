// pkg/model/cleaning.go
package model

// Cleaning operations recorded for dropped rows
const (
	OperationDropRow = "row_dropped"
)

// Cleaning reasons, in the order they are checked
const (
	ReasonMissingTarget      = "missing_target"
	ReasonUncoercibleNumeric = "uncoercible_numeric"
	ReasonMissingRequired    = "missing_required_field"
	ReasonMissingValue       = "missing_value"
)

// CleaningOperation represents a single data cleaning decision
type CleaningOperation struct {
	RowNumber         int         // 1-based data row number in the raw file
	RowIdentifier     string      // Customer identifier if available
	ColumnName        string      // Column that triggered the operation
	OriginalValue     interface{} // Original value (may be nil)
	CleaningOperation string      // Type of cleaning performed (e.g., "row_dropped")
	CleaningReason    string      // Reason for cleaning (e.g., "missing_target")
}

// CleaningContext contains information needed for cleaning a row
type CleaningContext struct {
	RowNumber     int
	RowIdentifier string
	IDColumn      string
}
