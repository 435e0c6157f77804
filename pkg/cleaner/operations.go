// pkg/cleaner/operations.go
package cleaner

import (
	"strings"

	"github.com/David-Botos/churn-pipeline/pkg/dataset"
	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// Normalized names of the columns the cleaning policy depends on
const (
	ColumnChurn          = "churn"
	ColumnTotalCharges   = "totalcharges"
	ColumnMonthlyCharges = "monthlycharges"
	ColumnCustomerID     = "customerid"
)

// requiredColumns must be present in the raw header
var requiredColumns = []string{ColumnChurn, ColumnTotalCharges}

// Header of the cleaning audit file
var auditColumns = []string{
	"row_number", "row_identifier", "column_name",
	"original_value", "cleaning_operation", "cleaning_reason",
}

// normalizeColumnName lower-cases a column name and replaces spaces
// with underscores
func normalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// normalizeHeader returns a table whose header and row keys use
// normalized column names
func normalizeHeader(raw *model.Table) (*model.Table, error) {
	names := make([]string, len(raw.Columns))
	seen := make(map[string]string, len(raw.Columns))
	for i, col := range raw.Columns {
		name := normalizeColumnName(col)
		if prev, dup := seen[name]; dup {
			return nil, &model.SchemaError{
				Table:  CleanedTableName,
				Reason: "columns " + prev + " and " + col + " normalize to the same name " + name,
			}
		}
		seen[name] = col
		names[i] = name
	}

	table := model.NewTable(names)
	table.Rows = make([]model.Row, 0, raw.Len())
	for _, row := range raw.Rows {
		normalized := make(model.Row, len(names))
		for i, col := range raw.Columns {
			normalized[names[i]] = row[col]
		}
		table.Rows = append(table.Rows, normalized)
	}
	return table, nil
}

// identifierColumn returns the customer identifier column, if any
func identifierColumn(table *model.Table) string {
	for _, name := range []string{ColumnCustomerID, "customer_id"} {
		if table.HasColumn(name) {
			return name
		}
	}
	return ""
}

// coerceNumeric converts a column to float64 in place. Missing values and
// values that fail to parse become nil; the raw text of the latter is
// returned keyed by row index.
func coerceNumeric(table *model.Table, column string) map[int]string {
	uncoercible := make(map[int]string)
	for i, row := range table.Rows {
		v := row[column]
		if dataset.IsMissing(v) {
			row[column] = nil
			continue
		}
		f, err := dataset.ToFloat(v)
		if err != nil {
			uncoercible[i] = dataset.ToString(v)
			row[column] = nil
			continue
		}
		row[column] = f
	}
	return uncoercible
}

// checkRow decides whether a row is excluded. Checks run in a fixed order
// so the first failing rule names the reason: target, coerced numeric,
// other required fields, then any remaining missing value.
func checkRow(
	columns []string,
	row model.Row,
	ctx model.CleaningContext,
	rawCharges string,
	uncoercible bool,
) *model.CleaningOperation {
	drop := func(column string, original interface{}, reason string) *model.CleaningOperation {
		return &model.CleaningOperation{
			RowNumber:         ctx.RowNumber,
			RowIdentifier:     ctx.RowIdentifier,
			ColumnName:        column,
			OriginalValue:     original,
			CleaningOperation: model.OperationDropRow,
			CleaningReason:    reason,
		}
	}

	if dataset.IsMissing(row[ColumnChurn]) {
		return drop(ColumnChurn, row[ColumnChurn], model.ReasonMissingTarget)
	}

	if row[ColumnTotalCharges] == nil {
		if uncoercible {
			return drop(ColumnTotalCharges, rawCharges, model.ReasonUncoercibleNumeric)
		}
		return drop(ColumnTotalCharges, nil, model.ReasonMissingRequired)
	}

	for _, col := range []string{ColumnMonthlyCharges, ctx.IDColumn} {
		if col == "" {
			continue
		}
		if v, ok := row[col]; ok && dataset.IsMissing(v) {
			return drop(col, v, model.ReasonMissingRequired)
		}
	}

	for _, col := range columns {
		if v := row[col]; dataset.IsMissing(v) {
			return drop(col, v, model.ReasonMissingValue)
		}
	}

	return nil
}

// auditTable renders cleaning operations as a table
func auditTable(operations []model.CleaningOperation) *model.Table {
	table := model.NewTable(auditColumns)
	for _, op := range operations {
		table.Rows = append(table.Rows, model.Row{
			"row_number":         int64(op.RowNumber),
			"row_identifier":     op.RowIdentifier,
			"column_name":        op.ColumnName,
			"original_value":     dataset.ToString(op.OriginalValue),
			"cleaning_operation": op.CleaningOperation,
			"cleaning_reason":    op.CleaningReason,
		})
	}
	return table
}
