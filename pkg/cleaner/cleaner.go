// pkg/cleaner/cleaner.go
package cleaner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/acquire"
	"github.com/David-Botos/churn-pipeline/pkg/converter"
	"github.com/David-Botos/churn-pipeline/pkg/dataset"
	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// CleanedTableName names the cleaned table in metadata and errors
const CleanedTableName = "cleaned_telco"

// OutputPaths lists where the cleaning stage persists its results.
// AuditPath may be empty to skip the audit file.
type OutputPaths struct {
	CleanedPath  string
	MetadataPath string
	AuditPath    string
}

// Report summarizes a cleaning run
type Report struct {
	RawPath         string
	RowsRead        int
	RowsKept        int
	DroppedByReason map[string]int
	Operations      []model.CleaningOperation
	Metadata        *model.TableMetadata
}

// RowsDropped returns the number of rows excluded by the cleaning policy
func (r *Report) RowsDropped() int {
	return r.RowsRead - r.RowsKept
}

// DataCleaner loads the raw dataset, normalizes and filters it, and
// writes the cleaned table with its column metadata
type DataCleaner struct {
	ensurer   acquire.Ensurer
	converter *converter.TypeConverter
	logger    *zap.Logger
}

// NewDataCleaner creates a new DataCleaner. The ensurer is asked for the
// raw file before every run, which lets it fetch the dataset when absent.
func NewDataCleaner(ensurer acquire.Ensurer, logger *zap.Logger) (*DataCleaner, error) {
	if ensurer == nil {
		return nil, errors.New("raw dataset ensurer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &DataCleaner{
		ensurer:   ensurer,
		converter: converter.NewTypeConverter(logger),
		logger:    logger.Named("cleaner"),
	}, nil
}

// Run makes sure the raw dataset is present and cleans it
func (c *DataCleaner) Run(ctx context.Context, out OutputPaths) (*Report, error) {
	rawPath, err := c.ensurer.EnsureRaw(ctx)
	if err != nil {
		return nil, err
	}
	return c.CleanFile(rawPath, out)
}

// CleanFile cleans the raw file at rawPath. Nothing is written unless the
// whole table was cleaned and summarized successfully.
func (c *DataCleaner) CleanFile(rawPath string, out OutputPaths) (*Report, error) {
	c.logger.Info("Reading data", zap.String("path", rawPath))

	raw, err := dataset.ReadCSV(rawPath)
	if err != nil {
		return nil, err
	}
	rowsRead := raw.Len()

	cleaned, operations, err := c.CleanTable(raw)
	if err != nil {
		return nil, err
	}

	metadata := dataset.Summarize(CleanedTableName, cleaned)
	c.converter.ApplyPgTypes(metadata)

	if missing := metadata.TotalMissing(); missing != 0 {
		c.logger.Error("Cleaned table still has missing values", zap.Int("missing", missing))
		return nil, &model.SchemaError{
			Table:  CleanedTableName,
			Reason: fmt.Sprintf("%d missing values remain after cleaning", missing),
		}
	}
	if validationErrors := ValidateDataTypes(cleaned, metadata); len(validationErrors) > 0 {
		return nil, &model.SchemaError{
			Table:  CleanedTableName,
			Reason: fmt.Sprintf("type validation failed: %v", validationErrors[0]),
		}
	}

	report := &Report{
		RawPath:         rawPath,
		RowsRead:        rowsRead,
		RowsKept:        cleaned.Len(),
		DroppedByReason: countReasons(operations),
		Operations:      operations,
		Metadata:        metadata,
	}

	c.logger.Info("Saving cleaned data", zap.String("path", out.CleanedPath))
	outputs := []dataset.Output{
		{Path: out.CleanedPath, Table: cleaned},
		{Path: out.MetadataPath, Table: dataset.MetadataTable(metadata)},
	}
	if out.AuditPath != "" {
		outputs = append(outputs, dataset.Output{Path: out.AuditPath, Table: auditTable(operations)})
	}
	if err := dataset.WriteCSVs(outputs...); err != nil {
		return nil, fmt.Errorf("failed to persist cleaning outputs: %w", err)
	}

	fields := []zap.Field{
		zap.Int("rows_read", report.RowsRead),
		zap.Int("rows_kept", report.RowsKept),
		zap.Int("rows_dropped", report.RowsDropped()),
		zap.Int("columns", len(cleaned.Columns)),
	}
	for reason, count := range report.DroppedByReason {
		fields = append(fields, zap.Int("dropped_"+reason, count))
	}
	c.logger.Info("Cleaning complete", fields...)

	return report, nil
}

// CleanTable applies the cleaning policy to an in-memory raw table:
// header normalization, numeric coercion of totalcharges, row exclusion
// and per-column type inference. Row order is preserved.
func (c *DataCleaner) CleanTable(raw *model.Table) (*model.Table, []model.CleaningOperation, error) {
	table, err := normalizeHeader(raw)
	if err != nil {
		return nil, nil, err
	}

	if missing := table.MissingColumns(requiredColumns...); len(missing) > 0 {
		return nil, nil, &model.SchemaError{Table: CleanedTableName, Missing: missing}
	}

	idColumn := identifierColumn(table)
	uncoercible := coerceNumeric(table, ColumnTotalCharges)
	if len(uncoercible) > 0 {
		c.logger.Debug("Coerced unparseable values to missing",
			zap.String("column", ColumnTotalCharges),
			zap.Int("count", len(uncoercible)))
	}

	cleaned := model.NewTable(table.Columns)
	var operations []model.CleaningOperation

	for i, row := range table.Rows {
		rowCtx := model.CleaningContext{RowNumber: i + 1, IDColumn: idColumn}
		if idColumn != "" && !dataset.IsMissing(row[idColumn]) {
			rowCtx.RowIdentifier = dataset.ToString(row[idColumn])
		}

		rawCharges, wasUncoercible := uncoercible[i]
		if op := checkRow(table.Columns, row, rowCtx, rawCharges, wasUncoercible); op != nil {
			operations = append(operations, *op)
			continue
		}
		cleaned.Rows = append(cleaned.Rows, row)
	}

	for _, col := range cleaned.Columns {
		dataType := model.DataTypeFloat
		if col != ColumnTotalCharges {
			dataType = dataset.InferType(cleaned, col)
		}
		dataset.CoerceColumn(cleaned, col, dataType)
	}

	return cleaned, operations, nil
}

func countReasons(operations []model.CleaningOperation) map[string]int {
	counts := make(map[string]int)
	for _, op := range operations {
		counts[op.CleaningReason]++
	}
	return counts
}

// ValidateDataTypes checks that every cell of a cleaned table is present
// and holds a value of its column's inferred type
func ValidateDataTypes(table *model.Table, metadata *model.TableMetadata) []error {
	var validationErrors []error

	for i, row := range table.Rows {
		for _, col := range metadata.Columns {
			value := row[col.Name]
			if dataset.IsMissing(value) {
				validationErrors = append(validationErrors,
					fmt.Errorf("row %d, column %s: missing value", i+1, col.Name))
				continue
			}

			var ok bool
			switch col.DataType {
			case model.DataTypeInt:
				_, ok = value.(int64)
			case model.DataTypeFloat:
				_, ok = value.(float64)
			default:
				_, ok = value.(string)
			}
			if !ok {
				validationErrors = append(validationErrors,
					fmt.Errorf("row %d, column %s: expected %s, got %T", i+1, col.Name, col.DataType, value))
			}
		}
	}

	return validationErrors
}
