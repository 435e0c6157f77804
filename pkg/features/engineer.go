// pkg/features/engineer.go
package features

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/dataset"
	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// EngineeredTableName names the engineered table in metadata and errors
const EngineeredTableName = "engineered_churn"

// Input columns read by feature derivation
const (
	ColumnTenure           = "tenure"
	ColumnMonthlyCharges   = "monthlycharges"
	ColumnTechSupport      = "techsupport"
	ColumnPaperlessBilling = "paperlessbilling"
	ColumnStreamingTV      = "streamingtv"
	ColumnStreamingMovies  = "streamingmovies"
	ColumnChurn            = "churn"
	ColumnCustomerID       = "customerid"
)

// Derived columns
const (
	ColumnTenureGroup          = "tenure_group"
	ColumnMonthlyChargeRatio   = "monthly_charge_ratio"
	ColumnHasStreamingServices = "has_streaming_services"
)

var requiredColumns = []string{
	ColumnTenure, ColumnMonthlyCharges, ColumnTechSupport, ColumnPaperlessBilling,
	ColumnStreamingTV, ColumnStreamingMovies, ColumnChurn,
}

// recodedColumns are Yes/No columns replaced in place by 1/0 indicators
var recodedColumns = []string{ColumnTechSupport, ColumnPaperlessBilling, ColumnChurn}

// Result summarizes a feature derivation run
type Result struct {
	InputPath      string
	OutputPath     string
	Rows           int
	AddedColumns   []string
	DroppedColumns []string
	// Cells that had no Yes/No mapping, per recoded column
	UnmappedValues map[string]int
}

// Engineer derives modelling features from the cleaned table
type Engineer struct {
	dropIdentifier bool
	logger         *zap.Logger
}

// NewEngineer creates an Engineer. When dropIdentifier is set the
// customer identifier is removed from the output.
func NewEngineer(dropIdentifier bool, logger *zap.Logger) (*Engineer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Engineer{
		dropIdentifier: dropIdentifier,
		logger:         logger.Named("features"),
	}, nil
}

// TransformFile reads the cleaned table, derives features and writes the
// engineered table to outputPath
func (e *Engineer) TransformFile(inputPath, outputPath string) (*Result, error) {
	e.logger.Info("Loading cleaned data", zap.String("path", inputPath))

	table, err := dataset.ReadCSV(inputPath)
	if err != nil {
		return nil, err
	}

	result, err := e.Transform(table)
	if err != nil {
		return nil, err
	}
	result.InputPath = inputPath
	result.OutputPath = outputPath

	if err := dataset.WriteCSV(outputPath, table); err != nil {
		return nil, fmt.Errorf("failed to persist engineered table: %w", err)
	}

	e.logger.Info("Feature engineering complete",
		zap.String("path", outputPath),
		zap.Int("rows", result.Rows),
		zap.Strings("added_columns", result.AddedColumns),
		zap.Strings("dropped_columns", result.DroppedColumns),
		zap.Any("unmapped_values", result.UnmappedValues))

	return result, nil
}

// Transform derives features in place. Rows are never added, removed or
// reordered.
func (e *Engineer) Transform(table *model.Table) (*Result, error) {
	if missing := table.MissingColumns(requiredColumns...); len(missing) > 0 {
		return nil, &model.SchemaError{Table: EngineeredTableName, Missing: missing}
	}

	result := &Result{
		Rows:           table.Len(),
		UnmappedValues: make(map[string]int),
	}

	for _, row := range table.Rows {
		row[ColumnTenureGroup] = TenureGroup(row[ColumnTenure])
		row[ColumnMonthlyChargeRatio] = MonthlyChargeRatio(row[ColumnMonthlyCharges], row[ColumnTenure])
		row[ColumnHasStreamingServices] = AnyYes(row[ColumnStreamingTV], row[ColumnStreamingMovies])

		for _, col := range recodedColumns {
			recoded := YesNo(row[col])
			if recoded == nil {
				result.UnmappedValues[col]++
			}
			row[col] = recoded
		}
	}

	for _, col := range []string{ColumnTenureGroup, ColumnMonthlyChargeRatio, ColumnHasStreamingServices} {
		table.AddColumn(col)
		result.AddedColumns = append(result.AddedColumns, col)
	}

	if e.dropIdentifier && table.DropColumn(ColumnCustomerID) {
		result.DroppedColumns = append(result.DroppedColumns, ColumnCustomerID)
	}

	for col, n := range result.UnmappedValues {
		if n > 0 {
			e.logger.Debug("Values outside Yes/No recoded to null",
				zap.String("column", col),
				zap.Int("count", n))
		}
	}

	return result, nil
}
