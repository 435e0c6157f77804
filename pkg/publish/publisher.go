// pkg/publish/publisher.go
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/converter"
	"github.com/David-Botos/churn-pipeline/pkg/dataset"
	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// ColumnLoadID identifies the publish run that wrote a row
const ColumnLoadID = "load_id"

// Sink is the warehouse side of publishing
type Sink interface {
	Dialect() converter.Dialect
	RecreateTable(ctx context.Context, table string, columnDefs []string) error
	LoadRows(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error)
}

// Result summarizes a publish run
type Result struct {
	Table       string
	LoadID      string
	RowsRead    int
	RowsWritten int64
	StartTime   time.Time
	EndTime     time.Time
}

// Duration returns how long the publish took
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Publisher replaces a warehouse table with the engineered dataset
type Publisher struct {
	sink      Sink
	table     string
	converter *converter.TypeConverter
	logger    *zap.Logger
}

// NewPublisher creates a Publisher writing to the named table
func NewPublisher(sink Sink, table string, logger *zap.Logger) (*Publisher, error) {
	if sink == nil {
		return nil, errors.New("sink cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if table == "" {
		return nil, errors.New("target table name is required")
	}

	return &Publisher{
		sink:      sink,
		table:     table,
		converter: converter.NewTypeConverter(logger),
		logger:    logger.Named("publish"),
	}, nil
}

// Publish loads the engineered file at path into the target table
func (p *Publisher) Publish(ctx context.Context, path string) (*Result, error) {
	result := &Result{
		Table:     p.table,
		LoadID:    uuid.New().String(),
		StartTime: time.Now(),
	}

	table, err := dataset.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	result.RowsRead = table.Len()

	metadata, columnDefs, rows, err := p.Prepare(table, result.LoadID)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Publishing engineered table",
		zap.String("table", p.table),
		zap.String("load_id", result.LoadID),
		zap.Int("rows", result.RowsRead),
		zap.Int("columns", len(metadata.Columns)))

	if err := p.sink.RecreateTable(ctx, p.table, columnDefs); err != nil {
		return nil, fmt.Errorf("failed to prepare target table: %w", err)
	}

	columns := make([]string, len(metadata.Columns))
	for i, col := range metadata.Columns {
		columns[i] = col.Name
	}

	written, err := p.sink.LoadRows(ctx, p.table, columns, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}
	result.RowsWritten = written
	result.EndTime = time.Now()

	if written != int64(result.RowsRead) {
		p.logger.Warn("Row count mismatch after publish",
			zap.Int("rows_read", result.RowsRead),
			zap.Int64("rows_written", written))
	}

	p.logger.Info("Publish complete",
		zap.String("table", p.table),
		zap.Int64("rows_written", written),
		zap.Duration("duration", result.Duration()))

	return result, nil
}

// Prepare infers the table's column metadata, appends the load_id column,
// and converts every row to query arguments in column order
func (p *Publisher) Prepare(table *model.Table, loadID string) (*model.TableMetadata, []string, [][]interface{}, error) {
	metadata := dataset.Summarize(p.table, table)
	metadata.Columns = append(metadata.Columns, model.Column{
		Name:         ColumnLoadID,
		DataType:     model.DataTypeObject,
		NonNullCount: table.Len(),
		MaxLength:    len(loadID),
	})
	p.converter.ApplyPgTypes(metadata)

	columnDefs, err := p.converter.GenerateColumnDefinitions(metadata, p.sink.Dialect())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate column definitions: %w", err)
	}

	rows := make([][]interface{}, 0, table.Len())
	for i, row := range table.Rows {
		withLoadID := make(model.Row, len(row)+1)
		for k, v := range row {
			withLoadID[k] = v
		}
		withLoadID[ColumnLoadID] = loadID

		values, err := p.converter.ConvertRow(withLoadID, metadata)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, values)
	}

	return metadata, columnDefs, rows, nil
}
