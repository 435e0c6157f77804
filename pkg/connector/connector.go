// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/converter"
)

// DatabaseConnector defines the interface for warehouse connectors
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sql.DB

	// Dialect returns the SQL type vocabulary of the warehouse
	Dialect() converter.Dialect

	// Schema returns the schema tables are written to
	Schema() string

	// Validate verifies the connection and permissions
	Validate(ctx context.Context) error

	// RecreateTable drops the table if it exists and creates it anew
	RecreateTable(ctx context.Context, table string, columnDefs []string) error

	// LoadRows inserts rows in column order and returns the count written
	LoadRows(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error)

	// Close closes the connection and releases resources
	Close() error
}

// PlaceholderStyle selects how bind parameters are written
type PlaceholderStyle int

const (
	// PlaceholderDollar writes $1, $2, ... (PostgreSQL)
	PlaceholderDollar PlaceholderStyle = iota
	// PlaceholderQuestion writes ? (Snowflake)
	PlaceholderQuestion
)

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sql.DB) ConnStats {
	stats := db.Stats()
	return ConnStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConns),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
	if maxIdleTime > 0 {
		db.SetConnMaxIdleTime(maxIdleTime)
	}
}

// BuildCreateTable returns a CREATE TABLE statement for a qualified name
func BuildCreateTable(qualifiedName string, columnDefs []string) string {
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)",
		qualifiedName,
		strings.Join(columnDefs, ",\n\t"))
}

// BuildDropTable returns a DROP TABLE IF EXISTS statement
func BuildDropTable(qualifiedName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", qualifiedName)
}

// BuildInsert returns a multi-row INSERT statement for rowCount rows
func BuildInsert(qualifiedName string, columns []string, rowCount int, style PlaceholderStyle) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = converter.QuoteIdentifier(col)
	}

	placeholders := make([]string, rowCount)
	for j := 0; j < rowCount; j++ {
		rowPlaceholders := make([]string, len(columns))
		for k := range columns {
			if style == PlaceholderQuestion {
				rowPlaceholders[k] = "?"
			} else {
				rowPlaceholders[k] = fmt.Sprintf("$%d", j*len(columns)+k+1)
			}
		}
		placeholders[j] = fmt.Sprintf("(%s)", strings.Join(rowPlaceholders, ", "))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		qualifiedName, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// batchInsert writes rows in batches of batchSize with multi-row INSERTs
func batchInsert(
	ctx context.Context,
	exec execer,
	logger *zap.Logger,
	qualifiedName string,
	columns []string,
	rows [][]interface{},
	batchSize int,
	style PlaceholderStyle,
) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 1000
	}

	var totalRowsInserted int64
	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		currentBatch := rows[i:end]

		args := make([]interface{}, 0, len(currentBatch)*len(columns))
		for _, row := range currentBatch {
			args = append(args, row...)
		}

		query := BuildInsert(qualifiedName, columns, len(currentBatch), style)
		result, err := exec.ExecContext(ctx, query, args...)
		if err != nil {
			return totalRowsInserted, fmt.Errorf("batch insert failed: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			logger.Warn("Couldn't get rows affected", zap.Error(err))
			rowsAffected = int64(len(currentBatch))
		}
		totalRowsInserted += rowsAffected
	}

	return totalRowsInserted, nil
}
