// pkg/converter/converter.go
package converter

import (
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// Dialect selects the SQL type vocabulary of a target warehouse
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectSnowflake Dialect = "snowflake"
)

// TypeConverter handles mapping of inferred column types to warehouse types
type TypeConverter struct {
	logger *zap.Logger
	// Configuration options
	config TypeConverterConfig
}

// TypeConverterConfig provides configuration options for type conversion
type TypeConverterConfig struct {
	// Maximum VARCHAR length before converting to TEXT
	MaxVarcharLength int
	// Whether to size text columns from the longest observed value
	OptimizeStorage bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() TypeConverterConfig {
	return TypeConverterConfig{
		MaxVarcharLength: 10000,
		OptimizeStorage:  true,
	}
}

// NewTypeConverter creates a new TypeConverter with default configuration
func NewTypeConverter(logger *zap.Logger) *TypeConverter {
	return NewTypeConverterWithConfig(logger, DefaultConfig())
}

// NewTypeConverterWithConfig creates a TypeConverter with custom configuration
func NewTypeConverterWithConfig(logger *zap.Logger, config TypeConverterConfig) *TypeConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeConverter{
		logger: logger,
		config: config,
	}
}

// MapColumnType converts an inferred column type to the dialect's SQL type
func (c *TypeConverter) MapColumnType(col model.Column, dialect Dialect) (string, error) {
	switch col.DataType {
	case model.DataTypeInt:
		if dialect == DialectSnowflake {
			return "NUMBER(38,0)", nil
		}
		return "BIGINT", nil
	case model.DataTypeFloat:
		if dialect == DialectSnowflake {
			return "FLOAT", nil
		}
		return "DOUBLE PRECISION", nil
	case model.DataTypeObject, "":
		return c.handleVarcharType(col.MaxLength, dialect), nil
	default:
		// Log unexpected type and return error
		c.logger.Warn("Unknown column type encountered",
			zap.String("column", col.Name),
			zap.String("dataType", col.DataType))
		return c.handleVarcharType(0, dialect),
			fmt.Errorf("unknown column type: %s (mapped to text as fallback)", col.DataType)
	}
}

// ApplyPgTypes fills in the PostgreSQL type of every column in metadata
func (c *TypeConverter) ApplyPgTypes(metadata *model.TableMetadata) {
	for i := range metadata.Columns {
		pgType, err := c.MapColumnType(metadata.Columns[i], DialectPostgres)
		if err != nil {
			c.logger.Debug("Fell back to text type", zap.Error(err))
		}
		metadata.Columns[i].PgType = pgType
	}
}

// GenerateColumnDefinitions creates column definitions for CREATE TABLE
func (c *TypeConverter) GenerateColumnDefinitions(metadata *model.TableMetadata, dialect Dialect) ([]string, error) {
	definitions := make([]string, 0, len(metadata.Columns))

	for _, col := range metadata.Columns {
		sqlType, err := c.MapColumnType(col, dialect)
		if err != nil {
			return nil, err
		}

		nullability := "NULL"
		if col.MissingCount == 0 && col.IsIdentifierColumn() {
			nullability = "NOT NULL"
		}

		def := fmt.Sprintf("%s %s %s",
			QuoteIdentifier(col.Name),
			sqlType,
			nullability)

		definitions = append(definitions, def)
	}

	return definitions, nil
}

// QuoteIdentifier properly quotes and escapes an SQL identifier.
// PostgreSQL and Snowflake share the double-quote syntax.
func QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

// QualifiedName returns a quoted schema-qualified table name
func QualifiedName(schema, table string) string {
	if schema == "" {
		return QuoteIdentifier(table)
	}
	return QuoteIdentifier(schema) + "." + QuoteIdentifier(table)
}
