// pkg/converter/mapping.go
package converter

import (
	"go.uber.org/zap"
)

// handleVarcharType sizes a text column from its longest observed value
func (c *TypeConverter) handleVarcharType(maxLength int, dialect Dialect) string {
	unbounded := "TEXT"
	if dialect == DialectSnowflake {
		unbounded = "VARCHAR"
	}

	if !c.config.OptimizeStorage || maxLength <= 0 {
		return unbounded
	}

	if maxLength > c.config.MaxVarcharLength {
		c.logger.Debug("Using unbounded text for long values",
			zap.Int("length", maxLength))
		return unbounded
	}

	if maxLength > 1000 {
		return unbounded
	} else if maxLength > 255 {
		return "VARCHAR(1000)"
	} else if maxLength > 100 {
		return "VARCHAR(255)"
	} else if maxLength > 50 {
		return "VARCHAR(100)"
	}
	return "VARCHAR(50)"
}
