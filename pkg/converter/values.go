// pkg/converter/values.go
package converter

import (
	"fmt"
	"math"

	"github.com/David-Botos/churn-pipeline/pkg/dataset"
	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// ConvertValue prepares a cell for binding as a query argument of the
// given column type. Missing cells bind as NULL.
func (c *TypeConverter) ConvertValue(value interface{}, dataType string) (interface{}, error) {
	if dataset.IsMissing(value) {
		return nil, nil
	}

	switch dataType {
	case model.DataTypeInt:
		i, err := dataset.ToInt(value)
		if err != nil {
			// Recoded indicator columns may be written as floats
			f, ferr := dataset.ToFloat(value)
			if ferr != nil || f != math.Trunc(f) {
				return nil, fmt.Errorf("cannot convert %v to integer: %w", value, err)
			}
			return int64(f), nil
		}
		return i, nil
	case model.DataTypeFloat:
		f, err := dataset.ToFloat(value)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %v to float: %w", value, err)
		}
		return f, nil
	default:
		return dataset.ToString(value), nil
	}
}

// ConvertRow converts every cell of a row in column order
func (c *TypeConverter) ConvertRow(row model.Row, metadata *model.TableMetadata) ([]interface{}, error) {
	values := make([]interface{}, len(metadata.Columns))
	for i, col := range metadata.Columns {
		v, err := c.ConvertValue(row[col.Name], col.DataType)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		values[i] = v
	}
	return values, nil
}
