// pkg/dataset/values.go
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/David-Botos/churn-pipeline/pkg/model"
)

// naTokens are the strings treated as missing, matching the default NA
// markers recognized by pandas.read_csv
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a cell value counts as missing.
// Whitespace-only strings are missing.
func IsMissing(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return true
		}
		_, ok := naTokens[trimmed]
		return ok
	case float64:
		return math.IsNaN(val)
	default:
		return false
	}
}

// ToFloat converts a cell value to float64
func ToFloat(v interface{}) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, errors.New("nil value")
	case float64:
		if math.IsNaN(val) {
			return 0, errors.New("NaN value")
		}
		return val, nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("non-finite value %q", cleaned)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

// ToInt converts a cell value to int64
func ToInt(v interface{}) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, errors.New("nil value")
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		return strconv.ParseInt(cleaned, 10, 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

// ToString converts a cell value to its textual form
func ToString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return FormatValue(v)
}

// FormatValue renders a cell for CSV output. Missing values render empty;
// floats use the shortest round-trip form with ".0" kept on integral values.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatFloat(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	if math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// InferType returns the narrowest data type that every present value of a
// column converts to. A column with no present values is object.
func InferType(table *model.Table, column string) string {
	isInt, isFloat, seen := true, true, false
	for _, row := range table.Rows {
		v := row[column]
		if IsMissing(v) {
			continue
		}
		seen = true
		switch v.(type) {
		case int64, int:
			continue
		case float64:
			isInt = false
			continue
		}
		if isInt {
			if _, err := ToInt(v); err != nil {
				isInt = false
			}
		}
		if !isInt && isFloat {
			if _, err := ToFloat(v); err != nil {
				isFloat = false
			}
		}
		if !isInt && !isFloat {
			return model.DataTypeObject
		}
	}

	switch {
	case !seen:
		return model.DataTypeObject
	case isInt:
		return model.DataTypeInt
	case isFloat:
		return model.DataTypeFloat
	default:
		return model.DataTypeObject
	}
}

// CoerceColumn converts every present value of a column to the given data
// type in place. Values that fail conversion become nil; the number of such
// failures is returned.
func CoerceColumn(table *model.Table, column, dataType string) int {
	failed := 0
	for _, row := range table.Rows {
		v := row[column]
		if IsMissing(v) {
			row[column] = nil
			continue
		}
		switch dataType {
		case model.DataTypeInt:
			i, err := ToInt(v)
			if err != nil {
				row[column] = nil
				failed++
				continue
			}
			row[column] = i
		case model.DataTypeFloat:
			f, err := ToFloat(v)
			if err != nil {
				row[column] = nil
				failed++
				continue
			}
			row[column] = f
		default:
			row[column] = ToString(v)
		}
	}
	return failed
}
