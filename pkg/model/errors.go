// pkg/model/errors.go
package model

import (
	"fmt"
	"strings"
)

// AcquisitionError reports that the raw dataset could not be obtained
type AcquisitionError struct {
	Dataset string
	Reason  string
	Err     error
}

func (e *AcquisitionError) Error() string {
	msg := fmt.Sprintf("acquisition of %s failed: %s", e.Dataset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// LoadError reports that an input table is missing, unreadable or empty
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SchemaError reports required columns absent from a table, or a table
// that violates a column-level consistency check
type SchemaError struct {
	Table   string
	Missing []string
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("schema of %s: missing required columns [%s]",
			e.Table, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema of %s: %s", e.Table, e.Reason)
}
