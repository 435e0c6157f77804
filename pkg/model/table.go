// pkg/model/table.go
package model

// Row maps a column name to its cell value.
// A cell is nil (missing), string, int64 or float64.
type Row map[string]interface{}

// Table is an in-memory tabular dataset with an ordered header
type Table struct {
	Columns []string // Column names in file order
	Rows    []Row    // Rows in file order
}

// NewTable creates an empty table with the given header
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Columns: cols,
		Rows:    make([]Row, 0),
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header contains name
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// ColumnIndex returns the header position of name, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// AddColumn appends a column to the header if it is not already present.
// Existing rows are left untouched; a missing key reads as nil.
func (t *Table) AddColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
}

// DropColumn removes a column from the header and from every row
func (t *Table) DropColumn(name string) bool {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return false
	}
	t.Columns = append(t.Columns[:idx:idx], t.Columns[idx+1:]...)
	for _, row := range t.Rows {
		delete(row, name)
	}
	return true
}

// MissingColumns returns the required names absent from the header
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
