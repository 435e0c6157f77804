// pkg/dataset/csv.go
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/David-Botos/churn-pipeline/pkg/model"
)

const utf8BOM = "\ufeff"

// ReadCSV loads a comma-separated file with a header row into memory.
// Every cell is kept as its raw string; callers decide what counts as missing.
func ReadCSV(path string) (*model.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &model.LoadError{Path: path, Reason: "file not found", Err: err}
		}
		return nil, &model.LoadError{Path: path, Reason: "file unreadable", Err: err}
	}
	defer file.Close()

	table, err := decode(bufio.NewReader(file))
	if err != nil {
		var loadErr *model.LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, loadErr
		}
		return nil, &model.LoadError{Path: path, Reason: "malformed csv", Err: err}
	}
	return table, nil
}

func decode(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &model.LoadError{Reason: "empty file"}
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := model.NewTable(header)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("record on line %d: expected %d fields, saw %d",
				line, len(header), len(rec))
		}

		// Short rows are padded with empty cells, which read as missing
		row := make(model.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if table.Len() == 0 {
		return nil, &model.LoadError{Reason: "no data rows"}
	}
	return table, nil
}

// Output pairs a table with the path it is persisted to
type Output struct {
	Path  string
	Table *model.Table
}

// WriteCSV persists a table atomically: rows are written to a temporary file
// in the destination directory, which is renamed over path only on success.
// The destination directory is created if absent.
func WriteCSV(path string, table *model.Table) error {
	return WriteCSVs(Output{Path: path, Table: table})
}

// WriteCSVs persists several tables together. Every table is written to a
// temporary file first; nothing is moved into place unless all writes
// succeed.
func WriteCSVs(outputs ...Output) (err error) {
	staged := make([]string, 0, len(outputs))
	defer func() {
		if err != nil {
			for _, tmpName := range staged {
				os.Remove(tmpName)
			}
		}
	}()

	for _, out := range outputs {
		tmpName, stageErr := stageCSV(out.Path, out.Table)
		if stageErr != nil {
			return stageErr
		}
		staged = append(staged, tmpName)
	}

	for i, out := range outputs {
		if err = os.Rename(staged[i], out.Path); err != nil {
			return fmt.Errorf("failed to move %s into place: %w", out.Path, err)
		}
	}
	return nil
}

// stageCSV writes a table to a temporary file beside path and returns its name
func stageCSV(path string, table *model.Table) (tmpName string, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName = tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = encode(tmp, table); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	return tmpName, nil
}

func encode(w io.Writer, table *model.Table) error {
	buf := bufio.NewWriter(w)
	writer := csv.NewWriter(buf)

	if err := writer.Write(table.Columns); err != nil {
		return err
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = FormatValue(row[col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}
