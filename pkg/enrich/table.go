package enrich

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Table is a CSV file held in memory. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnError reports required columns a file does not have.
type ColumnError struct {
	File    string
	Missing []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", filepath.Base(e.File), strings.Join(e.Missing, ", "))
}

// ErrEmptyFile is returned for a CSV without a header row.
var ErrEmptyFile = errors.New("csv file has no header row")

// ReadTable loads path. Short rows are padded and long rows truncated to
// the header width.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := &Table{Header: header, Rows: make([][]string, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Column returns the index of name, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Require checks that every named column exists.
func (t *Table) Require(file string, names ...string) error {
	var missing []string
	for _, name := range names {
		if t.Column(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ColumnError{File: file, Missing: missing}
	}
	return nil
}

// EnsureColumn returns the index of name, appending an empty column when
// it does not exist. The bool reports whether the column was created.
func (t *Table) EnsureColumn(name string) (int, bool) {
	if i := t.Column(name); i >= 0 {
		return i, false
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Header) - 1, true
}

// Write stores the table at path. The file is written to a temporary name
// in the same directory first and renamed into place.
func (t *Table) Write(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Header); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// stem returns the file name without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// csvFiles lists *.csv in dir, sorted by name.
func csvFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input folder %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input folder %q is not a directory", dir)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	return files, nil
}
