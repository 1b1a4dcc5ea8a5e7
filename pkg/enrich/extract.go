package enrich

import (
	"fmt"
	"path/filepath"
)

// ExtractStats describes a column extraction.
type ExtractStats struct {
	Output  string
	Columns []string
	Rows    int
}

// ExtractColumns writes the first n columns of input to output. An empty
// output means <stem>_first<n>.csv next to the input. Files with fewer
// than n columns are copied whole.
func ExtractColumns(input, output string, n int) (ExtractStats, error) {
	if n <= 0 {
		return ExtractStats{}, fmt.Errorf("column count must be positive, got %d", n)
	}
	if output == "" {
		output = filepath.Join(filepath.Dir(input), fmt.Sprintf("%s_first%d.csv", stem(input), n))
	}

	t, err := ReadTable(input)
	if err != nil {
		return ExtractStats{}, err
	}
	if n > len(t.Header) {
		n = len(t.Header)
	}
	t.Header = t.Header[:n]
	for i, row := range t.Rows {
		t.Rows[i] = row[:n]
	}
	if err := t.Write(output); err != nil {
		return ExtractStats{}, err
	}
	return ExtractStats{Output: output, Columns: t.Header, Rows: len(t.Rows)}, nil
}
