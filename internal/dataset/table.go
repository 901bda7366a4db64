package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Table holds one raw CSV source in memory. Header names are stored in
// canonical form so the per-source parsers can match columns regardless of
// the casing and punctuation quirks of the published files
// ("State/UTs", "State/ Uts", "Precipitation_mm", ...).
type Table struct {
	Path    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// SchemaError reports a source file whose header is missing an expected
// column. Schema mismatches are fatal: a silently absent column would
// corrupt every downstream join.
type SchemaError struct {
	Path   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing expected column %q", e.Path, e.Column)
}

// Load reads a CSV file into a Table. A missing file is returned as an
// error and treated as fatal by the pipeline.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}

	t := &Table{
		Path:  path,
		Rows:  records[1:],
		index: make(map[string]int),
	}
	for i, h := range records[0] {
		c := Canonical(h)
		t.Columns = append(t.Columns, c)
		if _, ok := t.index[c]; !ok {
			t.index[c] = i
		}
	}
	return t, nil
}

// Canonical normalizes a header name: lowercase, punctuation and
// underscores folded to spaces, whitespace collapsed.
func Canonical(h string) string {
	h = strings.ToLower(h)
	h = strings.Map(func(r rune) rune {
		switch r {
		case '/', '-', '_', '(', ')', '.', ',':
			return ' '
		}
		return r
	}, h)
	return strings.Join(strings.Fields(h), " ")
}

// Column returns the index of the first column matching any of the given
// canonical names.
func (t *Table) Column(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := t.index[n]; ok {
			return i, true
		}
	}
	return 0, false
}

// Require returns a SchemaError naming the first candidate if none of the
// given column names is present.
func (t *Table) Require(names ...string) (int, error) {
	if i, ok := t.Column(names...); ok {
		return i, nil
	}
	return 0, &SchemaError{Path: t.Path, Column: names[0]}
}

// Field returns the trimmed cell at (row, col), tolerating ragged rows.
func (t *Table) Field(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
