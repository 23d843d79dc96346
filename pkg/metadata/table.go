// Package metadata reads and reshapes sample mapping files.
//
// A mapping file is tab-delimited. The first line starting with '#' is the
// header (its leading '#' removed), later '#' lines are comments, and every
// other non-blank line is a sample row whose first field is the sample id.
//
// # Table
//
// [Table] keeps the header, rows and comments, plus O(1) lookups from column
// name to index and from sample id to row. Every row holds exactly one value
// per header; index 0 is the sample id itself.
//
// # Reshaping
//
// All reshaping functions return a new Table and leave their input untouched:
//
//	t, _ = metadata.FilterRows(t, ids, false)
//	t, _ = metadata.MergeColumns(t, "Treatment&&DOB")
//	t = metadata.DropConstantColumns(t)
//
// [Preprocess] runs the merge, drop, keep and clone steps in the order the
// renderer expects.
package metadata

import (
	"github.com/matzehuels/ordiview/pkg/errors"
)

// DefaultIDColumn is the conventional name of the first mapping-file column.
const DefaultIDColumn = "SampleID"

// Row is one sample of a mapping file.
type Row struct {
	SampleID string
	Values   []string // one per header, Values[0] == SampleID
}

// Table is a parsed mapping file.
type Table struct {
	Headers  []string
	Rows     []Row
	Comments []string

	columns map[string]int
	samples map[string]int
}

// NewTable builds a Table and its lookup indexes. Rows shorter than the header
// are padded with empty strings; longer rows and duplicate ids are rejected.
func NewTable(headers []string, rows []Row, comments []string) (*Table, error) {
	if len(headers) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "mapping file has no header")
	}
	t := &Table{
		Headers:  headers,
		Rows:     make([]Row, len(rows)),
		Comments: comments,
		columns:  make(map[string]int, len(headers)),
		samples:  make(map[string]int, len(rows)),
	}
	for i, h := range headers {
		if _, dup := t.columns[h]; dup {
			return nil, errors.New(errors.ErrCodeParse, "duplicate column %q", h)
		}
		t.columns[h] = i
	}
	for i, row := range rows {
		if len(row.Values) > len(headers) {
			return nil, errors.New(errors.ErrCodeParse, "sample %q has %d fields, header has %d",
				row.SampleID, len(row.Values), len(headers))
		}
		vals := make([]string, len(headers))
		copy(vals, row.Values)
		vals[0] = row.SampleID
		if _, dup := t.samples[row.SampleID]; dup {
			return nil, errors.New(errors.ErrCodeParse, "duplicate sample id %q", row.SampleID)
		}
		t.samples[row.SampleID] = i
		t.Rows[i] = Row{SampleID: row.SampleID, Values: vals}
	}
	return t, nil
}

// mustTable is used by reshaping functions whose output is built from a valid
// table and therefore cannot violate the invariants.
func mustTable(headers []string, rows []Row, comments []string) *Table {
	t, err := NewTable(headers, rows, comments)
	if err != nil {
		panic(err)
	}
	return t
}

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.columns[name]
	return i, ok
}

// HasColumn reports whether the table has the column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// IDColumn returns the name of the sample id column.
func (t *Table) IDColumn() string { return t.Headers[0] }

// SampleIDs returns the sample ids in row order.
func (t *Table) SampleIDs() []string {
	ids := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		ids[i] = r.SampleID
	}
	return ids
}

// Row returns the row of a sample.
func (t *Table) Row(sampleID string) (Row, bool) {
	i, ok := t.samples[sampleID]
	if !ok {
		return Row{}, false
	}
	return t.Rows[i], true
}

// Value returns a single cell.
func (t *Table) Value(sampleID, column string) (string, bool) {
	c, ok := t.columns[column]
	if !ok {
		return "", false
	}
	r, ok := t.samples[sampleID]
	if !ok {
		return "", false
	}
	return t.Rows[r].Values[c], true
}

// Column returns every value of a column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	c, ok := t.columns[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Values[c]
	}
	return out, true
}

func (t *Table) copyRows() []Row {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = Row{SampleID: r.SampleID, Values: append([]string(nil), r.Values...)}
	}
	return rows
}
