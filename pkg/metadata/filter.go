package metadata

import (
	"fmt"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
)

// MergeSeparator joins column names into a synthetic merged column.
const MergeSeparator = "&&"

// missingValues are the cell contents FillMissing treats as absent.
var missingValues = map[string]bool{"": true, "NA": true, "N/A": true, "na": true, "n/a": true}

// FilterRows keeps the rows whose sample id is in keep, or removes them when
// negate is set. Row order is preserved.
func FilterRows(t *Table, keep []string, negate bool) *Table {
	set := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		set[id] = struct{}{}
	}
	var rows []Row
	for _, r := range t.copyRows() {
		if _, ok := set[r.SampleID]; ok != negate {
			rows = append(rows, r)
		}
	}
	return mustTable(append([]string(nil), t.Headers...), rows, t.Comments)
}

// DropConstantColumns removes every column holding a single distinct value.
// The sample id column is never removed, and tables with fewer than two rows
// are returned unchanged.
func DropConstantColumns(t *Table) *Table {
	return dropColumns(t, func(distinct, rows int) bool { return distinct == 1 })
}

// DropUniqueColumns removes every column whose values are all different.
// The sample id column is never removed, and tables with fewer than two rows
// are returned unchanged.
func DropUniqueColumns(t *Table) *Table {
	return dropColumns(t, func(distinct, rows int) bool { return distinct == rows })
}

func dropColumns(t *Table, drop func(distinct, rows int) bool) *Table {
	if len(t.Rows) < 2 {
		return cloneTable(t)
	}
	keep := []int{0}
	for c := 1; c < len(t.Headers); c++ {
		seen := make(map[string]struct{})
		for _, r := range t.Rows {
			seen[r.Values[c]] = struct{}{}
		}
		if !drop(len(seen), len(t.Rows)) {
			keep = append(keep, c)
		}
	}
	return project(t, keep)
}

// MergeColumns appends a column named like "A&&B" whose values concatenate
// the values of A and B. Merging an existing column name is a no-op.
func MergeColumns(t *Table, merged string) (*Table, error) {
	if t.HasColumn(merged) {
		return cloneTable(t), nil
	}
	parts := strings.Split(merged, MergeSeparator)
	if len(parts) < 2 {
		return nil, errors.New(errors.ErrCodeConfiguration, "%q does not name columns joined by %q", merged, MergeSeparator)
	}
	idx := make([]int, len(parts))
	for i, p := range parts {
		c, ok := t.ColumnIndex(p)
		if !ok {
			return nil, errors.New(errors.ErrCodeConfiguration, "cannot merge %q: column %q is not in the mapping file", merged, p)
		}
		idx[i] = c
	}

	rows := t.copyRows()
	for i := range rows {
		var b strings.Builder
		for _, c := range idx {
			b.WriteString(rows[i].Values[c])
		}
		rows[i].Values = append(rows[i].Values, b.String())
	}
	headers := append(append([]string(nil), t.Headers...), merged)
	return mustTable(headers, rows, t.Comments), nil
}

// KeepColumns keeps the named columns in table order. The sample id column is
// always kept.
func KeepColumns(t *Table, columns []string) (*Table, error) {
	want := make(map[int]bool, len(columns))
	for _, name := range columns {
		c, ok := t.ColumnIndex(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeConfiguration, "column %q is not in the mapping file", name)
		}
		want[c] = true
	}
	keep := []int{0}
	for c := 1; c < len(t.Headers); c++ {
		if want[c] {
			keep = append(keep, c)
		}
	}
	return project(t, keep), nil
}

// Clone repeats every row n times with the sample ids suffixed "_0".."_<n-1>".
// All rows of copy 0 come first, then copy 1, and so on. n <= 1 suffixes once.
func Clone(t *Table, n int) *Table {
	if n < 1 {
		n = 1
	}
	rows := make([]Row, 0, len(t.Rows)*n)
	for i := 0; i < n; i++ {
		for _, r := range t.Rows {
			id := fmt.Sprintf("%s_%d", r.SampleID, i)
			vals := append([]string(nil), r.Values...)
			vals[0] = id
			rows = append(rows, Row{SampleID: id, Values: vals})
		}
	}
	return mustTable(append([]string(nil), t.Headers...), rows, t.Comments)
}

// FillMissing replaces empty and NA cells of a column with value.
func FillMissing(t *Table, column, value string) (*Table, error) {
	c, ok := t.ColumnIndex(column)
	if !ok {
		return nil, errors.New(errors.ErrCodeConfiguration, "cannot fill missing values: column %q is not in the mapping file", column)
	}
	if c == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "cannot fill missing values of the sample id column")
	}
	rows := t.copyRows()
	for i := range rows {
		if missingValues[strings.TrimSpace(rows[i].Values[c])] {
			rows[i].Values[c] = value
		}
	}
	return mustTable(append([]string(nil), t.Headers...), rows, t.Comments), nil
}

// IsNumericColumn reports whether every value of the column parses as a float.
func IsNumericColumn(t *Table, column string) bool {
	vals, ok := t.Column(column)
	if !ok || len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		if _, ok := ParseFloat(v); !ok {
			return false
		}
	}
	return true
}

func project(t *Table, cols []int) *Table {
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = t.Headers[c]
	}
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]string, len(cols))
		for j, c := range cols {
			vals[j] = r.Values[c]
		}
		rows[i] = Row{SampleID: r.SampleID, Values: vals}
	}
	return mustTable(headers, rows, t.Comments)
}

func cloneTable(t *Table) *Table {
	return mustTable(append([]string(nil), t.Headers...), t.copyRows(), t.Comments)
}
