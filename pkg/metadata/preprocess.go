package metadata

import "strings"

// PreprocessOptions selects the reshaping applied before serialization.
type PreprocessOptions struct {
	// Columns to keep. Names of the form "A&&B" are merged first. Empty keeps
	// every column.
	Columns []string

	DropUnique   bool // remove columns whose values are all distinct
	DropConstant bool // remove columns holding a single value

	// Clones repeats the rows for comparison plots; 0 disables cloning.
	Clones int
}

// Preprocess merges, drops, keeps and clones columns in that order. Columns
// named explicitly in opts.Columns survive the unique and constant drops.
func Preprocess(t *Table, opts PreprocessOptions) (*Table, error) {
	out := cloneTable(t)

	var err error
	for _, c := range opts.Columns {
		if !strings.Contains(c, MergeSeparator) {
			continue
		}
		if out, err = MergeColumns(out, c); err != nil {
			return nil, err
		}
	}

	if opts.DropUnique || opts.DropConstant {
		dropped := out
		if opts.DropUnique {
			dropped = DropUniqueColumns(dropped)
		}
		if opts.DropConstant {
			dropped = DropConstantColumns(dropped)
		}
		keep := append([]string(nil), dropped.Headers[1:]...)
		for _, c := range opts.Columns {
			if out.HasColumn(c) && !dropped.HasColumn(c) {
				keep = append(keep, c)
			}
		}
		if out, err = KeepColumns(out, keep); err != nil {
			return nil, err
		}
	}

	if len(opts.Columns) > 0 {
		var keep []string
		for _, c := range opts.Columns {
			if c != out.IDColumn() {
				keep = append(keep, c)
			}
		}
		if out, err = KeepColumns(out, keep); err != nil {
			return nil, err
		}
	}

	if opts.Clones > 0 {
		out = Clone(out, opts.Clones)
	}
	return out, nil
}
