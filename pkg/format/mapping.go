package format

import (
	"fmt"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/metadata"
)

// Metadata writes the mapping-file declarations for the given columns, or
// for every column when columns is empty. The sample id column is emitted
// only when it is listed (or columns is empty).
func Metadata(t *metadata.Table, columns []string) (string, error) {
	if len(columns) == 0 {
		columns = t.Headers
	}
	idx := make([]int, 0, len(columns))
	names := make([]string, 0, len(columns))
	for _, name := range columns {
		c, ok := t.ColumnIndex(name)
		if !ok {
			return "", errors.New(errors.ErrCodeConfiguration, "column %q is not in the mapping file", name)
		}
		idx = append(idx, c)
		names = append(names, name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "var g_mappingFileHeaders = [%s];\n", quoteAll(names))

	records := make([]string, len(t.Rows))
	vals := make([]string, len(idx))
	for i, row := range t.Rows {
		for j, c := range idx {
			vals[j] = row.Values[c]
		}
		records[i] = fmt.Sprintf("%s: [%s]", quote(row.SampleID), quoteAll(vals))
	}
	fmt.Fprintf(&b, "var g_mappingFileData = { %s };\n", strings.Join(records, ","))

	var animatable []string
	for j, c := range idx {
		if c != 0 && metadata.IsNumericColumn(t, t.Headers[c]) {
			animatable = append(animatable, names[j])
		}
	}
	fmt.Fprintf(&b, "var g_animatableMappingFileHeaders = [%s];\n", quoteAll(animatable))
	return b.String(), nil
}
