package metadata

import (
	"math"
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"

	"github.com/matzehuels/ordiview/pkg/errors"
)

// Float parses a cell as a number. Cells that are not finite numbers yield an
// invalid null.Float.
func Float(v string) null.Float {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// ParseFloat is Float unpacked into a value and an ok flag.
func ParseFloat(v string) (float64, bool) {
	f := Float(v)
	return f.Float64, f.Valid
}

// NumericColumn parses every value of a column. Unknown columns are a
// configuration error; non-numeric cells come back invalid.
func NumericColumn(t *Table, column string) ([]null.Float, error) {
	vals, ok := t.Column(column)
	if !ok {
		return nil, errors.New(errors.ErrCodeConfiguration, "column %q is not in the mapping file", column)
	}
	out := make([]null.Float, len(vals))
	for i, v := range vals {
		out[i] = Float(v)
	}
	return out, nil
}
