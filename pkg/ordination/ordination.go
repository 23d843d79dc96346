package ordination

import (
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/ordiview/pkg/errors"
)

// Result is a parsed ordination: one row of coordinates per sample, one column
// per axis. Axes are ordered by descending variance explained, except for the
// CustomAxes which, when present, occupy the leading columns.
type Result struct {
	SampleIDs           []string
	Coords              *mat.Dense
	Eigenvalues         []float64
	ProportionExplained []float64 // fractions in [0, 1]
	CustomAxes          []string  // names of the leading injected columns
}

// New builds a Result and checks its invariants.
func New(ids []string, coords *mat.Dense, eigvals, proportions []float64) (*Result, error) {
	r := &Result{
		SampleIDs:           ids,
		Coords:              coords,
		Eigenvalues:         eigvals,
		ProportionExplained: proportions,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Samples returns the number of samples (rows).
func (r *Result) Samples() int { return len(r.SampleIDs) }

// Axes returns the number of axes (columns).
func (r *Result) Axes() int {
	if r.Coords == nil {
		return 0
	}
	_, c := r.Coords.Dims()
	return c
}

// Validate checks the shape invariants: one row per sample id, one
// eigenvalue and one proportion per column, and unique sample ids.
func (r *Result) Validate() error {
	if r.Coords == nil || len(r.SampleIDs) == 0 {
		return errors.New(errors.ErrCodeInternal, "ordination has no samples")
	}
	rows, cols := r.Coords.Dims()
	if rows != len(r.SampleIDs) {
		return errors.New(errors.ErrCodeInternal, "ordination has %s but %d coordinate rows",
			errors.Plural(len(r.SampleIDs), "sample id", "sample ids"), rows)
	}
	if len(r.Eigenvalues) != cols || len(r.ProportionExplained) != cols {
		return errors.New(errors.ErrCodeInternal, "ordination has %d axes but %d eigenvalues and %d proportions",
			cols, len(r.Eigenvalues), len(r.ProportionExplained))
	}
	if len(r.CustomAxes) > cols {
		return errors.New(errors.ErrCodeInternal, "ordination has more custom axes (%d) than columns (%d)", len(r.CustomAxes), cols)
	}
	seen := make(map[string]struct{}, len(r.SampleIDs))
	for _, id := range r.SampleIDs {
		if _, dup := seen[id]; dup {
			return errors.New(errors.ErrCodeParse, "duplicate sample id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	out := &Result{
		SampleIDs:           append([]string(nil), r.SampleIDs...),
		Eigenvalues:         append([]float64(nil), r.Eigenvalues...),
		ProportionExplained: append([]float64(nil), r.ProportionExplained...),
		CustomAxes:          append([]string(nil), r.CustomAxes...),
	}
	if r.Coords != nil {
		out.Coords = mat.DenseCopyOf(r.Coords)
	}
	return out
}

// Percentages returns the variance explained per axis as percentages.
func (r *Result) Percentages() []float64 {
	out := make([]float64, len(r.ProportionExplained))
	for i, p := range r.ProportionExplained {
		out[i] = p * 100
	}
	return out
}

// Index maps each sample id to its row.
func (r *Result) Index() map[string]int {
	idx := make(map[string]int, len(r.SampleIDs))
	for i, id := range r.SampleIDs {
		idx[id] = i
	}
	return idx
}

// Row returns a copy of the coordinates of row i.
func (r *Result) Row(i int) []float64 {
	return mat.Row(nil, i, r.Coords)
}

// SelectRows returns a new Result holding only the given rows, in the given order.
// The caller guarantees rows is non-empty.
func (r *Result) SelectRows(rows []int) *Result {
	cols := r.Axes()
	data := make([]float64, 0, len(rows)*cols)
	ids := make([]string, 0, len(rows))
	for _, i := range rows {
		ids = append(ids, r.SampleIDs[i])
		data = append(data, r.Row(i)...)
	}
	return &Result{
		SampleIDs:           ids,
		Coords:              mat.NewDense(len(rows), cols, data),
		Eigenvalues:         append([]float64(nil), r.Eigenvalues...),
		ProportionExplained: append([]float64(nil), r.ProportionExplained...),
		CustomAxes:          append([]string(nil), r.CustomAxes...),
	}
}
