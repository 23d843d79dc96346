// Package transform reshapes ordination coordinates before serialization:
// custom metadata axes, removal of samples lacking custom values, rescaling,
// and cloning of several coordinate files into one comparison set.
package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/guregu/null.v3"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/metadata"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

// CheckCustomAxes rejects more than one custom axis when several coordinate
// files are combined.
func CheckCustomAxes(replicates int, names []string) error {
	if replicates > 1 && len(names) > 1 {
		return errors.New(errors.ErrCodeConfiguration,
			"only one custom axis can be used with jackknifed or compared coordinates, got %d", len(names))
	}
	return nil
}

// InjectCustomAxes prepends one column per metadata column in names, keeping
// the order of names. Values that are missing or not numeric become NaN and
// are expected to be dropped by RemoveMissing. Custom axes carry a zero
// eigenvalue and proportion.
func InjectCustomAxes(t *metadata.Table, res *ordination.Result, names []string) (*ordination.Result, error) {
	if len(names) == 0 {
		return res.Clone(), nil
	}

	columns := make([][]null.Float, len(names))
	for i, name := range names {
		col, err := customColumn(t, res.SampleIDs, name)
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}

	rows, cols := res.Samples(), res.Axes()
	n := len(names)
	coords := mat.NewDense(rows, n+cols, nil)
	for r := 0; r < rows; r++ {
		for c, col := range columns {
			v := math.NaN()
			if col[r].Valid {
				v = col[r].Float64
			}
			coords.Set(r, c, v)
		}
		for c := 0; c < cols; c++ {
			coords.Set(r, n+c, res.Coords.At(r, c))
		}
	}

	out := &ordination.Result{
		SampleIDs:           append([]string(nil), res.SampleIDs...),
		Coords:              coords,
		Eigenvalues:         append(make([]float64, n), res.Eigenvalues...),
		ProportionExplained: append(make([]float64, n), res.ProportionExplained...),
		CustomAxes:          append(append([]string(nil), names...), res.CustomAxes...),
	}
	return out, nil
}

func customColumn(t *metadata.Table, ids []string, name string) ([]null.Float, error) {
	if !t.HasColumn(name) {
		return nil, errors.New(errors.ErrCodeConfiguration, "custom axis %q is not a column of the mapping file", name)
	}
	out := make([]null.Float, len(ids))
	valid := 0
	for i, id := range ids {
		v, _ := t.Value(id, name)
		out[i] = metadata.Float(v)
		if out[i].Valid {
			valid++
		}
	}
	if valid == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "custom axis %q has no numeric values", name)
	}
	return out, nil
}

// RemoveMissing drops every sample whose custom-axis values contain NaN and
// returns the dropped ids. Removing every sample fails with ALL_FILTERED.
func RemoveMissing(res *ordination.Result) (*ordination.Result, []string, error) {
	n := len(res.CustomAxes)
	var keep []int
	var dropped []string
	for r := 0; r < res.Samples(); r++ {
		missing := false
		for c := 0; c < n; c++ {
			if math.IsNaN(res.Coords.At(r, c)) {
				missing = true
				break
			}
		}
		if missing {
			dropped = append(dropped, res.SampleIDs[r])
		} else {
			keep = append(keep, r)
		}
	}
	if len(keep) == 0 {
		return nil, dropped, errors.New(errors.ErrCodeAllFiltered,
			"every sample is missing a custom axis value")
	}
	if len(dropped) == 0 {
		return res.Clone(), nil, nil
	}
	return res.SelectRows(keep), dropped, nil
}

// RescaleCustomAxes maps each of the first n columns onto [min(PC1), 2*max(PC1)],
// where PC1 is column n. A constant column maps every sample to min(PC1).
func RescaleCustomAxes(res *ordination.Result, n int) (*ordination.Result, error) {
	if n == 0 {
		return res.Clone(), nil
	}
	if res.Axes() <= n {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"%s leave no ordination axis to scale against", errors.Plural(n, "custom axis", "custom axes"))
	}

	out := res.Clone()
	pc1 := mat.Col(nil, n, out.Coords)
	toMin, toMax := minMax(pc1)
	toMax *= 2

	for c := 0; c < n; c++ {
		col := mat.Col(nil, c, out.Coords)
		fromMin, fromMax := minMax(col)
		for r, x := range col {
			scaled := toMin
			if fromMax != fromMin {
				scaled = (x-fromMin)/(fromMax-fromMin)*(toMax-toMin) + toMin
			}
			out.Coords.Set(r, c, scaled)
		}
	}
	return out, nil
}

// CloneForComparison stacks several coordinate files into one result. Rows
// of file i get the suffix "_<i>" and the master's eigenvalues are kept.
func CloneForComparison(replicates []*ordination.Result) (*ordination.Result, error) {
	if len(replicates) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "no coordinates to compare")
	}
	master := replicates[0]
	cols := master.Axes()

	var ids []string
	var data []float64
	for i, rep := range replicates {
		if rep.Axes() != cols {
			return nil, errors.New(errors.ErrCodeConfiguration,
				"comparison file %d has %d axes, the master has %d", i, rep.Axes(), cols)
		}
		for r, id := range rep.SampleIDs {
			ids = append(ids, fmt.Sprintf("%s_%d", id, i))
			data = append(data, rep.Row(r)...)
		}
	}

	out, err := ordination.New(ids, mat.NewDense(len(ids), cols, data),
		append([]float64(nil), master.Eigenvalues...),
		append([]float64(nil), master.ProportionExplained...))
	if err != nil {
		return nil, err
	}
	out.CustomAxes = append([]string(nil), master.CustomAxes...)
	return out, nil
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}
