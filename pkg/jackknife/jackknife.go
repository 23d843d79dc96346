// Package jackknife summarizes replicate ordinations into a mean ordination
// with per-sample, per-axis confidence ranges used to draw ellipsoids.
//
// PCoA axes carry an arbitrary sign, so every replicate is first oriented
// against the master axis by axis ([FlipSigns]). [Summarize] then averages
// the oriented replicates and measures their spread with one of three
// methods:
//
//   - IQR: medians of the lower and upper halves of the sorted values
//   - ideal_fourths: interpolated fourths, undefined (NaN) below 3 replicates
//   - sdev: sample standard deviation, reported as ±sd/2
//
// Ranges are stored as offsets from the mean, so Low <= 0 <= High for the
// quartile methods.
package jackknife

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

// Method selects the dispersion statistic.
type Method string

const (
	MethodIQR          Method = "IQR"
	MethodIdealFourths Method = "ideal_fourths"
	MethodStdDev       Method = "sdev"

	DefaultMethod = MethodIQR
)

const minIdealFourthsReps = 3

// Methods lists the accepted method names.
var Methods = []Method{MethodIQR, MethodIdealFourths, MethodStdDev}

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeConfiguration,
		"invalid ellipsoid method %q (must be one of: IQR, ideal_fourths, sdev)", s)
}

// Summary is the outcome of Summarize.
type Summary struct {
	SampleIDs   []string
	Mean        *mat.Dense
	Low         *mat.Dense // offsets from Mean
	High        *mat.Dense // offsets from Mean
	Eigenvalues []float64  // mean over replicates
	Replicates  int

	master *ordination.Result
}

// Result returns the mean ordination. Proportions and custom axes are the
// master's.
func (s *Summary) Result() *ordination.Result {
	return &ordination.Result{
		SampleIDs:           append([]string(nil), s.SampleIDs...),
		Coords:              mat.DenseCopyOf(s.Mean),
		Eigenvalues:         append([]float64(nil), s.Eigenvalues...),
		ProportionExplained: append([]float64(nil), s.master.ProportionExplained...),
		CustomAxes:          append([]string(nil), s.master.CustomAxes...),
	}
}

// Extent returns |High-Low| for sample row r and axis c.
func (s *Summary) Extent(r, c int) float64 {
	return math.Abs(s.High.At(r, c) - s.Low.At(r, c))
}

// Extent3 returns the extents of sampleID along the first three axes.
func (s *Summary) Extent3(sampleID string) ([3]float64, bool) {
	var out [3]float64
	for r, id := range s.SampleIDs {
		if id != sampleID {
			continue
		}
		for c := range out {
			out[c] = s.Extent(r, c)
		}
		return out, true
	}
	return out, false
}

// FlipSigns orients each column of replicate against the same column of
// master, keeping the sign with the smaller total absolute difference. Ties
// keep the original sign. Both matrices must have the same shape.
func FlipSigns(replicate, master mat.Matrix) *mat.Dense {
	rows, cols := replicate.Dims()
	out := mat.NewDense(rows, cols, nil)
	for c := 0; c < cols; c++ {
		var same, flipped float64
		for r := 0; r < rows; r++ {
			m, v := master.At(r, c), replicate.At(r, c)
			same += math.Abs(m - v)
			flipped += math.Abs(m + v)
		}
		sign := 1.0
		if same > flipped {
			sign = -1
		}
		for r := 0; r < rows; r++ {
			out.Set(r, c, sign*replicate.At(r, c))
		}
	}
	return out
}

// Summarize orients and summarizes replicates. replicates[0] is the master
// and takes part in the statistics; every replicate is reordered to the
// master's sample order first.
func Summarize(replicates []*ordination.Result, method Method) (*Summary, error) {
	if len(replicates) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "no replicates to summarize")
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	master := replicates[0]
	rows, cols := master.Samples(), master.Axes()
	index := master.Index()

	oriented := make([]*mat.Dense, len(replicates))
	for i, rep := range replicates {
		if rep.Axes() != cols {
			return nil, errors.New(errors.ErrCodeInternal,
				"replicate %d has %d axes, the master has %d", i, rep.Axes(), cols)
		}
		aligned, err := reorder(rep, index, rows)
		if err != nil {
			return nil, err
		}
		oriented[i] = FlipSigns(aligned, master.Coords)
	}

	s := &Summary{
		SampleIDs:  append([]string(nil), master.SampleIDs...),
		Mean:       mat.NewDense(rows, cols, nil),
		Low:        mat.NewDense(rows, cols, nil),
		High:       mat.NewDense(rows, cols, nil),
		Replicates: len(replicates),
		master:     master,
	}

	vals := make([]float64, len(oriented))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for i, m := range oriented {
				vals[i] = m.At(r, c)
			}
			mean, low, high := summarizeCell(vals, method)
			s.Mean.Set(r, c, mean)
			s.Low.Set(r, c, low)
			s.High.Set(r, c, high)
		}
	}

	s.Eigenvalues = make([]float64, cols)
	eig := make([]float64, len(replicates))
	for c := 0; c < cols; c++ {
		for i, rep := range replicates {
			eig[i] = rep.Eigenvalues[c]
		}
		m, _ := shifted(eig)
		s.Eigenvalues[c] = eig[0] + m
	}
	return s, nil
}

func reorder(rep *ordination.Result, index map[string]int, rows int) (*mat.Dense, error) {
	if rep.Samples() != rows {
		return nil, errors.New(errors.ErrCodeAlignment,
			"replicate has %s, the master has %d", errors.Plural(rep.Samples(), "sample", "samples"), rows)
	}
	out := mat.NewDense(rows, rep.Axes(), nil)
	for r, id := range rep.SampleIDs {
		target, ok := index[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeAlignment, "replicate sample %q is not in the master coordinates", id)
		}
		out.SetRow(target, rep.Row(r))
	}
	return out, nil
}

// summarizeCell returns the mean and the low/high offsets of vals.
// Statistics are computed on values shifted by vals[0] so that identical
// replicates give an exact mean and zero-width ranges.
func summarizeCell(vals []float64, method Method) (mean, low, high float64) {
	meanDelta, deltas := shifted(vals)
	mean = vals[0] + meanDelta

	switch method {
	case MethodStdDev:
		sd := stat.StdDev(deltas, nil)
		return mean, -sd / 2, sd / 2
	case MethodIdealFourths:
		sort.Float64s(deltas)
		lo, hi := idealFourths(deltas)
		return mean, lo - meanDelta, hi - meanDelta
	default:
		sort.Float64s(deltas)
		lo, hi := iqr(deltas)
		return mean, lo - meanDelta, hi - meanDelta
	}
}

// shifted returns the mean of vals shifted by vals[0], and the shifted values.
func shifted(vals []float64) (float64, []float64) {
	deltas := make([]float64, len(vals))
	for i, v := range vals {
		deltas[i] = v - vals[0]
	}
	return stat.Mean(deltas, nil), deltas
}

// iqr splits sorted values at the median (excluding it for odd counts) and
// returns the median of each half. A single value is its own range.
func iqr(sorted []float64) (float64, float64) {
	n := len(sorted)
	if n == 1 {
		return sorted[0], sorted[0]
	}
	lower := sorted[:n/2]
	upper := sorted[n/2:]
	if n%2 == 1 {
		upper = sorted[n/2+1:]
	}
	lo, _ := stats.Median(lower)
	hi, _ := stats.Median(upper)
	return lo, hi
}

// idealFourths interpolates the lower and upper fourths of sorted values.
func idealFourths(sorted []float64) (float64, float64) {
	n := len(sorted)
	if n < minIdealFourthsReps {
		return math.NaN(), math.NaN()
	}
	j, h := math.Modf(float64(n)/4 + 5.0/12.0)
	k := int(j)
	lo := (1-h)*sorted[k-1] + h*sorted[k]
	up := n - k
	hi := (1-h)*sorted[up] + h*sorted[up-1]
	return lo, hi
}
