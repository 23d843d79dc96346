// Package biplot projects taxa into the sample ordination space.
//
// Each taxon is placed at the abundance-weighted average of the sample
// positions and scored by its prevalence across samples. Only the most
// prevalent taxa are usually drawn.
package biplot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/ordination"
	"github.com/matzehuels/ordiview/pkg/taxa"
)

// Entry is one projected taxon.
type Entry struct {
	Lineage    string
	Position   [3]float64
	Prevalence float64 // in [0, 1]
}

// Result holds the projected taxa, most prevalent first.
type Result struct {
	Entries []Entry
	Coords  *mat.Dense // taxa × axes, full positions
	Counts  *mat.Dense // taxa × samples, rows matching Entries
}

// Normalize turns counts (taxa × samples) into per-taxon weights: each sample
// column is scaled to relative abundance, then each taxon row to sum to one.
// Zero sums stay zero.
func Normalize(counts mat.Matrix) *mat.Dense {
	rows, cols := counts.Dims()
	out := mat.DenseCopyOf(counts)
	for c := 0; c < cols; c++ {
		if sum := mat.Sum(out.ColView(c)); sum != 0 {
			for r := 0; r < rows; r++ {
				out.Set(r, c, out.At(r, c)/sum)
			}
		}
	}
	for r := 0; r < rows; r++ {
		if sum := mat.Sum(out.RowView(r)); sum != 0 {
			for c := 0; c < cols; c++ {
				out.Set(r, c, out.At(r, c)/sum)
			}
		}
	}
	return out
}

// Positions multiplies per-taxon weights (taxa × samples) by the sample
// coordinates (samples × axes).
func Positions(weights, coords mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(weights, coords)
	return &out
}

// Prevalence sums the relative abundance of every taxon across samples and
// min-max scales the sums to [0, 1]. When every taxon has the same sum they
// all score 1.
func Prevalence(counts mat.Matrix) []float64 {
	rows, cols := counts.Dims()
	rel := mat.DenseCopyOf(counts)
	for c := 0; c < cols; c++ {
		if sum := mat.Sum(rel.ColView(c)); sum != 0 {
			for r := 0; r < rows; r++ {
				rel.Set(r, c, rel.At(r, c)/sum)
			}
		}
	}

	out := make([]float64, rows)
	for r := range out {
		out[r] = mat.Sum(rel.RowView(r))
	}
	lo, hi := out[0], out[0]
	for _, v := range out {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	for r, v := range out {
		if hi == lo {
			out[r] = 1
		} else {
			out[r] = (v - lo) / (hi - lo)
		}
	}
	return out
}

// TopN orders taxa by descending prevalence (stable) and keeps the first n.
// n <= 0 or n beyond the number of taxa keeps all. The returned slices and
// matrices are new.
func TopN(coords, counts mat.Matrix, lineages []string, prevalence []float64, n int) (*mat.Dense, *mat.Dense, []string, []float64) {
	order := make([]int, len(prevalence))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return prevalence[order[a]] > prevalence[order[b]]
	})
	if n > 0 && n < len(order) {
		order = order[:n]
	}

	outCoords := selectRows(coords, order)
	outCounts := selectRows(counts, order)
	outLineages := make([]string, len(order))
	outPrev := make([]float64, len(order))
	for i, r := range order {
		outLineages[i] = lineages[r]
		outPrev[i] = prevalence[r]
	}
	return outCoords, outCounts, outLineages, outPrev
}

// Compute projects a taxa table onto an ordination and keeps the n most
// prevalent taxa. Table columns are matched to the ordination's samples.
func Compute(table *taxa.Table, res *ordination.Result, n int) (*Result, error) {
	if table.Features() <= 1 {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"biplots need more than one taxon, the table has %d", table.Features())
	}
	if res.Axes() < 3 {
		return nil, errors.New(errors.ErrCodeConfiguration, "biplots need at least 3 axes, got %d", res.Axes())
	}
	aligned, err := table.SelectSamples(res.SampleIDs)
	if err != nil {
		return nil, err
	}

	positions := Positions(Normalize(aligned.Counts), res.Coords)
	prevalence := Prevalence(aligned.Counts)
	lineages := make([]string, aligned.Features())
	for i := range lineages {
		lineages[i] = aligned.LineageLabel(i)
	}

	coords, counts, lineages, prevalence := TopN(positions, aligned.Counts, lineages, prevalence, n)
	out := &Result{Coords: coords, Counts: counts, Entries: make([]Entry, len(lineages))}
	for i := range out.Entries {
		out.Entries[i] = Entry{
			Lineage:    lineages[i],
			Position:   [3]float64{coords.At(i, 0), coords.At(i, 1), coords.At(i, 2)},
			Prevalence: prevalence[i],
		}
	}
	return out, nil
}

// ScoresText renders the taxa positions as a tab-delimited table with one
// "pc<k>" column per axis, each value with the given number of decimals.
func ScoresText(r *Result, decimals int) []byte {
	_, cols := r.Coords.Dims()
	var b strings.Builder
	b.WriteString("#Taxon")
	for c := 1; c <= cols; c++ {
		fmt.Fprintf(&b, "\tpc%d", c)
	}
	b.WriteByte('\n')
	for i, e := range r.Entries {
		b.WriteString(e.Lineage)
		for c := 0; c < cols; c++ {
			b.WriteByte('\t')
			b.WriteString(strconv.FormatFloat(r.Coords.At(i, c), 'f', decimals, 64))
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func selectRows(m mat.Matrix, rows []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		for c := 0; c < cols; c++ {
			out.Set(i, c, m.At(r, c))
		}
	}
	return out
}
