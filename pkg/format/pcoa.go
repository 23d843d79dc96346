package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

// Extents reports the ellipsoid size of a sample along the first three axes.
type Extents interface {
	Extent3(sampleID string) ([3]float64, bool)
}

// PCoA writes the sphere positions, ellipsoid sizes (when ext is non-nil),
// scene bounds and axis labels for the first axes columns of res.
func PCoA(res *ordination.Result, ext Extents, axes int, opts Options) (string, error) {
	if axes < errors.MinAxes || axes > res.Axes() {
		return "", errors.New(errors.ErrCodeLogic, "cannot display %d axes of an ordination with %d", axes, res.Axes())
	}

	var b strings.Builder
	rows := res.Samples()

	b.WriteString("var g_spherePositions = new Array();\n")
	if ext != nil {
		b.WriteString("var g_ellipsesDimensions = new Array();\n")
	}
	for r, id := range res.SampleIDs {
		row := res.Row(r)
		fmt.Fprintf(&b, "g_spherePositions[%s] = { 'name': %s, 'color': 0, 'x': %s, 'y': %s, 'z': %s",
			quote(id), quote(id), opts.coord(row[0]), opts.coord(row[1]), opts.coord(row[2]))
		for c := 0; c < axes; c++ {
			fmt.Fprintf(&b, ", 'P%d': %s", c+1, opts.coord(row[c]))
		}
		b.WriteString(" };\n")
	}
	if ext != nil {
		for r, id := range res.SampleIDs {
			size, ok := ext.Extent3(id)
			if !ok {
				return "", errors.New(errors.ErrCodeInternal, "no ellipsoid for sample %q", id)
			}
			row := res.Row(r)
			fmt.Fprintf(&b, "g_ellipsesDimensions[%s] = { 'name': %s, 'color': 0, 'width': %s, 'height': %s, 'length': %s, 'x': %s, 'y': %s, 'z': %s };\n",
				quote(id), quote(id), opts.coord(size[0]), opts.coord(size[1]), opts.coord(size[2]),
				opts.coord(row[0]), opts.coord(row[1]), opts.coord(row[2]))
		}
	}

	var lo, hi [3]float64
	maximum := 0.0
	for c := 0; c < 3; c++ {
		lo[c], hi[c] = math.Inf(1), math.Inf(-1)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < axes; c++ {
			v := res.Coords.At(r, c)
			if c < 3 {
				lo[c] = math.Min(lo[c], v)
				hi[c] = math.Max(hi[c], v)
			}
			maximum = math.Max(maximum, math.Abs(v))
		}
	}

	fmt.Fprintf(&b, "var g_segments = %d, g_rings = %d, g_radius = %s;\n",
		opts.Segments, opts.Segments, opts.coord(SphereRadius(res, opts)))
	for c, axis := range []string{"x", "y", "z"} {
		fmt.Fprintf(&b, "var g_%sAxisLength = %s;\n", axis, opts.coord(math.Abs(hi[c])+math.Abs(lo[c])))
	}
	for c, axis := range []string{"x", "y", "z"} {
		fmt.Fprintf(&b, "var g_%sMinimumValue = %s;\n", axis, opts.coord(lo[c]))
	}
	for c, axis := range []string{"x", "y", "z"} {
		fmt.Fprintf(&b, "var g_%sMaximumValue = %s;\n", axis, opts.coord(hi[c]))
	}
	fmt.Fprintf(&b, "var g_maximum = %s;\n", opts.coord(maximum))

	labels := AxisLabels(res, axes, opts)
	for c := 0; c < 3; c++ {
		fmt.Fprintf(&b, "var g_pc%dLabel = %s;\n", c+1, quote(labels[c]))
	}
	fmt.Fprintf(&b, "var g_pcoaLabels = [%s];\n", quoteAll(labels))
	fmt.Fprintf(&b, "var g_number_of_custom_axes = %d;\n", len(res.CustomAxes))

	fractions, rounded := explained(res, axes, opts)
	fmt.Fprintf(&b, "var g_fractionExplained = [%s];\n", strings.Join(fractions, ", "))
	fmt.Fprintf(&b, "var g_fractionExplainedRounded = [%s];\n", strings.Join(rounded, ", "))
	return b.String(), nil
}

// AxisLabels names the first axes columns: custom axes by their column name,
// the others as "PC<k> (<percent> %)" counting from the first non-custom axis.
func AxisLabels(res *ordination.Result, axes int, opts Options) []string {
	pct := res.Percentages()
	custom := len(res.CustomAxes)
	labels := make([]string, axes)
	for c := 0; c < axes; c++ {
		if c < custom {
			labels[c] = res.CustomAxes[c]
			continue
		}
		labels[c] = fmt.Sprintf("PC%d (%s %%)", c+1-custom, opts.label(pct[c]))
	}
	return labels
}

// explained returns the variance explained per displayed axis as fractions
// and as rounded percentages. Custom axes report the first ordination axis.
func explained(res *ordination.Result, axes int, opts Options) ([]string, []string) {
	custom := len(res.CustomAxes)
	fractions := make([]string, axes)
	rounded := make([]string, axes)
	for c := 0; c < axes; c++ {
		src := c
		if c < custom {
			src = custom
		}
		var p float64
		if src < len(res.ProportionExplained) {
			p = res.ProportionExplained[src]
		}
		fractions[c] = opts.coord(p)
		rounded[c] = opts.percent(p * 100)
	}
	return fractions, rounded
}
