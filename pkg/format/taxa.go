package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/ordiview/pkg/biplot"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

// Taxa writes the biplot taxa positions. Each sphere radius scales the
// sample radius between MinTaxonRadius and MaxTaxonRadius by prevalence.
func Taxa(entries []biplot.Entry, radius float64, opts Options) string {
	var b strings.Builder
	b.WriteString("var g_taxaPositions = new Array();\n")
	for i, e := range entries {
		r := radius * (opts.MinTaxonRadius + (opts.MaxTaxonRadius-opts.MinTaxonRadius)*e.Prevalence)
		fmt.Fprintf(&b, "g_taxaPositions['%d'] = { 'lineage': %s, 'x': %s, 'y': %s, 'z': %s, 'radius': %s };\n",
			i, quote(e.Lineage),
			opts.coord(e.Position[0]), opts.coord(e.Position[1]), opts.coord(e.Position[2]),
			opts.coord(r))
	}
	return b.String()
}

// SphereRadius is the sample sphere radius PCoA writes for res.
func SphereRadius(res *ordination.Result, opts Options) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for r := 0; r < res.Samples(); r++ {
		v := res.Coords.At(r, 0)
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return (hi - lo) * opts.RadiusFraction
}
