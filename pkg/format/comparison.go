package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

var cloneSuffix = regexp.MustCompile(`_[0-9]+$`)

// ComparisonGroup is one logical sample across the compared files.
type ComparisonGroup struct {
	Name string
	Rows []int // rows of the cloned ordination, in file order
}

// GroupComparison groups cloned ids ("name_0", "name_1", ...) by name, with
// the numeric suffix stripped once. Groups appear in order of first
// appearance. The ids must split evenly into groups of clones.
func GroupComparison(ids []string, clones int) ([]ComparisonGroup, error) {
	if clones <= 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "comparison needs at least one coordinate file, got %d", clones)
	}
	if len(ids)%clones != 0 {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"%s cannot be split across %s", errors.Plural(len(ids), "sample", "samples"),
			errors.Plural(clones, "coordinate file", "coordinate files"))
	}

	var groups []ComparisonGroup
	index := make(map[string]int)
	for r, id := range ids {
		name := cloneSuffix.ReplaceAllString(id, "")
		g, ok := index[name]
		if !ok {
			g = len(groups)
			index[name] = g
			groups = append(groups, ComparisonGroup{Name: name})
		}
		groups[g].Rows = append(groups[g].Rows, r)
	}
	for _, g := range groups {
		if len(g.Rows) != clones {
			return nil, errors.New(errors.ErrCodeConfiguration,
				"sample %q appears in %d of %d coordinate files", g.Name, len(g.Rows), clones)
		}
	}
	return groups, nil
}

// Comparison writes g_comparisonPositions and g_isSerialComparisonPlot. A
// serial comparison connects file i to file i+1; otherwise every file is
// connected to the first. clones == 0 writes only the empty declarations.
func Comparison(res *ordination.Result, clones int, serial bool, opts Options) (string, error) {
	var b strings.Builder
	b.WriteString("var g_comparisonPositions = new Array();\n")
	fmt.Fprintf(&b, "var g_isSerialComparisonPlot = %t;\n", serial)
	if clones == 0 {
		return b.String(), nil
	}

	groups, err := GroupComparison(res.SampleIDs, clones)
	if err != nil {
		return "", err
	}
	for _, g := range groups {
		points := make([]string, len(g.Rows))
		for i, r := range g.Rows {
			row := res.Row(r)
			points[i] = fmt.Sprintf("[%s, %s, %s]", opts.coord(row[0]), opts.coord(row[1]), opts.coord(row[2]))
		}
		fmt.Fprintf(&b, "g_comparisonPositions[%s] = [%s];\n", quote(g.Name), strings.Join(points, ", "))
	}
	return b.String(), nil
}
