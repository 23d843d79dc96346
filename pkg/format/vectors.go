package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/metadata"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

// Vectors writes g_vectorPositions: samples grouped by the value of
// connectBy, groups in order of first appearance. When sortBy is set each
// group is ordered by that numeric column (stable); otherwise the ordination
// order is kept.
func Vectors(t *metadata.Table, res *ordination.Result, connectBy, sortBy string, opts Options) (string, error) {
	if !t.HasColumn(connectBy) {
		return "", errors.New(errors.ErrCodeConfiguration, "vector category %q is not in the mapping file", connectBy)
	}
	if sortBy != "" && !t.HasColumn(sortBy) {
		return "", errors.New(errors.ErrCodeConfiguration, "vector sorting category %q is not in the mapping file", sortBy)
	}

	type member struct {
		row int
		key float64
	}
	var order []string
	groups := make(map[string][]member)
	for r, id := range res.SampleIDs {
		group, ok := t.Value(id, connectBy)
		if !ok {
			continue
		}
		m := member{row: r}
		if sortBy != "" {
			raw, _ := t.Value(id, sortBy)
			v, ok := metadata.ParseFloat(raw)
			if !ok {
				return "", errors.New(errors.ErrCodeConfiguration,
					"vector sorting category %q must be numeric, sample %q has %q", sortBy, id, raw)
			}
			m.key = v
		}
		if _, seen := groups[group]; !seen {
			order = append(order, group)
		}
		groups[group] = append(groups[group], m)
	}

	var b strings.Builder
	b.WriteString("var g_vectorPositions = new Array();\n")
	for _, group := range order {
		members := groups[group]
		if sortBy != "" {
			sort.SliceStable(members, func(i, j int) bool { return members[i].key < members[j].key })
		}
		g := quote(group)
		fmt.Fprintf(&b, "g_vectorPositions[%s] = new Array();\n", g)
		for _, m := range members {
			row := res.Row(m.row)
			fmt.Fprintf(&b, "g_vectorPositions[%s][%s] = [%s, %s, %s];\n",
				g, quote(res.SampleIDs[m.row]), opts.coord(row[0]), opts.coord(row[1]), opts.coord(row[2]))
		}
	}
	return b.String(), nil
}
