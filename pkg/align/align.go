// Package align reconciles sample identifiers between ordinations and a
// metadata table.
//
// The intersection of coordinate ids and metadata ids is the only coverage
// gate. When it is empty the run fails with EMPTY_INTERSECTION. When it is
// smaller than the coordinate set the run fails with ALIGNMENT_ERROR, unless
// missing samples are ignored, in which case every replicate is filtered down
// to the intersection.
package align

import (
	"sort"
	"strings"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

// maxListed caps the number of sample ids quoted in error messages.
const maxListed = 10

// Reconciled is the outcome of Reconcile.
type Reconciled struct {
	Replicates []*ordination.Result // master first
	Shared     []string             // ids present in both inputs, master order
	Missing    []string             // coordinate ids absent from the metadata
}

// Intersect returns the coordinate ids also present in metaIDs, in
// coordinate order.
func Intersect(coordIDs, metaIDs []string) []string {
	meta := make(map[string]struct{}, len(metaIDs))
	for _, id := range metaIDs {
		meta[id] = struct{}{}
	}
	var out []string
	for _, id := range coordIDs {
		if _, ok := meta[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Reconcile checks replicate consistency and metadata coverage.
func Reconcile(replicates []*ordination.Result, metaIDs []string, ignoreMissing bool) (*Reconciled, error) {
	if len(replicates) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "no coordinates to reconcile")
	}
	if err := ValidateReplicates(replicates); err != nil {
		return nil, err
	}

	master := replicates[0]
	shared := Intersect(master.SampleIDs, metaIDs)
	if len(shared) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyIntersection,
			"none of the %s in the coordinates appear in the mapping file",
			errors.Plural(master.Samples(), "sample", "samples"))
	}

	out := &Reconciled{Replicates: replicates, Shared: shared}
	if len(shared) == master.Samples() {
		return out, nil
	}

	out.Missing = difference(master.SampleIDs, shared)
	if !ignoreMissing {
		return nil, errors.New(errors.ErrCodeAlignment,
			"the mapping file is missing %s present in the coordinates (%s); "+
				"pass --ignore-missing-samples to drop them",
			errors.Plural(len(out.Missing), "sample", "samples"), listIDs(out.Missing))
	}

	filtered, err := FilterReplicates(replicates, shared, false)
	if err != nil {
		return nil, err
	}
	out.Replicates = filtered
	return out, nil
}

// ValidateReplicates checks that every replicate holds the master's sample
// set. Order may differ.
func ValidateReplicates(replicates []*ordination.Result) error {
	if len(replicates) < 2 {
		return nil
	}
	master := replicates[0]
	want := make(map[string]struct{}, master.Samples())
	for _, id := range master.SampleIDs {
		want[id] = struct{}{}
	}
	for i, rep := range replicates[1:] {
		same := rep.Samples() == len(want)
		if same {
			for _, id := range rep.SampleIDs {
				if _, ok := want[id]; !ok {
					same = false
					break
				}
			}
		}
		if !same {
			return errors.New(errors.ErrCodeAlignment,
				"replicate %d does not contain the same samples as the master coordinates", i+1)
		}
	}
	return nil
}

// FilterSamples keeps the rows whose id is in keep, or removes them when
// negate is set. Row order is preserved. Removing every row fails with
// ALL_FILTERED.
func FilterSamples(res *ordination.Result, keep []string, negate bool) (*ordination.Result, error) {
	set := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		set[id] = struct{}{}
	}
	var rows []int
	for i, id := range res.SampleIDs {
		if _, ok := set[id]; ok != negate {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeAllFiltered,
			"filtering removed all %s from the coordinates", errors.Plural(res.Samples(), "sample", "samples"))
	}
	return res.SelectRows(rows), nil
}

// FilterReplicates applies FilterSamples to every replicate independently.
func FilterReplicates(replicates []*ordination.Result, keep []string, negate bool) ([]*ordination.Result, error) {
	out := make([]*ordination.Result, len(replicates))
	for i, rep := range replicates {
		f, err := FilterSamples(rep, keep, negate)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func difference(all, subset []string) []string {
	in := make(map[string]struct{}, len(subset))
	for _, id := range subset {
		in[id] = struct{}{}
	}
	var out []string
	for _, id := range all {
		if _, ok := in[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func listIDs(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	if len(sorted) > maxListed {
		return strings.Join(sorted[:maxListed], ", ") + ", ..."
	}
	return strings.Join(sorted, ", ")
}
