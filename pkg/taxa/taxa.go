// Package taxa reads taxon (OTU) abundance tables used for biplots.
//
// The table is tab-delimited with one feature per row and one sample per
// column. The header is the first non-comment line, or a "#OTU ID" line
// within the first two lines. A trailing column named "Consensus Lineage",
// "OTU Metadata" or "taxonomy" (case and spaces ignored) holds a
// semicolon-separated lineage for every feature.
package taxa

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/ordiview/pkg/errors"
)

// lineageHeaders are the normalized names of a lineage column.
var lineageHeaders = map[string]bool{
	"consensuslineage": true,
	"otumetadata":      true,
	"taxonomy":         true,
}

// Table is a feature-by-sample abundance table.
type Table struct {
	SampleIDs  []string
	FeatureIDs []string
	Counts     *mat.Dense // features × samples
	Lineages   [][]string // empty when the table has no lineage column
}

// ParseOptions controls parsing.
type ParseOptions struct {
	RemoveEmptyRows bool // drop features whose counts are all zero
}

// ParseFile parses the table at path.
func ParseFile(path string, opts ParseOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", filepath.Base(path))
	}
	defer f.Close()

	t, err := Parse(f, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", filepath.Base(path))
	}
	return t, nil
}

// Parse reads a tab-delimited abundance table.
func Parse(r io.Reader, opts ParseOptions) (*Table, error) {
	var (
		t           Table
		data        []float64
		hasLineage  bool
		haveHeader  bool
		lineNumber  = -1
		sampleCount int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		lineNumber++
		// Only the line ending is stripped; a trailing empty lineage cell is
		// still a field.
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		legacyHeader := lineNumber <= 1 && strings.HasPrefix(line, "#OTU ID")
		if !haveHeader && (legacyHeader || !strings.HasPrefix(line, "#")) {
			ids, lineage, err := headerFields(strings.Split(line, "\t")[1:])
			if err != nil {
				return nil, err
			}
			t.SampleIDs, hasLineage, haveHeader = ids, lineage, true
			sampleCount = len(ids)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		if !hasLineage {
			line = strings.TrimRight(line, " \t")
		}
		fields := strings.Split(line, "\t")
		countFields := fields[1:]
		var lineage []string
		if hasLineage {
			if len(fields) < 2 {
				return nil, errors.New(errors.ErrCodeParse, "feature %q has no lineage", fields[0])
			}
			countFields = fields[1 : len(fields)-1]
			lineage = []string{}
			if cell := strings.TrimSpace(fields[len(fields)-1]); cell != "" {
				for _, part := range strings.Split(cell, ";") {
					lineage = append(lineage, strings.TrimSpace(part))
				}
			}
		}
		if len(countFields) != sampleCount {
			return nil, errors.New(errors.ErrCodeParse, "feature %q has %d counts, want %d", fields[0], len(countFields), sampleCount)
		}

		row := make([]float64, sampleCount)
		var sum float64
		nonNegative := true
		for i, f := range countFields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, errors.New(errors.ErrCodeParse, "feature %q: invalid count %q", fields[0], f)
			}
			row[i] = v
			sum += v
			nonNegative = nonNegative && v >= 0
		}
		if opts.RemoveEmptyRows && nonNegative && sum == 0 {
			continue
		}

		t.FeatureIDs = append(t.FeatureIDs, strings.TrimSpace(fields[0]))
		data = append(data, row...)
		if hasLineage {
			t.Lineages = append(t.Lineages, lineage)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read taxa table")
	}

	if !haveHeader {
		return nil, errors.New(errors.ErrCodeParse, "taxa table has no header line")
	}
	if len(t.FeatureIDs) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "taxa table has no features")
	}
	t.Counts = mat.NewDense(len(t.FeatureIDs), sampleCount, data)
	return &t, nil
}

func headerFields(fields []string) ([]string, bool, error) {
	if len(fields) == 0 {
		return nil, false, errors.New(errors.ErrCodeParse, "taxa table header has no sample ids")
	}
	last := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(fields[len(fields)-1]), " ", ""))
	lineage := lineageHeaders[last]
	if lineage {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return nil, false, errors.New(errors.ErrCodeParse, "taxa table header has no sample ids")
	}
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = strings.TrimSpace(f)
	}
	return ids, lineage, nil
}

// Features returns the number of features (rows).
func (t *Table) Features() int { return len(t.FeatureIDs) }

// LineageLabel names feature i by its lineage, or by its id when the table
// has no lineage column.
func (t *Table) LineageLabel(i int) string {
	if len(t.Lineages) == 0 || len(t.Lineages[i]) == 0 {
		return t.FeatureIDs[i]
	}
	return strings.Join(t.Lineages[i], ";")
}

// SelectSamples returns a table whose columns follow ids. Every id must be
// present in the table.
func (t *Table) SelectSamples(ids []string) (*Table, error) {
	index := make(map[string]int, len(t.SampleIDs))
	for i, id := range t.SampleIDs {
		index[id] = i
	}
	cols := make([]int, len(ids))
	var missing []string
	for i, id := range ids {
		c, ok := index[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		cols[i] = c
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "taxa table is missing %s: %s",
			errors.Plural(len(missing), "sample", "samples"), strings.Join(missing, ", "))
	}
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "no samples selected from taxa table")
	}

	rows := t.Features()
	counts := mat.NewDense(rows, len(ids), nil)
	for r := 0; r < rows; r++ {
		for j, c := range cols {
			counts.Set(r, j, t.Counts.At(r, c))
		}
	}
	out := &Table{
		SampleIDs:  append([]string(nil), ids...),
		FeatureIDs: append([]string(nil), t.FeatureIDs...),
		Counts:     counts,
	}
	for _, l := range t.Lineages {
		out.Lineages = append(out.Lineages, append([]string(nil), l...))
	}
	return out, nil
}
