package ordination

import (
	"bufio"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/ordiview/pkg/errors"
)

const legacyHeader = "pc vector number"

// errFormatMismatch signals that the input is not in the modern format and the
// legacy parser should be tried.
var errFormatMismatch = stderrors.New("not a sectioned ordination file")

// ParseFile parses the ordination file at path.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", filepath.Base(path))
	}
	defer f.Close()

	res, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", filepath.Base(path))
	}
	return res, nil
}

// Parse reads an ordination result. The sectioned format (Eigvals, Proportion
// explained, Species, Site, Biplot, Site constraints) is tried first; on a
// format mismatch the legacy "pc vector number" coordinates format is used.
func Parse(r io.Reader) (*Result, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read ordination")
	}

	res, err := parseSectioned(lines)
	if err == nil {
		return res, nil
	}
	if !stderrors.Is(err, errFormatMismatch) {
		return nil, err
	}
	return parseLegacy(lines)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

// =============================================================================
// Sectioned format
// =============================================================================

type cursor struct {
	lines []string
	pos   int
}

// next returns the next non-blank line, or false at EOF.
func (c *cursor) next() (string, bool) {
	for c.pos < len(c.lines) {
		line := c.lines[c.pos]
		c.pos++
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}
	return "", false
}

// more reports whether a non-blank line remains.
func (c *cursor) more() bool {
	for i := c.pos; i < len(c.lines); i++ {
		if strings.TrimSpace(c.lines[i]) != "" {
			return true
		}
	}
	return false
}

// header reads a "Name\t<rows>[\t<cols>]" line and returns the counts.
func (c *cursor) header(name string, dims int) ([]int, error) {
	line, ok := c.next()
	if !ok {
		return nil, errors.New(errors.ErrCodeParse, "missing %q section", name)
	}
	fields := strings.Split(strings.TrimSpace(line), "\t")
	if fields[0] != name {
		return nil, errors.New(errors.ErrCodeParse, "expected %q section, found %q", name, fields[0])
	}
	if len(fields) != dims+1 {
		return nil, errors.New(errors.ErrCodeParse, "%q header must have %d count fields", name, dims)
	}
	counts := make([]int, dims)
	for i := range counts {
		n, err := strconv.Atoi(fields[i+1])
		if err != nil || n < 0 {
			return nil, errors.New(errors.ErrCodeParse, "%q header has invalid count %q", name, fields[i+1])
		}
		counts[i] = n
	}
	return counts, nil
}

// vector reads a one-dimensional section.
func (c *cursor) vector(name string) ([]float64, error) {
	counts, err := c.header(name, 1)
	if err != nil {
		return nil, err
	}
	if counts[0] == 0 {
		return nil, nil
	}
	line, ok := c.next()
	if !ok {
		return nil, errors.New(errors.ErrCodeParse, "%q section has no values", name)
	}
	vals, err := parseFloats(strings.Split(strings.TrimSpace(line), "\t"), name)
	if err != nil {
		return nil, err
	}
	if len(vals) != counts[0] {
		return nil, errors.New(errors.ErrCodeParse, "%q section declares %d values, found %d", name, counts[0], len(vals))
	}
	return vals, nil
}

// matrix reads a two-dimensional section whose rows start with an identifier.
func (c *cursor) matrix(name string) ([]string, []float64, int, error) {
	counts, err := c.header(name, 2)
	if err != nil {
		return nil, nil, 0, err
	}
	rows, cols := counts[0], counts[1]
	ids := make([]string, 0, rows)
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		line, ok := c.next()
		if !ok {
			return nil, nil, 0, errors.New(errors.ErrCodeParse, "%q section declares %d rows, found %d", name, rows, i)
		}
		fields := strings.Split(strings.TrimSpace(line), "\t")
		vals, err := parseFloats(fields[1:], name)
		if err != nil {
			return nil, nil, 0, err
		}
		if len(vals) != cols {
			return nil, nil, 0, errors.New(errors.ErrCodeParse, "%q row %q has %d values, want %d", name, fields[0], len(vals), cols)
		}
		ids = append(ids, fields[0])
		data = append(data, vals...)
	}
	return ids, data, cols, nil
}

func parseSectioned(lines []string) (*Result, error) {
	c := &cursor{lines: lines}
	first, ok := c.next()
	if !ok || !strings.HasPrefix(first, "Eigvals") {
		return nil, errFormatMismatch
	}
	c.pos = 0

	eigvals, err := c.vector("Eigvals")
	if err != nil {
		return nil, err
	}
	if len(eigvals) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "%q section is empty", "Eigvals")
	}
	proportions, err := c.vector("Proportion explained")
	if err != nil {
		return nil, err
	}
	if len(proportions) == 0 {
		proportions = deriveProportions(eigvals)
	}
	if _, _, _, err := c.matrix("Species"); err != nil {
		return nil, err
	}
	ids, data, cols, err := c.matrix("Site")
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "%q section has no samples", "Site")
	}

	// Biplot and Site constraints are optional trailers.
	for _, name := range []string{"Biplot", "Site constraints"} {
		if !c.more() {
			break
		}
		if _, _, _, err := c.matrix(name); err != nil {
			return nil, err
		}
	}

	if cols != len(eigvals) {
		return nil, errors.New(errors.ErrCodeParse, "%q section has %d columns but there are %d eigenvalues", "Site", cols, len(eigvals))
	}
	if len(proportions) != len(eigvals) {
		return nil, errors.New(errors.ErrCodeParse, "%d proportions for %d eigenvalues", len(proportions), len(eigvals))
	}
	return New(ids, mat.NewDense(len(ids), cols, data), eigvals, proportions)
}

func deriveProportions(eigvals []float64) []float64 {
	var sum float64
	for _, v := range eigvals {
		sum += v
	}
	out := make([]float64, len(eigvals))
	if sum == 0 {
		return out
	}
	for i, v := range eigvals {
		out[i] = v / sum
	}
	return out
}

// =============================================================================
// Legacy format
// =============================================================================

func parseLegacy(lines []string) (*Result, error) {
	var body []string
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			body = append(body, s)
		}
	}
	if len(body) == 0 || !strings.HasPrefix(body[0], legacyHeader) {
		return nil, errors.New(errors.ErrCodeParse, "unrecognized ordination format: expected %q section or %q header", "Eigvals", legacyHeader)
	}
	if len(body) < 4 {
		return nil, errors.New(errors.ErrCodeParse, "legacy coordinates file has no sample rows")
	}

	eigLine, pctLine := body[len(body)-2], body[len(body)-1]
	if !strings.HasPrefix(eigLine, "eigvals") {
		return nil, errors.New(errors.ErrCodeParse, "missing %q line", "eigvals")
	}
	if !strings.HasPrefix(pctLine, "% variation") {
		return nil, errors.New(errors.ErrCodeParse, "missing %q line", "% variation explained")
	}
	eigvals, err := parseFloats(strings.Split(eigLine, "\t")[1:], "eigvals")
	if err != nil {
		return nil, err
	}
	percents, err := parseFloats(strings.Split(pctLine, "\t")[1:], "% variation explained")
	if err != nil {
		return nil, err
	}
	proportions := make([]float64, len(percents))
	for i, p := range percents {
		proportions[i] = p / 100
	}

	rows := body[1 : len(body)-2]
	ids := make([]string, 0, len(rows))
	var data []float64
	cols := -1
	for _, line := range rows {
		fields := strings.Split(line, "\t")
		vals, err := parseFloats(fields[1:], "coordinates")
		if err != nil {
			return nil, err
		}
		if cols == -1 {
			cols = len(vals)
		} else if len(vals) != cols {
			return nil, errors.New(errors.ErrCodeParse, "sample %q has %d coordinates, want %d", fields[0], len(vals), cols)
		}
		ids = append(ids, fields[0])
		data = append(data, vals...)
	}
	if cols == 0 {
		return nil, errors.New(errors.ErrCodeParse, "legacy coordinates file has no coordinate columns")
	}
	if len(eigvals) != cols || len(proportions) != cols {
		return nil, errors.New(errors.ErrCodeParse, "%d coordinate columns but %d eigenvalues and %d percentages",
			cols, len(eigvals), len(proportions))
	}
	return New(ids, mat.NewDense(len(ids), cols, data), eigvals, proportions)
}

func parseFloats(fields []string, section string) ([]float64, error) {
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeParse, "%s: invalid number %q", section, f)
		}
		out = append(out, v)
	}
	return out, nil
}
