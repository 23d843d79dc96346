package ordination

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ordiview/pkg/errors"
)

const sectioned = `Eigvals	4
0.512	0.300	0.100	0.088

Proportion explained	4
0.5	0.3	0.15	0.05

Species	0	0

Site	3	4
PC.354	0.28	-0.12	0.03	0.01
PC.355	0.23	0.05	-0.20	0.02
PC.356	-0.51	0.07	0.17	-0.03

Biplot	0	0

Site constraints	0	0
`

const legacy = `pc vector number	1	2	3

PC.354	0.28	-0.12	0.03
PC.355	0.23	0.05	-0.20


eigvals	0.512	0.300	0.100
% variation explained	51.2	30.0	10.0
`

func TestParseSectioned(t *testing.T) {
	res, err := Parse(strings.NewReader(sectioned))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := res.Samples(); got != 3 {
		t.Errorf("Samples() = %d, want 3", got)
	}
	if got := res.Axes(); got != 4 {
		t.Errorf("Axes() = %d, want 4", got)
	}
	if res.SampleIDs[2] != "PC.356" {
		t.Errorf("SampleIDs[2] = %q, want PC.356", res.SampleIDs[2])
	}
	if got := res.Coords.At(1, 2); got != -0.20 {
		t.Errorf("Coords[1][2] = %v, want -0.20", got)
	}
	if got := res.ProportionExplained[2]; got != 0.15 {
		t.Errorf("ProportionExplained[2] = %v, want 0.15", got)
	}
}

func TestParseSectionedWithoutTrailers(t *testing.T) {
	input := sectioned[:strings.Index(sectioned, "Biplot")]
	if _, err := Parse(strings.NewReader(input)); err != nil {
		t.Fatalf("Parse without Biplot section: %v", err)
	}
}

func TestParseDerivesProportions(t *testing.T) {
	input := "Eigvals\t2\n3\t1\n\nProportion explained\t0\n\nSpecies\t0\t0\n\nSite\t1\t2\nS1\t0.1\t0.2\n"
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.ProportionExplained[0] != 0.75 || res.ProportionExplained[1] != 0.25 {
		t.Errorf("ProportionExplained = %v, want [0.75 0.25]", res.ProportionExplained)
	}
}

func TestParseLegacy(t *testing.T) {
	res, err := Parse(strings.NewReader(legacy))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := res.Samples(); got != 2 {
		t.Errorf("Samples() = %d, want 2", got)
	}
	if got := res.Eigenvalues[1]; got != 0.3 {
		t.Errorf("Eigenvalues[1] = %v, want 0.3", got)
	}
	if got := res.ProportionExplained[0]; math.Abs(got-0.512) > 1e-12 {
		t.Errorf("ProportionExplained[0] = %v, want 0.512", got)
	}
	pct := res.Percentages()
	if math.Abs(pct[0]-51.2) > 1e-9 {
		t.Errorf("Percentages()[0] = %v, want 51.2", pct[0])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"neither format", "sample\tx\ty\nS1\t1\t2\n"},
		{"missing site", "Eigvals\t1\n0.5\n\nProportion explained\t1\n1.0\n\nSpecies\t0\t0\n"},
		{"bad float", strings.Replace(sectioned, "0.28", "abc", 1)},
		{"short site", strings.Replace(sectioned, "Site\t3\t4", "Site\t4\t4", 1)},
		{"column mismatch", strings.Replace(sectioned, "Eigvals\t4\n0.512\t0.300\t0.100\t0.088", "Eigvals\t3\n0.512\t0.300\t0.100", 1)},
		{"duplicate ids", strings.Replace(sectioned, "PC.355", "PC.354", 1)},
		{"legacy without eigvals", strings.Replace(legacy, "eigvals", "values", 1)},
		{"legacy without percentages", strings.Replace(legacy, "% variation explained", "variation", 1)},
		{"legacy ragged row", strings.Replace(legacy, "0.23\t0.05\t-0.20", "0.23\t0.05", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeParse)
			}
		})
	}
}

func TestParseFileNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcoa.txt")
	if err := os.WriteFile(path, []byte("Eigvals\t1\nx\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ParseFile(path)
	if err == nil {
		t.Fatal("ParseFile succeeded, want error")
	}
	if msg := errors.UserMessage(err); !strings.HasPrefix(msg, "pcoa.txt: ") {
		t.Errorf("UserMessage = %q, want pcoa.txt prefix", msg)
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeParse)
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "absent.txt"))
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeIO)
	}
}

func TestResultCloneIsDeep(t *testing.T) {
	res, err := Parse(strings.NewReader(sectioned))
	if err != nil {
		t.Fatal(err)
	}
	cp := res.Clone()
	cp.Coords.Set(0, 0, 99)
	cp.SampleIDs[0] = "changed"

	if res.Coords.At(0, 0) == 99 || res.SampleIDs[0] == "changed" {
		t.Error("Clone shares storage with the original")
	}
}

func TestSelectRows(t *testing.T) {
	res, err := Parse(strings.NewReader(sectioned))
	if err != nil {
		t.Fatal(err)
	}
	sub := res.SelectRows([]int{2, 0})

	if sub.Samples() != 2 || sub.SampleIDs[0] != "PC.356" || sub.SampleIDs[1] != "PC.354" {
		t.Errorf("SampleIDs = %v, want [PC.356 PC.354]", sub.SampleIDs)
	}
	if got := sub.Coords.At(0, 0); got != -0.51 {
		t.Errorf("Coords[0][0] = %v, want -0.51", got)
	}
	if err := sub.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
