package metadata

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/ordiview/pkg/errors"
)

const mapping = `#SampleID	Treatment	DOB	Description	Lane
# collected in 2008
PC.354	"Control"	20061218	Control_mouse_354	1
PC.355	Control	20061218	Control_mouse_355	1
PC.635	Fast	20080116	Fasting_mouse_635	1
PC.636	Fast 	20080116	Fasting_mouse_636

`

func parseMapping(t *testing.T) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(mapping), DefaultParseOptions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tbl
}

func TestParse(t *testing.T) {
	tbl := parseMapping(t)

	wantHeaders := []string{"SampleID", "Treatment", "DOB", "Description", "Lane"}
	if !reflect.DeepEqual(tbl.Headers, wantHeaders) {
		t.Errorf("Headers = %v, want %v", tbl.Headers, wantHeaders)
	}
	if len(tbl.Comments) != 1 || tbl.Comments[0] != " collected in 2008" {
		t.Errorf("Comments = %q, want [\" collected in 2008\"]", tbl.Comments)
	}
	if got := len(tbl.Rows); got != 4 {
		t.Fatalf("len(Rows) = %d, want 4", got)
	}
	if v, _ := tbl.Value("PC.354", "Treatment"); v != "Control" {
		t.Errorf("quoted value = %q, want Control", v)
	}
	if v, _ := tbl.Value("PC.636", "Treatment"); v != "Fast" {
		t.Errorf("stripped value = %q, want Fast", v)
	}
	if v, ok := tbl.Value("PC.636", "Lane"); !ok || v != "" {
		t.Errorf("padded value = %q, %v, want empty", v, ok)
	}
	if i, ok := tbl.ColumnIndex("DOB"); !ok || i != 2 {
		t.Errorf("ColumnIndex(DOB) = %d, %v, want 2", i, ok)
	}
}

func TestParseOptions(t *testing.T) {
	tbl, err := Parse(strings.NewReader(mapping), ParseOptions{SuppressStripping: true})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := tbl.Value("PC.354", "Treatment"); v != `"Control"` {
		t.Errorf("quotes kept = %q, want \"Control\" with quotes", v)
	}
	if v, _ := tbl.Value("PC.636", "Treatment"); v != "Fast " {
		t.Errorf("whitespace kept = %q, want %q", v, "Fast ")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no header", "S1\ta\n"},
		{"no data", "#SampleID\tA\n#comment\n"},
		{"duplicate ids", "#SampleID\tA\nS1\ta\nS1\tb\n"},
		{"too many fields", "#SampleID\tA\nS1\ta\tb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), DefaultParseOptions())
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("error = %v, want %v", err, errors.ErrCodeParse)
			}
		})
	}
}

func TestFilterRows(t *testing.T) {
	tbl := parseMapping(t)

	kept := FilterRows(tbl, []string{"PC.635", "PC.354", "absent"}, false)
	if got := kept.SampleIDs(); !reflect.DeepEqual(got, []string{"PC.354", "PC.635"}) {
		t.Errorf("kept = %v, want [PC.354 PC.635]", got)
	}

	removed := FilterRows(tbl, []string{"PC.635", "PC.354"}, true)
	if got := removed.SampleIDs(); !reflect.DeepEqual(got, []string{"PC.355", "PC.636"}) {
		t.Errorf("negated = %v, want [PC.355 PC.636]", got)
	}

	if len(tbl.Rows) != 4 {
		t.Error("FilterRows modified its input")
	}
}

func TestFilterRowsRoundTrip(t *testing.T) {
	tbl := parseMapping(t)
	coords := []string{"PC.636", "PC.354"}

	once := FilterRows(tbl, coords, false)
	twice := FilterRows(once, coords, false)
	if !reflect.DeepEqual(once.SampleIDs(), twice.SampleIDs()) {
		t.Errorf("filtering is not idempotent: %v vs %v", once.SampleIDs(), twice.SampleIDs())
	}
}

func TestDropColumns(t *testing.T) {
	tbl := parseMapping(t)

	if got := DropUniqueColumns(tbl).Headers; !reflect.DeepEqual(got, []string{"SampleID", "Treatment", "DOB", "Lane"}) {
		t.Errorf("DropUniqueColumns headers = %v", got)
	}

	constant, err := Parse(strings.NewReader("#SampleID\tA\tB\nS1\tx\t1\nS2\tx\t2\n"), DefaultParseOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := DropConstantColumns(constant).Headers; !reflect.DeepEqual(got, []string{"SampleID", "B"}) {
		t.Errorf("DropConstantColumns headers = %v, want [SampleID B]", got)
	}

	single := FilterRows(tbl, []string{"PC.354"}, false)
	if got := DropConstantColumns(single).Headers; len(got) != len(tbl.Headers) {
		t.Errorf("single-row table lost columns: %v", got)
	}
}

func TestMergeColumns(t *testing.T) {
	tbl := parseMapping(t)

	merged, err := MergeColumns(tbl, "Treatment&&DOB")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := merged.Value("PC.635", "Treatment&&DOB"); v != "Fast20080116" {
		t.Errorf("merged value = %q, want Fast20080116", v)
	}

	if _, err := MergeColumns(tbl, "Treatment&&Missing"); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("unknown column error = %v, want %v", err, errors.ErrCodeConfiguration)
	}
}

func TestKeepColumns(t *testing.T) {
	tbl := parseMapping(t)

	kept, err := KeepColumns(tbl, []string{"Lane", "Treatment"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"SampleID", "Treatment", "Lane"}; !reflect.DeepEqual(kept.Headers, want) {
		t.Errorf("Headers = %v, want %v", kept.Headers, want)
	}
	if _, err := KeepColumns(tbl, []string{"Nope"}); err == nil {
		t.Error("unknown column should fail")
	}
}

func TestClone(t *testing.T) {
	tbl := FilterRows(parseMapping(t), []string{"PC.354", "PC.355"}, false)

	cloned := Clone(tbl, 2)
	want := []string{"PC.354_0", "PC.355_0", "PC.354_1", "PC.355_1"}
	if got := cloned.SampleIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("SampleIDs = %v, want %v", got, want)
	}
	if v, _ := cloned.Value("PC.355_1", "SampleID"); v != "PC.355_1" {
		t.Errorf("id column = %q, want PC.355_1", v)
	}
}

func TestFillMissing(t *testing.T) {
	tbl := parseMapping(t)

	filled, err := FillMissing(tbl, "Lane", "0")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := filled.Value("PC.636", "Lane"); v != "0" {
		t.Errorf("filled = %q, want 0", v)
	}
	if v, _ := filled.Value("PC.354", "Lane"); v != "1" {
		t.Errorf("present value changed to %q", v)
	}
	if _, err := FillMissing(tbl, "Nope", "0"); err == nil {
		t.Error("unknown column should fail")
	}
}

func TestPreprocess(t *testing.T) {
	tbl := parseMapping(t)

	out, err := Preprocess(tbl, PreprocessOptions{
		Columns:    []string{"Treatment&&DOB", "Description"},
		DropUnique: true,
		Clones:     2,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Description is unique but was asked for explicitly.
	if want := []string{"SampleID", "Description", "Treatment&&DOB"}; !reflect.DeepEqual(out.Headers, want) {
		t.Errorf("Headers = %v, want %v", out.Headers, want)
	}
	if got := len(out.Rows); got != 8 {
		t.Errorf("len(Rows) = %d, want 8", got)
	}
}

func TestPreprocessKeepsAllByDefault(t *testing.T) {
	tbl := parseMapping(t)

	out, err := Preprocess(tbl, PreprocessOptions{DropUnique: true, DropConstant: true})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"SampleID", "Treatment", "DOB", "Lane"}; !reflect.DeepEqual(out.Headers, want) {
		t.Errorf("Headers = %v, want %v", out.Headers, want)
	}
}

func TestNumeric(t *testing.T) {
	tbl := parseMapping(t)

	vals, err := NumericColumn(tbl, "Lane")
	if err != nil {
		t.Fatal(err)
	}
	if !vals[0].Valid || vals[0].Float64 != 1 {
		t.Errorf("vals[0] = %v, want 1", vals[0])
	}
	if vals[3].Valid {
		t.Errorf("empty cell parsed as %v", vals[3].Float64)
	}

	if IsNumericColumn(tbl, "Lane") {
		t.Error("Lane has an empty cell and is not numeric")
	}
	if !IsNumericColumn(tbl, "DOB") {
		t.Error("DOB should be numeric")
	}
	if _, ok := ParseFloat("NaN"); ok {
		t.Error("NaN should not parse as a value")
	}
}
