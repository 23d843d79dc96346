package format

import (
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/ordiview/pkg/biplot"
	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/metadata"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

func testResult(t *testing.T) *ordination.Result {
	t.Helper()
	coords := mat.NewDense(3, 3, []float64{
		1, 0.5, -0.25,
		-1, 0, 0.5,
		0.5, -0.5, 0,
	})
	res, err := ordination.New([]string{"s1", "s2", "s3"}, coords, []float64{3, 2, 1}, []float64{0.5, 0.3, 0.2})
	if err != nil {
		t.Fatalf("ordination.New: %v", err)
	}
	return res
}

func testTable(t *testing.T) *metadata.Table {
	t.Helper()
	tbl, err := metadata.NewTable(
		[]string{"SampleID", "Subject", "Day", "Treatment"},
		[]metadata.Row{
			{SampleID: "s1", Values: []string{"s1", "A", "3", "Control"}},
			{SampleID: "s2", Values: []string{"s2", "A", "1", "Fast"}},
			{SampleID: "s3", Values: []string{"s3", "B", "2", "Fast"}},
		}, nil)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

type fixedExtents map[string][3]float64

func (f fixedExtents) Extent3(id string) ([3]float64, bool) {
	v, ok := f[id]
	return v, ok
}

func TestEffectiveAxes(t *testing.T) {
	tests := []struct {
		name      string
		percents  []float64
		requested int
		columns   int
		custom    int
		want      int
		wantCode  errors.Code
	}{
		{"clamped to explained", []float64{26.7, 16.3, 13.8, 11.2, 10.0, 8.2, 0.4, 0.3}, 10, 8, 0, 6, ""},
		{"requested", []float64{26.7, 16.3, 13.8, 11.2, 10.0, 8.2}, 4, 6, 0, 4, ""},
		{"default request", []float64{26.7, 16.3, 13.8, 11.2}, 0, 4, 0, 4, ""},
		{"custom always counts", []float64{0, 50, 40, 0.1}, 10, 4, 1, 3, ""},
		{"too few", []float64{26.7, 16.3, 0.1, 0.2}, 10, 4, 0, 0, errors.ErrCodeLogic},
		{"too few columns", []float64{50, 30}, 10, 2, 0, 0, errors.ErrCodeLogic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectiveAxes(tt.percents, tt.requested, tt.columns, tt.custom)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("EffectiveAxes() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("EffectiveAxes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EffectiveAxes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPCoA(t *testing.T) {
	res := testResult(t)
	opts := DefaultOptions()

	out, err := PCoA(res, nil, 3, opts)
	if err != nil {
		t.Fatalf("PCoA: %v", err)
	}

	for _, want := range []string{
		"g_spherePositions['s1'] = { 'name': 's1', 'color': 0, 'x': 1.000000, 'y': 0.500000, 'z': -0.250000, 'P1': 1.000000, 'P2': 0.500000, 'P3': -0.250000 };\n",
		"var g_segments = 8, g_rings = 8, g_radius = 0.024000;\n",
		"var g_xAxisLength = 2.000000;\n",
		"var g_yMinimumValue = -0.500000;\n",
		"var g_zMaximumValue = 0.500000;\n",
		"var g_maximum = 1.000000;\n",
		"var g_pc1Label = 'PC1 (50 %)';\n",
		"var g_pcoaLabels = ['PC1 (50 %)','PC2 (30 %)','PC3 (20 %)'];\n",
		"var g_number_of_custom_axes = 0;\n",
		"var g_fractionExplained = [0.500000, 0.300000, 0.200000];\n",
		"var g_fractionExplainedRounded = [50.00, 30.00, 20.00];\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PCoA output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "g_ellipsesDimensions") {
		t.Errorf("PCoA without extents wrote ellipsoids")
	}

	again, _ := PCoA(res, nil, 3, opts)
	if again != out {
		t.Errorf("PCoA is not deterministic")
	}
}

func TestPCoAEllipsoids(t *testing.T) {
	res := testResult(t)
	ext := fixedExtents{
		"s1": {0.1, 0.2, 0.3},
		"s2": {0, 0, 0},
		"s3": {1, 1, 1},
	}

	out, err := PCoA(res, ext, 3, DefaultOptions())
	if err != nil {
		t.Fatalf("PCoA: %v", err)
	}
	want := "g_ellipsesDimensions['s1'] = { 'name': 's1', 'color': 0, 'width': 0.100000, 'height': 0.200000, 'length': 0.300000, 'x': 1.000000, 'y': 0.500000, 'z': -0.250000 };\n"
	if !strings.Contains(out, want) {
		t.Errorf("PCoA output missing %q", want)
	}

	delete(ext, "s3")
	if _, err := PCoA(res, ext, 3, DefaultOptions()); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("PCoA with missing extent error = %v, want %s", err, errors.ErrCodeInternal)
	}
}

func TestPCoAAxisBounds(t *testing.T) {
	res := testResult(t)
	for _, axes := range []int{2, 4} {
		if _, err := PCoA(res, nil, axes, DefaultOptions()); !errors.Is(err, errors.ErrCodeLogic) {
			t.Errorf("PCoA(axes=%d) error = %v, want %s", axes, err, errors.ErrCodeLogic)
		}
	}
}

func TestAxisLabelsCustom(t *testing.T) {
	res := testResult(t)
	res.CustomAxes = []string{"Day"}

	got := AxisLabels(res, 3, DefaultOptions())
	want := []string{"Day", "PC1 (30 %)", "PC2 (20 %)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AxisLabels() = %q, want %q", got, want)
	}

	fractions, _ := explained(res, 3, DefaultOptions())
	if fractions[0] != fractions[1] {
		t.Errorf("custom axis fraction = %s, want %s", fractions[0], fractions[1])
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `'plain'`},
		{"it's", `'it\'s'`},
		{`a\b`, `'a\\b'`},
		{"two\nlines", `'two\nlines'`},
		{"</script>", `'<\/script>'`},
		{`say "hi"`, `'say \"hi\"'`},
	}
	for _, tt := range tests {
		if got := quote(tt.in); got != tt.want {
			t.Errorf("quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMetadata(t *testing.T) {
	tbl := testTable(t)

	out, err := Metadata(tbl, []string{"SampleID", "Day", "Treatment"})
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	want := "var g_mappingFileHeaders = ['SampleID','Day','Treatment'];\n" +
		"var g_mappingFileData = { 's1': ['s1','3','Control'],'s2': ['s2','1','Fast'],'s3': ['s3','2','Fast'] };\n" +
		"var g_animatableMappingFileHeaders = ['Day'];\n"
	if out != want {
		t.Errorf("Metadata() =\n%s\nwant\n%s", out, want)
	}

	all, err := Metadata(tbl, nil)
	if err != nil {
		t.Fatalf("Metadata(all): %v", err)
	}
	if !strings.HasPrefix(all, "var g_mappingFileHeaders = ['SampleID','Subject','Day','Treatment'];\n") {
		t.Errorf("Metadata(all) headers = %q", strings.SplitN(all, "\n", 2)[0])
	}

	if _, err := Metadata(tbl, []string{"Nope"}); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Metadata(unknown) error = %v, want %s", err, errors.ErrCodeConfiguration)
	}
}

func TestTaxa(t *testing.T) {
	entries := []biplot.Entry{
		{Lineage: "k__Bacteria;p__Firmicutes", Position: [3]float64{0.1, 0.2, 0.3}, Prevalence: 1},
		{Lineage: "k__Bacteria;p__Bacteroidetes", Position: [3]float64{-0.1, 0, 0}, Prevalence: 0},
	}
	got := Taxa(entries, 2, DefaultOptions())
	want := "var g_taxaPositions = new Array();\n" +
		"g_taxaPositions['0'] = { 'lineage': 'k__Bacteria;p__Firmicutes', 'x': 0.100000, 'y': 0.200000, 'z': 0.300000, 'radius': 10.000000 };\n" +
		"g_taxaPositions['1'] = { 'lineage': 'k__Bacteria;p__Bacteroidetes', 'x': -0.100000, 'y': 0.000000, 'z': 0.000000, 'radius': 1.000000 };\n"
	if got != want {
		t.Errorf("Taxa() =\n%s\nwant\n%s", got, want)
	}
}

func TestVectors(t *testing.T) {
	tbl := testTable(t)
	res := testResult(t)

	out, err := Vectors(tbl, res, "Subject", "Day", DefaultOptions())
	if err != nil {
		t.Fatalf("Vectors: %v", err)
	}
	want := "var g_vectorPositions = new Array();\n" +
		"g_vectorPositions['A'] = new Array();\n" +
		"g_vectorPositions['A']['s2'] = [-1.000000, 0.000000, 0.500000];\n" +
		"g_vectorPositions['A']['s1'] = [1.000000, 0.500000, -0.250000];\n" +
		"g_vectorPositions['B'] = new Array();\n" +
		"g_vectorPositions['B']['s3'] = [0.500000, -0.500000, 0.000000];\n"
	if out != want {
		t.Errorf("Vectors() =\n%s\nwant\n%s", out, want)
	}

	unsorted, err := Vectors(tbl, res, "Subject", "", DefaultOptions())
	if err != nil {
		t.Fatalf("Vectors(unsorted): %v", err)
	}
	if strings.Index(unsorted, "['s1']") > strings.Index(unsorted, "['s2']") {
		t.Errorf("unsorted vectors should keep ordination order:\n%s", unsorted)
	}

	tests := []struct {
		name            string
		connect, sortBy string
	}{
		{"unknown connect", "Nope", ""},
		{"unknown sort", "Subject", "Nope"},
		{"non-numeric sort", "Subject", "Treatment"},
	}
	for _, tt := range tests {
		if _, err := Vectors(tbl, res, tt.connect, tt.sortBy, DefaultOptions()); !errors.Is(err, errors.ErrCodeConfiguration) {
			t.Errorf("%s: error = %v, want %s", tt.name, err, errors.ErrCodeConfiguration)
		}
	}
}

func TestGroupComparison(t *testing.T) {
	groups, err := GroupComparison([]string{"sampa_0", "sampa_1", "sampb_0", "sampb_1"}, 2)
	if err != nil {
		t.Fatalf("GroupComparison: %v", err)
	}
	want := []ComparisonGroup{
		{Name: "sampa", Rows: []int{0, 1}},
		{Name: "sampb", Rows: []int{2, 3}},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Errorf("GroupComparison() = %+v, want %+v", groups, want)
	}

	// Only the last numeric suffix is stripped.
	groups, err = GroupComparison([]string{"s_1_0", "s_1_1"}, 2)
	if err != nil {
		t.Fatalf("GroupComparison: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "s_1" {
		t.Errorf("GroupComparison() = %+v, want one group s_1", groups)
	}

	bad := []struct {
		name   string
		ids    []string
		clones int
	}{
		{"no clones", []string{"a_0"}, 0},
		{"uneven", []string{"a_0", "a_1", "b_0"}, 2},
		{"unbalanced", []string{"a_0", "a_1", "a_2", "b_0"}, 2},
	}
	for _, tt := range bad {
		if _, err := GroupComparison(tt.ids, tt.clones); !errors.Is(err, errors.ErrCodeConfiguration) {
			t.Errorf("%s: error = %v, want %s", tt.name, err, errors.ErrCodeConfiguration)
		}
	}
}

func TestComparison(t *testing.T) {
	coords := mat.NewDense(4, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		-1, -2, -3,
		0, 0, 0,
	})
	res, err := ordination.New([]string{"a_0", "a_1", "b_0", "b_1"}, coords, []float64{3, 2, 1}, []float64{0.5, 0.3, 0.2})
	if err != nil {
		t.Fatalf("ordination.New: %v", err)
	}

	out, err := Comparison(res, 2, true, DefaultOptions())
	if err != nil {
		t.Fatalf("Comparison: %v", err)
	}
	want := "var g_comparisonPositions = new Array();\n" +
		"var g_isSerialComparisonPlot = true;\n" +
		"g_comparisonPositions['a'] = [[1.000000, 2.000000, 3.000000], [4.000000, 5.000000, 6.000000]];\n" +
		"g_comparisonPositions['b'] = [[-1.000000, -2.000000, -3.000000], [0.000000, 0.000000, 0.000000]];\n"
	if out != want {
		t.Errorf("Comparison() =\n%s\nwant\n%s", out, want)
	}

	empty, err := Comparison(res, 0, false, DefaultOptions())
	if err != nil {
		t.Fatalf("Comparison(0): %v", err)
	}
	if empty != "var g_comparisonPositions = new Array();\nvar g_isSerialComparisonPlot = false;\n" {
		t.Errorf("Comparison(0) = %q", empty)
	}
}

func TestPage(t *testing.T) {
	data := DataBlock("var a = 1;", "", "var b = 2;\n")
	if data != "var a = 1;\nvar b = 2;\n" {
		t.Errorf("DataBlock() = %q", data)
	}

	page, err := Page(PageData{
		Generator:     "ordiview test",
		ResourcesPath: "assets/",
		Data:          data,
		HasBiplots:    true,
	})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := string(page)

	for _, want := range []string{
		`<meta name="generator" content="ordiview test">`,
		`<title>Ordiview</title>`,
		`src="assets/js/ordiview.js"`,
		"var a = 1;\nvar b = 2;\n",
		`href="#taxatab"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Page() missing %q", want)
		}
	}
	for _, absent := range []string{`href="#ellipsoidtab"`, `href="#vectorstab"`, `href="#comparisontab"`} {
		if strings.Contains(html, absent) {
			t.Errorf("Page() should not contain %q", absent)
		}
	}
}

func TestPageEscapesTitle(t *testing.T) {
	page, err := Page(PageData{
		Title: `<b>gut & "diet"`,
		Data:  "var g_title = 'a<b';\n",
	})
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := string(page)

	if strings.Contains(html, "<b>gut") {
		t.Error("Page() inserted the title as markup")
	}
	if !strings.Contains(html, "<title>&lt;b&gt;gut &amp; ") {
		t.Errorf("Page() title not escaped:\n%s", html)
	}
	if !strings.Contains(html, "var g_title = 'a<b';\n") {
		t.Error("Page() altered the data block")
	}
}
