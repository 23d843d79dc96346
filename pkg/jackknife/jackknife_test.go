package jackknife

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/ordiview/pkg/errors"
	"github.com/matzehuels/ordiview/pkg/ordination"
)

func newResult(t *testing.T, ids []string, eig []float64, data ...float64) *ordination.Result {
	t.Helper()
	cols := len(eig)
	prop := make([]float64, cols)
	for i := range prop {
		prop[i] = 1 / float64(cols)
	}
	res, err := ordination.New(ids, mat.NewDense(len(ids), cols, data), eig, prop)
	require.NoError(t, err)
	return res
}

func columnDistance(a, b mat.Matrix, c int) float64 {
	rows, _ := a.Dims()
	var d float64
	for r := 0; r < rows; r++ {
		d += math.Abs(a.At(r, c) - b.At(r, c))
	}
	return d
}

func TestFlipSigns(t *testing.T) {
	master := mat.NewDense(3, 2, []float64{
		1, 2,
		-1, 3,
		0.5, -4,
	})
	replicate := mat.NewDense(3, 2, []float64{
		-1.1, 2.1,
		0.9, 2.9,
		-0.4, -4.2,
	})

	got := FlipSigns(replicate, master)
	want := mat.NewDense(3, 2, []float64{
		1.1, 2.1,
		-0.9, 2.9,
		0.4, -4.2,
	})
	require.True(t, mat.Equal(got, want), "FlipSigns = %v", mat.Formatted(got))
}

func TestFlipSignsNeverIncreasesDistance(t *testing.T) {
	master := mat.NewDense(4, 3, []float64{
		0.3, -0.2, 0.1,
		-0.1, 0.4, 0.0,
		0.2, 0.1, -0.3,
		-0.4, -0.3, 0.2,
	})
	replicate := mat.NewDense(4, 3, []float64{
		-0.25, -0.1, 0.3,
		0.15, 0.5, -0.1,
		-0.3, 0.0, 0.2,
		0.35, -0.4, -0.1,
	})

	flipped := FlipSigns(replicate, master)
	for c := 0; c < 3; c++ {
		require.LessOrEqual(t, columnDistance(flipped, master, c), columnDistance(replicate, master, c))
	}

	again := FlipSigns(flipped, master)
	require.True(t, mat.Equal(again, flipped), "flipping twice must be a no-op")
}

func TestFlipSignsTieKeepsOriginal(t *testing.T) {
	master := mat.NewDense(2, 1, []float64{0, 0})
	replicate := mat.NewDense(2, 1, []float64{1, -1})

	require.True(t, mat.Equal(FlipSigns(replicate, master), replicate))
}

func TestSummarizeIdenticalReplicates(t *testing.T) {
	ids := []string{"a", "b", "c"}
	eig := []float64{0.7, 0.2, 0.1}
	data := []float64{
		0.1, 0.2, 0.3,
		-0.7, 0.05, 1e-3,
		0.33, -0.11, 0.9,
	}

	for _, method := range Methods {
		t.Run(string(method), func(t *testing.T) {
			reps := make([]*ordination.Result, 4)
			for i := range reps {
				reps[i] = newResult(t, ids, eig, append([]float64(nil), data...)...)
			}

			s, err := Summarize(reps, method)
			require.NoError(t, err)
			require.True(t, mat.Equal(s.Mean, reps[0].Coords), "mean = %v", mat.Formatted(s.Mean))
			require.Equal(t, eig, s.Eigenvalues)
			for r := 0; r < 3; r++ {
				for c := 0; c < 3; c++ {
					require.Zero(t, s.Low.At(r, c))
					require.Zero(t, s.High.At(r, c))
					require.Zero(t, s.Extent(r, c))
				}
			}
		})
	}
}

func TestSummarizeReordersAndFlips(t *testing.T) {
	master := newResult(t, []string{"a", "b"}, []float64{2, 1},
		1, 2,
		3, 4)
	rep := newResult(t, []string{"b", "a"}, []float64{4, 3},
		-3, 4,
		-1, 2)

	s, err := Summarize([]*ordination.Result{master, rep}, MethodIQR)
	require.NoError(t, err)
	require.True(t, mat.Equal(s.Mean, master.Coords), "mean = %v", mat.Formatted(s.Mean))
	require.Equal(t, []float64{3, 2}, s.Eigenvalues)
	require.Equal(t, 2, s.Replicates)

	res := s.Result()
	require.NoError(t, res.Validate())
	require.Equal(t, master.ProportionExplained, res.ProportionExplained)
}

func TestSummarizeMethods(t *testing.T) {
	ids := []string{"a"}
	eig := []float64{1}
	values := []float64{1, 2, 3, 4, 5}
	reps := make([]*ordination.Result, len(values))
	for i, v := range values {
		reps[i] = newResult(t, ids, eig, v)
	}

	// All values are positive so none of them flip against the master (1).
	tests := []struct {
		method    Method
		low, high float64
	}{
		// Halves [1 2] and [4 5] around the excluded median 3.
		{MethodIQR, 1.5 - 3, 4.5 - 3},
		// n=5: j=1, h=2/3, lower = x0/3 + 2*x1/3, upper = x4/3 + 2*x3/3.
		{MethodIdealFourths, 5.0/3 - 3, 13.0/3 - 3},
		{MethodStdDev, -math.Sqrt(2.5) / 2, math.Sqrt(2.5) / 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			s, err := Summarize(reps, tt.method)
			require.NoError(t, err)
			require.InDelta(t, 3.0, s.Mean.At(0, 0), 1e-12)
			require.InDelta(t, tt.low, s.Low.At(0, 0), 1e-12)
			require.InDelta(t, tt.high, s.High.At(0, 0), 1e-12)
			require.LessOrEqual(t, s.Low.At(0, 0), 0.0)
			require.GreaterOrEqual(t, s.High.At(0, 0), 0.0)
		})
	}
}

func TestIdealFourthsNeedsThreeValues(t *testing.T) {
	lo, hi := idealFourths([]float64{1, 2})
	require.True(t, math.IsNaN(lo))
	require.True(t, math.IsNaN(hi))
}

func TestIQREvenAndSingle(t *testing.T) {
	lo, hi := iqr([]float64{1, 2, 3, 4})
	require.Equal(t, 1.5, lo)
	require.Equal(t, 3.5, hi)

	lo, hi = iqr([]float64{7})
	require.Equal(t, 7.0, lo)
	require.Equal(t, 7.0, hi)
}

func TestSummarizeErrors(t *testing.T) {
	master := newResult(t, []string{"a", "b"}, []float64{2, 1}, 1, 2, 3, 4)
	wide := newResult(t, []string{"a", "b"}, []float64{3, 2, 1}, 1, 2, 3, 4, 5, 6)
	other := newResult(t, []string{"a", "z"}, []float64{2, 1}, 1, 2, 3, 4)

	_, err := Summarize([]*ordination.Result{master, wide}, MethodIQR)
	require.True(t, errors.Is(err, errors.ErrCodeInternal), "axis mismatch: %v", err)

	_, err = Summarize([]*ordination.Result{master, other}, MethodIQR)
	require.True(t, errors.IsAlignment(err), "sample mismatch: %v", err)

	_, err = Summarize([]*ordination.Result{master}, Method("median"))
	require.True(t, errors.Is(err, errors.ErrCodeConfiguration))
}

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"IQR", "ideal_fourths", "sdev"} {
		m, err := ParseMethod(s)
		require.NoError(t, err)
		require.Equal(t, s, string(m))
	}
	_, err := ParseMethod("iqr")
	require.Error(t, err)
}

func TestExtent3(t *testing.T) {
	s := &Summary{
		SampleIDs: []string{"a", "b"},
		Low: mat.NewDense(2, 3, []float64{
			-1, -2, -3,
			0, 0, 0,
		}),
		High: mat.NewDense(2, 3, []float64{
			1, 2, 3,
			0.5, 0.25, 0,
		}),
	}

	got, ok := s.Extent3("a")
	require.True(t, ok)
	require.Equal(t, [3]float64{2, 4, 6}, got)

	got, ok = s.Extent3("b")
	require.True(t, ok)
	require.Equal(t, [3]float64{0.5, 0.25, 0}, got)

	_, ok = s.Extent3("z")
	require.False(t, ok)
}
