package stats

import (
	"math"
	"testing"

	"crywolf/internal/measure"
)

func approx(t *testing.T, label string, got measure.Value, want float64) {
	t.Helper()
	f, ok := got.Get()
	if !ok {
		t.Fatalf("%s = N/A, want %v", label, want)
	}
	if math.Abs(f-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", label, f, want)
	}
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	xs := []float64{7, 1, 3, 5} // sorted: 1 3 5 7
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 2.5},
		{0.5, 4},
		{0.75, 5.5},
		{1, 7},
	}
	for _, tt := range tests {
		approx(t, "Quantile", Quantile(tt.p, xs), tt.want)
	}
	if xs[0] != 7 {
		t.Error("Quantile must not reorder its input")
	}
}

func TestQuantile_Edges(t *testing.T) {
	if Quantile(0.5, nil).Valid() {
		t.Error("empty input should be N/A")
	}
	if Quantile(1.5, []float64{1}).Valid() {
		t.Error("p outside [0,1] should be N/A")
	}
	approx(t, "single", Quantile(0.25, []float64{42}), 42)
}

func TestMedian(t *testing.T) {
	approx(t, "odd", Median([]float64{3, 1, 2}), 2)
	approx(t, "even", Median([]float64{4, 1, 3, 2}), 2.5)
}

func TestPopStdDev(t *testing.T) {
	approx(t, "varied", PopStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 2)
	approx(t, "single", PopStdDev([]float64{5}), 0)
	if PopStdDev(nil).Valid() {
		t.Error("empty should be N/A")
	}
}

func TestDescribe(t *testing.T) {
	d := Describe([]float64{1, 2, 3, 4})
	if d.N != 4 {
		t.Errorf("N = %d", d.N)
	}
	approx(t, "mean", d.Mean, 2.5)
	approx(t, "median", d.Median, 2.5)
	approx(t, "std", d.StdDev, math.Sqrt(1.25))
	approx(t, "min", d.Min, 1)
	approx(t, "max", d.Max, 4)

	empty := Describe(nil)
	if empty.N != 0 || empty.Mean.Valid() || empty.Min.Valid() || empty.Max.Valid() {
		t.Errorf("empty Describe = %+v", empty)
	}
}

func TestDescribeValues_SkipsNA(t *testing.T) {
	d := DescribeValues([]measure.Value{measure.Of(1), measure.NA, measure.Of(3)})
	if d.N != 2 {
		t.Errorf("N = %d, want 2", d.N)
	}
	approx(t, "mean", d.Mean, 2)
}
