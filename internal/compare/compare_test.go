package compare

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"crywolf/internal/config"
	"crywolf/internal/measure"
	"crywolf/internal/results"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func values(xs ...float64) []measure.Value {
	out := make([]measure.Value, len(xs))
	for i, x := range xs {
		out[i] = measure.Of(x)
	}
	return out
}

func TestMannWhitney_ExactSmallSamples(t *testing.T) {
	got, err := MannWhitney([]float64{1, 2, 3}, []float64{4, 5, 6})
	if err != nil {
		t.Fatalf("MannWhitney: %v", err)
	}
	if !got.Exact || got.Z.Valid() {
		t.Errorf("expected exact test, got %+v", got)
	}
	if got.U1 != 0 || got.U2 != 9 {
		t.Errorf("U1, U2 = %v, %v", got.U1, got.U2)
	}
	// one of C(6,3) = 20 orderings is this extreme, two-sided
	if !near(got.P, 0.1, 1e-12) {
		t.Errorf("P = %v, want 0.1", got.P)
	}
	if got.Effect != 1 {
		t.Errorf("Effect = %v, want 1", got.Effect)
	}
}

func TestMannWhitney_ExactIdenticalDistributionsCapsAtOne(t *testing.T) {
	got, err := MannWhitney([]float64{1, 4}, []float64{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if got.U1 != 2 || got.U2 != 2 || got.P != 1 || got.Effect != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestMannWhitney_NormalApproximation(t *testing.T) {
	var x, y []float64
	for i := 1; i <= 8; i++ {
		x = append(x, float64(i))
		y = append(y, float64(i+8))
	}
	got, err := MannWhitney(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if got.Exact {
		t.Fatal("n = 8 should use the normal approximation")
	}
	sigma := math.Sqrt(64.0 * 17 / 12)
	wantZ := (64 - 32 - 0.5) / sigma
	z, _ := got.Z.Get()
	if !near(z, wantZ, 1e-9) {
		t.Errorf("Z = %v, want %v", z, wantZ)
	}
	wantP := math.Erfc(wantZ / math.Sqrt2)
	if !near(got.P, wantP, 1e-9) || got.P > 0.001 {
		t.Errorf("P = %v, want %v", got.P, wantP)
	}
}

func TestMannWhitney_TiesAverageRanks(t *testing.T) {
	got, err := MannWhitney([]float64{1, 2, 2}, []float64{2, 3})
	if err != nil {
		t.Fatal(err)
	}
	// ranks: 1 -> 1, 2s -> 3, 3 -> 5; R1 = 7, U1 = 7 - 6 = 1
	if got.U1 != 1 || got.U2 != 5 || !got.Ties || got.Exact {
		t.Errorf("got %+v", got)
	}
	if got.P <= 0 || got.P > 1 {
		t.Errorf("P = %v", got.P)
	}
}

func TestMannWhitney_ZeroVariance(t *testing.T) {
	got, err := MannWhitney([]float64{3, 3, 3}, []float64{3, 3})
	if err != nil {
		t.Fatal(err)
	}
	if got.P != 1 || got.Z.Valid() {
		t.Errorf("got %+v", got)
	}
}

func TestMannWhitney_Empty(t *testing.T) {
	if _, err := MannWhitney(nil, []float64{1}); !errors.Is(err, ErrEmptySample) {
		t.Errorf("err = %v", err)
	}
}

func TestExactCounts_SumToBinomial(t *testing.T) {
	counts := exactCounts(4, 3)
	var total float64
	for _, c := range counts {
		total += c
	}
	if total != 35 || len(counts) != 13 {
		t.Errorf("total = %v, len = %d", total, len(counts))
	}
	if counts[0] != 1 || counts[12] != 1 {
		t.Errorf("tails = %v, %v", counts[0], counts[12])
	}
}

func TestCompare_EmptySampleNotPossible(t *testing.T) {
	r, err := Compare("sensitivity", nil, values(0.1, 0.2, 0.3, 0.4, 0.5))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if r.Possible {
		t.Error("comparison with an empty sample should not be possible")
	}
	if r.B.Stats.N != 5 || r.A.Stats.N != 0 {
		t.Errorf("stats N = %d/%d", r.A.Stats.N, r.B.Stats.N)
	}
}

func TestCompare_SkipsNA(t *testing.T) {
	r, err := Compare("x", append(values(1, 2), measure.NA), values(3))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Possible || r.Test.N1 != 2 || r.A.Stats.N != 2 {
		t.Errorf("got %+v", r)
	}
}

func TestParseCohort(t *testing.T) {
	tests := []struct {
		in      string
		want    Cohort
		wantErr bool
	}{
		{"", Cohort{Kind: All}, false},
		{"all", Cohort{Kind: All}, false},
		{"Exclude-Q1", Cohort{Kind: ExcludeQ1}, false},
		{"top:0.5", Cohort{Kind: Top, Q: 0.5}, false},
		{"bottom:0.25", Cohort{Kind: Bottom, Q: 0.25}, false},
		{"top:1.5", Cohort{}, true},
		{"middle:0.5", Cohort{}, true},
		{"top", Cohort{}, true},
	}
	for _, tt := range tests {
		got, err := ParseCohort(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCohort(%q) err = %v", tt.in, err)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrBadCohort) {
			t.Errorf("ParseCohort(%q) err = %v, want ErrBadCohort", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCohort(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if s := (Cohort{Kind: Top, Q: 0.5}).String(); s != "top:0.5" {
		t.Errorf("String = %q", s)
	}
}

func table() *results.Table {
	mk := func(name string, group int, minutes, sens float64, low bool) results.UserResult {
		return results.UserResult{
			Username:    name,
			Group:       group,
			TimeOnTask:  measure.Of(minutes),
			LowTime:     low,
			Sensitivity: measure.Of(sens),
		}
	}
	return &results.Table{Users: []results.UserResult{
		mk("a", 1, 10, 0.2, true),
		mk("b", 1, 20, 0.4, false),
		mk("c", 1, 30, 0.5, false),
		mk("d", 3, 40, 0.9, false),
		mk("e", 3, 50, 0.8, false),
		mk("f", 3, 60, 0.7, false),
		{Username: "g", Group: 2, TimeOnTask: measure.Of(70)},
		{Username: "h", Group: 1},
	}}
}

func names(users []results.UserResult) []string {
	var out []string
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

func TestCohort_Filter(t *testing.T) {
	users := table().Users
	// times 10..70 over seven users: median 40
	tests := []struct {
		cohort Cohort
		want   []string
	}{
		{Cohort{Kind: All}, []string{"a", "b", "c", "d", "e", "f", "g", "h"}},
		{Cohort{Kind: ExcludeQ1}, []string{"b", "c", "d", "e", "f", "g", "h"}},
		{Cohort{Kind: Top, Q: 0.5}, []string{"e", "f", "g"}},
		{Cohort{Kind: Bottom, Q: 0.5}, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.cohort.String(), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, names(tt.cohort.Filter(users))); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	got, err := Run(cfg, table(), []string{"sensitivity"}, Cohort{Kind: ExcludeQ1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("results = %d", len(got))
	}
	r := got[0]
	if r.Cohort != "exclude-q1" || r.A.Label != "50% FAR" || r.B.Label != "86% FAR" {
		t.Errorf("labels = %+v", r)
	}
	// group 1 after exclusion: b, c (h has NA sensitivity); group 3: d, e, f
	if !r.Possible || r.Test.N1 != 2 || r.Test.N2 != 3 {
		t.Errorf("test = %+v", r.Test)
	}
	if r.Test.U1 != 0 || r.Test.Effect != 1 {
		t.Errorf("U1 = %v effect = %v", r.Test.U1, r.Test.Effect)
	}

	all, err := Run(cfg, table(), nil, Cohort{Kind: All})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(results.OutcomeMeasures) {
		t.Errorf("default measures = %d", len(all))
	}

	if _, err := Run(cfg, table(), []string{"nope"}, Cohort{}); !errors.Is(err, results.ErrUnknownMeasure) {
		t.Errorf("err = %v", err)
	}
}

func TestDescribe(t *testing.T) {
	got, err := Describe(config.Default(), table(), []string{"time_on_task"}, Cohort{Kind: All})
	if err != nil {
		t.Fatal(err)
	}
	sides := got["time_on_task"]
	if len(sides) != 2 || sides[0].Group != 1 || sides[0].Stats.N != 3 {
		t.Fatalf("sides = %+v", sides)
	}
	if sides[1].Stats.Mean != measure.Of(50) {
		t.Errorf("group 3 mean = %v", sides[1].Stats.Mean)
	}
}
