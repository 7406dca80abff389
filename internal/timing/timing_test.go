package timing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"crywolf/internal/experiment"
	"crywolf/internal/measure"
)

var t0 = time.Date(2019, 11, 4, 9, 0, 0, 0, time.UTC)

func sec(s int) time.Time { return t0.Add(time.Duration(s) * time.Second) }

func TestAnalyze(t *testing.T) {
	decisions := []experiment.Decision{
		{User: "a", EventID: 1, Time: sec(30), Seq: 0},
		{User: "a", EventID: 1, Time: sec(90), Seq: 1}, // resubmission, ignored
		{User: "a", EventID: 2, Time: sec(20), Seq: 2},
		{User: "a", EventID: 3, Time: sec(100), Seq: 3},
		{User: "b", EventID: 1, Time: sec(50), Seq: 4},
	}
	clicks := []experiment.Click{
		{User: "a", EventID: 1, Time: sec(10), Seq: 0},
		{User: "a", EventID: 1, Time: sec(25), Seq: 1},
		{User: "a", EventID: 2, Time: sec(5), Seq: 2},
		{User: "b", EventID: 1, Time: sec(40), Seq: 3},
	}
	rep := Analyze(decisions, clicks)

	if len(rep.Users) != 2 || rep.Users[0].User != "a" {
		t.Fatalf("users = %+v", rep.Users)
	}
	a := rep.Users[0]
	var order []int
	for _, s := range a.Steps {
		order = append(order, s.EventID)
	}
	if diff := cmp.Diff([]int{2, 1, 3}, order); diff != "" {
		t.Errorf("sequence mismatch (-want +got):\n%s", diff)
	}
	wantLat := []measure.Value{measure.Of(15), measure.Of(20), measure.NA}
	for i, s := range a.Steps {
		if s.Latency != wantLat[i] {
			t.Errorf("step %d latency = %v, want %v", i, s.Latency, wantLat[i])
		}
	}
	if a.Steps[2].ClickedAt != nil {
		t.Error("unclicked step should have no click time")
	}
	if a.MeanLatency != measure.Of(17.5) {
		t.Errorf("mean latency = %v", a.MeanLatency)
	}

	m := rep.Matrix()
	if len(m) != 2 || len(m[1]) != 3 || m[1][1].Valid() || m[1][0] != measure.Of(10) {
		t.Errorf("matrix = %v", m)
	}

	want := []Position{
		{Index: 1, Mean: measure.Of(12.5), N: 2},
		{Index: 2, Mean: measure.Of(20), N: 1},
		{Index: 3, Mean: measure.NA, N: 0},
	}
	if diff := cmp.Diff(want, rep.Positions, cmp.AllowUnexported(measure.Value{})); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}

	if rep.MeanLatency()["b"] != measure.Of(10) {
		t.Errorf("b mean = %v", rep.MeanLatency()["b"])
	}
}

func TestAnalyze_Empty(t *testing.T) {
	rep := Analyze(nil, nil)
	if len(rep.Users) != 0 || rep.Positions != nil || len(rep.Matrix()) != 0 {
		t.Errorf("empty report = %+v", rep)
	}
}
