package confusion

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"crywolf/internal/experiment"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		choice, truth experiment.Choice
		want          Label
	}{
		{experiment.Escalate, experiment.Escalate, TruePositive},
		{experiment.DontEscalate, experiment.Escalate, FalseNegative},
		{experiment.Escalate, experiment.DontEscalate, FalsePositive},
		{experiment.DontEscalate, experiment.DontEscalate, TrueNegative},
		{experiment.DontKnow, experiment.Escalate, Undecided},
		{experiment.DontKnow, experiment.DontEscalate, Undecided},
	}
	for _, tt := range tests {
		t.Run(string(tt.choice)+"/"+string(tt.truth), func(t *testing.T) {
			got, err := Classify(tt.choice, tt.truth)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
			again, _ := Classify(tt.choice, tt.truth)
			if again != got {
				t.Error("Classify is not deterministic")
			}
		})
	}
}

func TestClassify_UnknownChoice(t *testing.T) {
	_, err := Classify("Escalated", experiment.Escalate)
	if !errors.Is(err, ErrUnknownChoice) {
		t.Fatalf("err = %v, want ErrUnknownChoice", err)
	}
}

// One true alarm answered three ways by three users.
func TestCounts_SingleEventScenario(t *testing.T) {
	truth := map[int]experiment.Choice{1: experiment.Escalate}
	var total Counts
	for _, choice := range []experiment.Choice{experiment.Escalate, experiment.DontEscalate, experiment.DontKnow} {
		o, err := ClassifyUser([]experiment.Decision{{EventID: 1, Choice: choice}}, truth)
		if err != nil {
			t.Fatalf("ClassifyUser: %v", err)
		}
		c := o.Counts()
		total.TP += c.TP
		total.FP += c.FP
		total.TN += c.TN
		total.FN += c.FN
		total.Undecided += c.Undecided
	}
	want := Counts{TP: 1, FN: 1, Undecided: 1}
	if diff := cmp.Diff(want, total); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
	if total.Total() != 3 || total.Decided() != 2 {
		t.Errorf("Total/Decided = %d/%d", total.Total(), total.Decided())
	}
}

func TestClassifyUser(t *testing.T) {
	truth := map[int]experiment.Choice{
		1: experiment.Escalate,
		2: experiment.DontEscalate,
		3: experiment.DontEscalate,
	}
	decisions := []experiment.Decision{
		{EventID: 1, Choice: experiment.Escalate},
		{EventID: 2, Choice: experiment.Escalate},
		{EventID: 9, Choice: experiment.Escalate},
	}
	o, err := ClassifyUser(decisions, truth)
	if err != nil {
		t.Fatalf("ClassifyUser: %v", err)
	}
	if diff := cmp.Diff(map[int]Label{1: TruePositive, 2: FalsePositive}, o.Map()); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if o.Label(3) != Unlabeled {
		t.Error("unanswered event should stay unlabeled")
	}
	if diff := cmp.Diff([]int{1, 2}, o.EventIDs()); diff != "" {
		t.Errorf("EventIDs mismatch (-want +got):\n%s", diff)
	}

	m := o.Map()
	m[3] = TrueNegative
	if o.Len() != 2 {
		t.Error("Map must return a copy")
	}

	if _, err := ClassifyUser([]experiment.Decision{{EventID: 1, Choice: "?"}}, truth); !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("err = %v, want ErrUnknownChoice", err)
	}
}

func TestLabel_StringRoundTrip(t *testing.T) {
	for _, l := range []Label{TruePositive, FalsePositive, TrueNegative, FalseNegative, Undecided} {
		got, err := ParseLabel(l.String())
		if err != nil || got != l {
			t.Errorf("ParseLabel(%q) = %v, %v", l.String(), got, err)
		}
	}
	if _, err := ParseLabel("XX"); err == nil {
		t.Error("expected error")
	}
}

func TestOutcomesFrom_DropsUnlabeled(t *testing.T) {
	o := OutcomesFrom(map[int]Label{1: TruePositive, 2: Unlabeled})
	if o.Len() != 1 {
		t.Errorf("Len = %d", o.Len())
	}
}

func TestCounts_Of(t *testing.T) {
	c := Counts{TP: 1, FP: 2, TN: 3, FN: 4, Undecided: 5}
	for l, want := range map[Label]int{
		TruePositive: 1, FalsePositive: 2, TrueNegative: 3, FalseNegative: 4, Undecided: 5, Unlabeled: 0,
	} {
		if got := c.Of(l); got != want {
			t.Errorf("Of(%v) = %d, want %d", l, got, want)
		}
	}
}
