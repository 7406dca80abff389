package results

import (
	"errors"
	"fmt"
	"strings"

	"crywolf/internal/experiment"
	"crywolf/internal/measure"
)

// ErrUnknownMeasure is returned by Lookup for an unregistered name.
var ErrUnknownMeasure = errors.New("unknown measure")

// Measure extracts one numeric column of the results table.
type Measure struct {
	Name        string
	Description string
	Of          func(UserResult) measure.Value
}

func count(f func(UserResult) int) func(UserResult) measure.Value {
	return func(u UserResult) measure.Value { return measure.Of(float64(f(u))) }
}

func workload(i int) func(UserResult) measure.Value {
	return func(u UserResult) measure.Value { return u.Workload[i] }
}

var registry = func() []Measure {
	ms := []Measure{
		{"time_on_task", "Session length in minutes", func(u UserResult) measure.Value { return u.TimeOnTask }},
		{"sensitivity", "TP / (TP + FN)", func(u UserResult) measure.Value { return u.Sensitivity }},
		{"specificity", "TN / (TN + FP)", func(u UserResult) measure.Value { return u.Specificity }},
		{"precision", "TP / (TP + FP)", func(u UserResult) measure.Value { return u.Precision }},
		{"correctness", "(TP + TN) / decided", func(u UserResult) measure.Value { return u.Correctness }},
		{"confidence", "Mean confidence of decided answers", func(u UserResult) measure.Value { return u.MeanConfidence }},
		{"decision_count", "Deduplicated decisions", count(func(u UserResult) int { return u.DecisionCount })},
		{"tp", "True positives", count(func(u UserResult) int { return u.Counts.TP })},
		{"fp", "False positives", count(func(u UserResult) int { return u.Counts.FP })},
		{"tn", "True negatives", count(func(u UserResult) int { return u.Counts.TN })},
		{"fn", "False negatives", count(func(u UserResult) int { return u.Counts.FN })},
		{"undecided", "I don't know answers", count(func(u UserResult) int { return u.Counts.Undecided })},
		{"knowledge_score", "Prequestionnaire knowledge score", func(u UserResult) measure.Value { return u.KnowledgeScore }},
		{"check_score", "Attention checks passed", func(u UserResult) measure.Value { return u.CheckScore }},
		{"raw_tlx", "Unweighted mean workload", func(u UserResult) measure.Value { return u.RawTLX }},
		{"mean_latency", "Mean click-to-decision seconds", func(u UserResult) measure.Value { return u.MeanLatency }},
	}
	for i, dim := range experiment.WorkloadDimensions {
		ms = append(ms, Measure{dim, "Workload rating: " + dim, workload(i)})
	}
	return ms
}()

// Registered returns every measure in registration order.
func Registered() []Measure {
	out := make([]Measure, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a measure by name, case-insensitively.
func Lookup(name string) (Measure, error) {
	for _, m := range registry {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return Measure{}, fmt.Errorf("%w: %q", ErrUnknownMeasure, name)
}

// OutcomeMeasures are the measures group comparisons report by default.
var OutcomeMeasures = []string{"time_on_task", "sensitivity", "specificity", "precision", "correctness", "confidence"}

// Column extracts m for every user.
func Column(users []UserResult, m Measure) []measure.Value {
	out := make([]measure.Value, len(users))
	for i, u := range users {
		out[i] = m.Of(u)
	}
	return out
}
