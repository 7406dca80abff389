// Package confusion labels decisions against event ground truth.
package confusion

import (
	"errors"
	"fmt"
	"sort"

	"crywolf/internal/experiment"
)

// ErrUnknownChoice is returned for a decision whose choice is not one of the
// three recorded answers.
var ErrUnknownChoice = errors.New("unknown choice")

// Label is the confusion-matrix outcome of one decision.
type Label int

const (
	Unlabeled Label = iota
	TruePositive
	FalsePositive
	TrueNegative
	FalseNegative
	Undecided
)

var labelNames = map[Label]string{
	Unlabeled:     "",
	TruePositive:  "TP",
	FalsePositive: "FP",
	TrueNegative:  "TN",
	FalseNegative: "FN",
	Undecided:     "U",
}

func (l Label) String() string { return labelNames[l] }

// ParseLabel is the inverse of Label.String.
func ParseLabel(s string) (Label, error) {
	for l, name := range labelNames {
		if name == s {
			return l, nil
		}
	}
	return Unlabeled, fmt.Errorf("parse label %q: unknown", s)
}

// Correct reports whether the label is a true positive or true negative.
func (l Label) Correct() bool { return l == TruePositive || l == TrueNegative }

// Classify labels choice against ground truth.
func Classify(choice, truth experiment.Choice) (Label, error) {
	switch choice {
	case experiment.DontKnow:
		return Undecided, nil
	case experiment.Escalate:
		if truth == experiment.Escalate {
			return TruePositive, nil
		}
		return FalsePositive, nil
	case experiment.DontEscalate:
		if truth == experiment.Escalate {
			return FalseNegative, nil
		}
		return TrueNegative, nil
	}
	return Unlabeled, fmt.Errorf("%w: %q", ErrUnknownChoice, string(choice))
}

// Outcomes maps event ID to label for one user. It is built once and only read.
type Outcomes struct {
	byID map[int]Label
}

// Label returns the label for an event; Unlabeled if the user never answered.
func (o Outcomes) Label(eventID int) Label { return o.byID[eventID] }

// Len is the number of labeled events.
func (o Outcomes) Len() int { return len(o.byID) }

// EventIDs returns the labeled event IDs in ascending order.
func (o Outcomes) EventIDs() []int {
	ids := make([]int, 0, len(o.byID))
	for id := range o.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Map returns a copy of the event ID → label mapping.
func (o Outcomes) Map() map[int]Label {
	out := make(map[int]Label, len(o.byID))
	for k, v := range o.byID {
		out[k] = v
	}
	return out
}

// Counts tallies the labels.
func (o Outcomes) Counts() Counts {
	var c Counts
	for _, l := range o.byID {
		c.Add(l)
	}
	return c
}

// OutcomesFrom builds Outcomes from an existing mapping, e.g. one read back
// from a results store. Unlabeled entries are ignored.
func OutcomesFrom(m map[int]Label) Outcomes {
	o := Outcomes{byID: make(map[int]Label, len(m))}
	for k, v := range m {
		if v != Unlabeled {
			o.byID[k] = v
		}
	}
	return o
}

// ClassifyUser labels a user's deduplicated decisions. truth maps event ID
// to ground truth; decisions on events missing from truth are skipped.
func ClassifyUser(decisions []experiment.Decision, truth map[int]experiment.Choice) (Outcomes, error) {
	o := Outcomes{byID: make(map[int]Label, len(decisions))}
	for _, d := range decisions {
		t, ok := truth[d.EventID]
		if !ok {
			continue
		}
		l, err := Classify(d.Choice, t)
		if err != nil {
			return Outcomes{}, fmt.Errorf("classify decision %d of %s on event %d: %w", d.ID, d.User, d.EventID, err)
		}
		o.byID[d.EventID] = l
	}
	return o, nil
}

// Counts is a confusion matrix plus the undecided tally.
type Counts struct {
	TP        int `json:"tp"`
	FP        int `json:"fp"`
	TN        int `json:"tn"`
	FN        int `json:"fn"`
	Undecided int `json:"undecided"`
}

// Add tallies one label. Unlabeled is ignored.
func (c *Counts) Add(l Label) {
	switch l {
	case TruePositive:
		c.TP++
	case FalsePositive:
		c.FP++
	case TrueNegative:
		c.TN++
	case FalseNegative:
		c.FN++
	case Undecided:
		c.Undecided++
	}
}

// Of returns the tally of one label; 0 for Unlabeled.
func (c Counts) Of(l Label) int {
	switch l {
	case TruePositive:
		return c.TP
	case FalsePositive:
		return c.FP
	case TrueNegative:
		return c.TN
	case FalseNegative:
		return c.FN
	case Undecided:
		return c.Undecided
	}
	return 0
}

// Decided is TP+FP+TN+FN.
func (c Counts) Decided() int { return c.TP + c.FP + c.TN + c.FN }

// Total is Decided plus Undecided.
func (c Counts) Total() int { return c.Decided() + c.Undecided }
