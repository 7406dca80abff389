package dedup

import (
	"sort"

	"crywolf/internal/experiment"
)

// Answer is the content of a decision that counts as a change when it differs.
type Answer struct {
	Choice     experiment.Choice `json:"choice"`
	Confidence *int              `json:"confidence,omitempty"`
}

func (a Answer) same(b Answer) bool {
	if a.Choice != b.Choice {
		return false
	}
	if a.Confidence == nil || b.Confidence == nil {
		return a.Confidence == nil && b.Confidence == nil
	}
	return *a.Confidence == *b.Confidence
}

// ChangedPair is a (user, event) whose resubmissions changed the answer.
// Answers are the distinct answers in first-seen order.
type ChangedPair struct {
	User    string   `json:"user"`
	EventID int      `json:"event_id"`
	Answers []Answer `json:"answers"`
}

// ResubmissionReport summarizes repeated decisions.
type ResubmissionReport struct {
	Decisions     int `json:"decisions"`
	Pairs         int `json:"pairs"`
	Users         int `json:"users"`
	Resubmissions int `json:"resubmissions"`

	// Changes is the sum over pairs of (distinct answers - 1).
	Changes      int            `json:"changes"`
	ChangedPairs int            `json:"changed_pairs"`
	ChangedBy    map[string]int `json:"changed_by"`
	Changed      []ChangedPair  `json:"changed"`
}

// Resubmissions analyzes every decision after the first for each
// (user, event). A resubmission with identical choice and confidence is
// counted as a resubmission but not as a change.
func Resubmissions(decisions []experiment.Decision) ResubmissionReport {
	rep := ResubmissionReport{
		Decisions: len(decisions),
		ChangedBy: map[string]int{},
	}
	users := map[string]bool{}
	for k, ds := range ByPair(decisions) {
		users[k.User] = true
		rep.Pairs++
		rep.Resubmissions += len(ds) - 1

		var distinct []Answer
		for _, d := range ds {
			a := Answer{Choice: d.Choice, Confidence: d.Confidence}
			seen := false
			for _, x := range distinct {
				if x.same(a) {
					seen = true
					break
				}
			}
			if !seen {
				distinct = append(distinct, a)
			}
		}
		if len(distinct) > 1 {
			rep.Changes += len(distinct) - 1
			rep.ChangedPairs++
			rep.ChangedBy[k.User]++
			rep.Changed = append(rep.Changed, ChangedPair{User: k.User, EventID: k.EventID, Answers: distinct})
		}
	}
	rep.Users = len(users)
	sort.Slice(rep.Changed, func(i, j int) bool {
		if rep.Changed[i].User != rep.Changed[j].User {
			return rep.Changed[i].User < rep.Changed[j].User
		}
		return rep.Changed[i].EventID < rep.Changed[j].EventID
	})
	return rep
}
