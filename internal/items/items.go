// Package items computes classical item statistics for each alert event,
// separately per experimental group: difficulty (share answered correctly)
// and the upper-lower discrimination index.
package items

import (
	"math"
	"sort"

	"crywolf/internal/confusion"
	"crywolf/internal/experiment"
	"crywolf/internal/measure"
	"crywolf/internal/results"
	"crywolf/internal/stats"
)

// TailFraction is the share of ranked users in each discrimination tail.
const TailFraction = 0.27

// HighDiscrimination is the D above which an item discriminates well.
const HighDiscrimination = 0.4

// GroupItem is one event's statistics within one group.
type GroupItem struct {
	Group          int           `json:"group"`
	Labeled        int           `json:"labeled"`
	Correct        int           `json:"correct"`
	Difficulty     measure.Value `json:"difficulty"`
	Discrimination measure.Value `json:"discrimination"`

	High    bool `json:"high_discrimination"`
	TooEasy bool `json:"too_easy"`
	TooHard bool `json:"too_hard"`
}

// Item is one event across groups, with Groups ordered by group ID.
type Item struct {
	EventID int               `json:"event_id"`
	Truth   experiment.Choice `json:"truth"`
	Groups  []GroupItem       `json:"groups"`
}

// For returns the statistics of group g.
func (it Item) For(g int) (GroupItem, bool) {
	for _, gi := range it.Groups {
		if gi.Group == g {
			return gi, true
		}
	}
	return GroupItem{}, false
}

// GroupSummary holds per-group cutoffs and bucket counts.
type GroupSummary struct {
	Group            int           `json:"group"`
	Users            int           `json:"users"`
	Ranked           int           `json:"ranked"`
	TailSize         int           `json:"tail_size"`
	DifficultyMedian measure.Value `json:"difficulty_median"`
	DifficultyQ3     measure.Value `json:"difficulty_q3"`
	High             int           `json:"high_discrimination"`
	TooEasy          int           `json:"too_easy"`
	TooHard          int           `json:"too_hard"`
}

// Analysis is the item table plus the per-group summaries.
type Analysis struct {
	Items  []Item         `json:"items"`
	Groups []GroupSummary `json:"groups"`
}

// TailSize is round-half-up(TailFraction * n).
func TailSize(n int) int {
	return int(math.Floor(TailFraction*float64(n) + 0.5))
}

// Rank orders users by correctness, best first, ties by username. Users
// whose correctness is NA are left out.
func Rank(users []results.UserResult) []results.UserResult {
	ranked := make([]results.UserResult, 0, len(users))
	for _, u := range users {
		if u.Correctness.Valid() {
			ranked = append(ranked, u)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := ranked[i].Correctness.Or(0), ranked[j].Correctness.Or(0)
		if ci != cj {
			return ci > cj
		}
		return ranked[i].Username < ranked[j].Username
	})
	return ranked
}

// Analyze computes item statistics for every event in truth. An undecided
// answer counts as labeled and not correct.
func Analyze(users []results.UserResult, truth map[int]experiment.Choice) Analysis {
	byGroup := map[int][]results.UserResult{}
	for _, u := range users {
		byGroup[u.Group] = append(byGroup[u.Group], u)
	}
	groups := make([]int, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Ints(groups)

	eventIDs := make([]int, 0, len(truth))
	for id := range truth {
		eventIDs = append(eventIDs, id)
	}
	sort.Ints(eventIDs)

	var a Analysis
	a.Items = make([]Item, len(eventIDs))
	for i, id := range eventIDs {
		a.Items[i] = Item{EventID: id, Truth: truth[id]}
	}

	for _, g := range groups {
		members := byGroup[g]
		ranked := Rank(members)
		tail := TailSize(len(ranked))
		top := ranked[:tail]
		bottom := ranked[len(ranked)-tail:]

		sum := GroupSummary{Group: g, Users: len(members), Ranked: len(ranked), TailSize: tail}
		var difficulties []float64
		for i, id := range eventIDs {
			labeled, correct := tally(members, id)
			gi := GroupItem{
				Group:          g,
				Labeled:        labeled,
				Correct:        correct,
				Difficulty:     measure.Ratio(correct, labeled),
				Discrimination: discrimination(top, bottom, id),
			}
			if d, ok := gi.Difficulty.Get(); ok {
				difficulties = append(difficulties, d)
			}
			a.Items[i].Groups = append(a.Items[i].Groups, gi)
		}

		sum.DifficultyMedian = stats.Median(difficulties)
		sum.DifficultyQ3 = stats.Quantile(0.75, difficulties)
		for i := range a.Items {
			gi := &a.Items[i].Groups[len(a.Items[i].Groups)-1]
			bucket(gi, sum.DifficultyMedian, sum.DifficultyQ3)
			if gi.High {
				sum.High++
			}
			if gi.TooEasy {
				sum.TooEasy++
			}
			if gi.TooHard {
				sum.TooHard++
			}
		}
		a.Groups = append(a.Groups, sum)
	}
	return a
}

func tally(users []results.UserResult, eventID int) (labeled, correct int) {
	for _, u := range users {
		l := u.Outcomes.Label(eventID)
		if l == confusion.Unlabeled {
			continue
		}
		labeled++
		if l.Correct() {
			correct++
		}
	}
	return labeled, correct
}

// discrimination divides by the larger count of tail members who labeled the
// event, not the tail size, so users who skipped the event do not pull D
// toward zero.
func discrimination(top, bottom []results.UserResult, eventID int) measure.Value {
	tl, tc := tally(top, eventID)
	bl, bc := tally(bottom, eventID)
	if tl == 0 || bl == 0 {
		return measure.NA
	}
	return measure.Of(float64(tc-bc) / float64(max(tl, bl)))
}

// bucket flags an item. Items with NA difficulty or discrimination fall in
// no bucket.
func bucket(gi *GroupItem, median, q3 measure.Value) {
	d, dok := gi.Discrimination.Get()
	p, pok := gi.Difficulty.Get()
	if !dok || !pok {
		return
	}
	if d > HighDiscrimination {
		gi.High = true
		return
	}
	if q, ok := q3.Get(); ok && p >= q {
		gi.TooEasy = true
	}
	if m, ok := median.Get(); ok && p < m {
		gi.TooHard = true
	}
}
