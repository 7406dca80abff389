// Package report renders analysis results as terminal, Markdown or CSV
// tables.
package report

import (
	"fmt"
	"sort"
	"strings"

	"crywolf/internal/analysis"
	"crywolf/internal/compare"
	"crywolf/internal/config"
	"crywolf/internal/confusion"
	"crywolf/internal/dedup"
	"crywolf/internal/display"
	"crywolf/internal/experiment"
	"crywolf/internal/format"
	"crywolf/internal/items"
	"crywolf/internal/results"
	"crywolf/internal/timing"
)

// Full renders the summary, users, items and comparison sections of a run.
// In CSV mode sections are separated by a blank line.
func Full(m format.Mode, cfg config.Config, rep *analysis.Report) string {
	sections := []string{
		Users(m, cfg, rep.Users),
		Items(m, cfg, rep.Items),
		Comparisons(m, rep.Comparisons),
	}
	if m != format.CSV {
		sections = append([]string{Summary(rep)}, sections...)
	}
	return strings.Join(sections, "\n\n") + "\n"
}

// Summary is the plain-text run header.
func Summary(rep *analysis.Report) string {
	var b strings.Builder
	n := rep.Normalization
	fmt.Fprintf(&b, "=== Cry Wolf Analysis: %s ===\n", rep.Experiment)
	fmt.Fprintf(&b, "Events:     %d true alarms, %d false alarms (%d check events dropped, %d overridden)\n",
		n.TrueAlarms, n.FalseAlarms, n.CheckEvents, n.Overridden)
	fmt.Fprintf(&b, "Users:      %d analyzed, %d excluded, %d incomplete\n",
		len(rep.Users.Users), n.ExcludedUsers, len(rep.Users.Incomplete))
	fmt.Fprintf(&b, "Decisions:  %d duplicates dropped, %d orphan decisions, %d orphan clicks\n",
		rep.DroppedDuplicates, n.OrphanDecisions, n.OrphanClicks)
	fmt.Fprintf(&b, "Time on task cutoff (q): %s min", rep.Users.TimeCutoff.Format(2))
	return b.String()
}

// Users renders one row per analyzed user.
func Users(m format.Mode, cfg config.Config, tbl *results.Table) string {
	t := format.NewTable(m)
	t.Title("Users")
	t.Header("User", "Group", "Time", "Q1", "Decisions", "TP", "FP", "TN", "FN", "U",
		"Sensitivity", "Specificity", "Precision", "Correctness", "Confidence",
		"Experience", "Knowledge", "Checks", "Raw TLX", "Latency (s)")
	for _, u := range tbl.Users {
		exp := string(u.Experience)
		if exp == "" {
			exp = "-"
		}
		t.Row(format.Truncate(u.Username, 24), display.Group(cfg.GroupLabel(u.Group), u.Group), format.Minutes(u.TimeOnTask), format.BoolMark(u.LowTime),
			fmt.Sprintf("%d/%d", u.DecisionCount, u.AssignedEvents),
			u.Counts.TP, u.Counts.FP, u.Counts.TN, u.Counts.FN, u.Counts.Undecided,
			format.Value(u.Sensitivity, 3), format.Value(u.Specificity, 3),
			format.Value(u.Precision, 3), format.Value(u.Correctness, 3),
			format.Value(u.MeanConfidence, 2),
			exp, format.Value(u.KnowledgeScore, 0), format.Value(u.CheckScore, 0),
			format.Value(u.RawTLX, 2), format.Value(u.MeanLatency, 1))
	}
	return t.String()
}

// Items renders item statistics, one row per event and group, followed by
// the per-group cutoffs.
func Items(m format.Mode, cfg config.Config, a items.Analysis) string {
	s := format.NewTable(m)
	s.Title("Item groups")
	s.Header("Group", "Users", "Ranked", "Tail", "Median p", "Q3 p", "High D", "Too easy", "Too hard")
	for _, g := range a.Groups {
		s.Row(display.Group(cfg.GroupLabel(g.Group), g.Group), g.Users, g.Ranked, g.TailSize,
			format.Value(g.DifficultyMedian, 3), format.Value(g.DifficultyQ3, 3), g.High, g.TooEasy, g.TooHard)
	}
	return ItemTable(m, cfg, a.Items) + "\n\n" + s.String()
}

// ItemTable renders one row per event and group.
func ItemTable(m format.Mode, cfg config.Config, its []items.Item) string {
	t := format.NewTable(m)
	t.Title("Items")
	t.Header("Event", "Truth", "Group", "Labeled", "Correct", "Difficulty", "D", "Bucket")
	for _, it := range its {
		for _, gi := range it.Groups {
			bucket := display.Bucket(gi)
			if bucket == "" {
				bucket = "-"
			}
			t.Row(it.EventID, string(it.Truth), display.Group(cfg.GroupLabel(gi.Group), gi.Group), gi.Labeled, gi.Correct,
				format.Value(gi.Difficulty, 3), format.Value(gi.Discrimination, 3), bucket)
		}
	}
	return t.String()
}

// Comparisons renders Mann–Whitney results.
func Comparisons(m format.Mode, rs []compare.Result) string {
	t := format.NewTable(m)
	t.Title("Group comparisons")
	t.Header("Cohort", "Measure", "A", "n", "Median", "B", "n", "Median", "U", "p", "Effect", "Method")
	for _, r := range rs {
		row := []any{display.Cohort(r.Cohort), display.Measure(r.Measure),
			r.A.Label, r.A.Stats.N, format.Value(r.A.Stats.Median, 3),
			r.B.Label, r.B.Stats.N, format.Value(r.B.Stats.Median, 3)}
		if !r.Possible {
			row = append(row, "-", "-", "-", "not possible")
		} else {
			method := "normal"
			if r.Test.Exact {
				method = "exact"
			}
			row = append(row, fmt.Sprintf("%g", max(r.Test.U1, r.Test.U2)), format.PValue(r.Test.P),
				fmt.Sprintf("%.3f", r.Test.Effect), method)
		}
		t.Row(row...)
	}
	return t.String()
}

// Descriptives renders per-group descriptive statistics by measure.
func Descriptives(m format.Mode, title string, sides map[string][]compare.Side) string {
	names := make([]string, 0, len(sides))
	for n := range sides {
		names = append(names, n)
	}
	sort.Strings(names)

	t := format.NewTable(m)
	t.Title(title)
	t.Header("Measure", "Group", "n", "Mean", "SD", "Median", "Min", "Max")
	for _, n := range names {
		for _, s := range sides[n] {
			t.Row(display.Measure(n), s.Label, s.Stats.N,
				format.Value(s.Stats.Mean, 3), format.Value(s.Stats.StdDev, 3), format.Value(s.Stats.Median, 3),
				format.Value(s.Stats.Min, 3), format.Value(s.Stats.Max, 3))
		}
	}
	return t.String()
}

// Timing renders mean latency by decision position and per user.
func Timing(m format.Mode, r timing.Report) string {
	p := format.NewTable(m)
	p.Title("Latency by position")
	p.Header("Position", "Users", "Mean latency (s)")
	for _, pos := range r.Positions {
		p.Row(pos.Index, pos.N, format.Value(pos.Mean, 1))
	}

	u := format.NewTable(m)
	u.Title("Latency by user")
	u.Header("User", "Decided", "With click", "Mean latency (s)")
	for _, ut := range r.Users {
		clicked := 0
		for _, s := range ut.Steps {
			if s.Latency.Valid() {
				clicked++
			}
		}
		u.Row(ut.User, len(ut.Steps), clicked, format.Value(ut.MeanLatency, 1))
	}
	return p.String() + "\n\n" + u.String()
}

// Resubmissions renders the resubmission summary and each changed pair.
func Resubmissions(m format.Mode, r dedup.ResubmissionReport) string {
	s := format.NewTable(m)
	s.Title("Resubmissions")
	s.Header("Decisions", "Pairs", "Users", "Resubmissions", "Changes", "Changed pairs")
	s.Row(r.Decisions, r.Pairs, r.Users, r.Resubmissions, r.Changes, r.ChangedPairs)

	c := format.NewTable(m)
	c.Title("Changed answers")
	c.Header("User", "Event", "Answers")
	c.Columns(format.ColumnConfig{Number: 3, MaxWidth: 60})
	for _, p := range r.Changed {
		answers := make([]string, len(p.Answers))
		for i, a := range p.Answers {
			answers[i] = string(a.Choice)
			if a.Confidence != nil {
				answers[i] += fmt.Sprintf(" (%d)", *a.Confidence)
			}
		}
		c.Row(p.User, p.EventID, strings.Join(answers, " → "))
	}
	return s.String() + "\n\n" + c.String()
}

// UserDetail renders one user's outcome on every event, then a tally by
// label. events supplies ground truth and event order.
func UserDetail(m format.Mode, cfg config.Config, u results.UserResult, events []experiment.Event) string {
	t := format.NewTable(m)
	t.Title(fmt.Sprintf("%s, %s", u.Username, display.Group(cfg.GroupLabel(u.Group), u.Group)))
	t.Header("Event", "Truth", "Outcome")
	for _, e := range events {
		outcome := display.LabelWithCode(u.Outcomes.Label(e.ID))
		if outcome == "" {
			outcome = "-"
		}
		t.Row(e.ID, string(e.Truth), outcome)
	}

	c := format.NewTable(m)
	c.Title("Outcome tally")
	c.Header("Outcome", "Events")
	for _, l := range []confusion.Label{confusion.TruePositive, confusion.FalsePositive,
		confusion.TrueNegative, confusion.FalseNegative, confusion.Undecided} {
		c.Row(display.Label(l), u.Counts.Of(l))
	}
	c.Footer("Correct", format.Percent(u.Correctness))
	return t.String() + "\n\n" + c.String()
}
