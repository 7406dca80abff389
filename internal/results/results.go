// Package results builds the per-user results table: confusion counts,
// signal-detection measures, time on task and everything joined onto a
// participant by username.
package results

import (
	"fmt"
	"log/slog"
	"sort"

	"crywolf/internal/config"
	"crywolf/internal/confusion"
	"crywolf/internal/experience"
	"crywolf/internal/experiment"
	"crywolf/internal/logging"
	"crywolf/internal/measure"
	"crywolf/internal/stats"
)

// UserResult is one row of the results table.
type UserResult struct {
	Username string `json:"username"`
	Group    int    `json:"group"`

	// TimeOnTask is session length in fractional minutes.
	TimeOnTask measure.Value `json:"time_on_task"`
	// LowTime marks time on task at or below the population quantile.
	LowTime bool `json:"low_time"`

	DecisionCount  int           `json:"decision_count"`
	AssignedEvents int           `json:"assigned_events"`
	MeanConfidence measure.Value `json:"mean_confidence"`

	Counts      confusion.Counts `json:"counts"`
	Sensitivity measure.Value    `json:"sensitivity"`
	Specificity measure.Value    `json:"specificity"`
	Precision   measure.Value    `json:"precision"`
	Correctness measure.Value    `json:"correctness"`

	Experience     experience.Group `json:"experience,omitempty"`
	KnowledgeScore measure.Value    `json:"knowledge_score"`
	CheckScore     measure.Value    `json:"check_score"`

	Workload    [6]measure.Value `json:"workload"`
	RawTLX      measure.Value    `json:"raw_tlx"`
	MeanLatency measure.Value    `json:"mean_latency"`

	Outcomes confusion.Outcomes `json:"-"`
}

// Table is the results table of one run.
type Table struct {
	Users []UserResult `json:"users"`

	// EventIDs are the events any user has a label for, ascending.
	EventIDs []int `json:"event_ids"`

	// TimeCutoff is the time-on-task quantile behind LowTime, in minutes.
	TimeCutoff measure.Value `json:"time_cutoff"`

	// Incomplete lists users dropped for a missing session timestamp.
	Incomplete []string `json:"incomplete,omitempty"`
}

// Inputs are the normalized, deduplicated records Aggregate joins.
type Inputs struct {
	Users []experiment.User

	// Decisions must be latest-wins deduplicated.
	Decisions []experiment.Decision
	Truth     map[int]experiment.Choice

	Experience  map[string]experience.Assignment
	Surveys     []experiment.Survey
	CheckScores map[string]int
	Latency     map[string]measure.Value
}

// Aggregate computes one UserResult per eligible user, in input order.
// Missing joined rows leave NA fields; they never drop a user.
func Aggregate(cfg config.Config, in Inputs, log *slog.Logger) (*Table, error) {
	log = logging.OrDefault(log, "results")
	tbl := &Table{}

	byUser := map[string][]experiment.Decision{}
	for _, d := range in.Decisions {
		byUser[d.User] = append(byUser[d.User], d)
	}
	surveys := map[string]experiment.Survey{}
	for _, s := range in.Surveys {
		surveys[s.User] = s
	}

	var minutes []float64
	seen := map[int]bool{}
	for _, u := range in.Users {
		tot, ok := u.TimeOnTask()
		if !ok && cfg.RequireCompleteSession {
			tbl.Incomplete = append(tbl.Incomplete, u.Username)
			log.Warn("user missing session timestamps, excluded", "user", u.Username)
			continue
		}

		decisions := byUser[u.Username]
		outcomes, err := confusion.ClassifyUser(decisions, in.Truth)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", u.Username, err)
		}
		for _, id := range outcomes.EventIDs() {
			seen[id] = true
		}

		r := UserResult{
			Username:       u.Username,
			Group:          u.Group,
			DecisionCount:  len(decisions),
			AssignedEvents: len(u.Events),
			MeanConfidence: meanConfidence(decisions),
			Outcomes:       outcomes,
		}
		if ok {
			r.TimeOnTask = measure.Of(tot.Minutes())
			minutes = append(minutes, tot.Minutes())
		}
		r.Counts = outcomes.Counts()
		r.Sensitivity, r.Specificity, r.Precision, r.Correctness = Measures(r.Counts)

		if a, ok := in.Experience[u.Username]; ok {
			r.Experience = a.Group
			r.KnowledgeScore = measure.Of(float64(a.Score))
		}
		if c, ok := in.CheckScores[u.Username]; ok {
			r.CheckScore = measure.Of(float64(c))
		}
		if s, ok := surveys[u.Username]; ok {
			for i, v := range s.Workload() {
				r.Workload[i] = measure.Of(float64(v))
			}
			r.RawTLX = measure.Of(s.RawTLX())
		}
		r.MeanLatency = in.Latency[u.Username]

		tbl.Users = append(tbl.Users, r)
	}

	tbl.TimeCutoff = stats.Quantile(cfg.TimeQuantile, minutes)
	if cut, ok := tbl.TimeCutoff.Get(); ok {
		for i := range tbl.Users {
			if t, ok := tbl.Users[i].TimeOnTask.Get(); ok && t <= cut {
				tbl.Users[i].LowTime = true
			}
		}
	}

	for id := range seen {
		tbl.EventIDs = append(tbl.EventIDs, id)
	}
	sort.Ints(tbl.EventIDs)

	log.Info("aggregated user results",
		"users", len(tbl.Users), "incomplete", len(tbl.Incomplete),
		"time_quantile", cfg.TimeQuantile, "time_cutoff_minutes", tbl.TimeCutoff.Format(2))
	return tbl, nil
}

// Measures derives sensitivity, specificity, precision and correctness.
// Each is NA when its denominator is zero.
func Measures(c confusion.Counts) (sensitivity, specificity, precision, correctness measure.Value) {
	return measure.Ratio(c.TP, c.TP+c.FN),
		measure.Ratio(c.TN, c.TN+c.FP),
		measure.Ratio(c.TP, c.TP+c.FP),
		measure.Ratio(c.TP+c.TN, c.Decided())
}

// meanConfidence averages numeric confidences, skipping "I don't know".
func meanConfidence(decisions []experiment.Decision) measure.Value {
	var xs []float64
	for _, d := range decisions {
		if d.Choice == experiment.DontKnow || d.Confidence == nil {
			continue
		}
		xs = append(xs, float64(*d.Confidence))
	}
	return stats.Mean(xs)
}

// ByGroup splits users by experimental group.
func (t *Table) ByGroup() map[int][]UserResult {
	out := map[int][]UserResult{}
	for _, u := range t.Users {
		out[u.Group] = append(out[u.Group], u)
	}
	return out
}

// Find returns the row for username.
func (t *Table) Find(username string) (UserResult, bool) {
	for _, u := range t.Users {
		if u.Username == username {
			return u, true
		}
	}
	return UserResult{}, false
}
