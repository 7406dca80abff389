// Package normalize prepares a raw exported dataset for analysis: it recodes
// event ground truth, applies configured ground-truth overrides, removes
// excluded users and attention-check events, and drops records that refer
// to unknown events or users.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"crywolf/internal/config"
	"crywolf/internal/confusion"
	"crywolf/internal/dedup"
	"crywolf/internal/experiment"
	"crywolf/internal/logging"
)

// ErrUnknownGroundTruth is returned when an event's should_escalate code is
// neither 0 nor 1.
var ErrUnknownGroundTruth = errors.New("unknown ground truth")

// Report counts what normalization kept and removed.
type Report struct {
	TrueAlarms  int `json:"true_alarms"`
	FalseAlarms int `json:"false_alarms"`
	Overridden  int `json:"overridden"`

	CheckEvents    int `json:"check_events"`
	CheckDecisions int `json:"check_decisions"`
	CheckClicks    int `json:"check_clicks"`

	ExcludedUsers     int `json:"excluded_users"`
	ExcludedDecisions int `json:"excluded_decisions"`
	ExcludedClicks    int `json:"excluded_clicks"`

	OrphanDecisions int `json:"orphan_decisions"`
	OrphanClicks    int `json:"orphan_clicks"`
}

// Result is the normalized dataset plus what was learned on the way.
type Result struct {
	Dataset experiment.Dataset

	// CheckScores is, per username, how many check events the user's latest
	// decision answered correctly. Users without check decisions are absent.
	CheckScores map[string]int

	Report Report
}

// Normalize returns a new dataset; ds is not modified.
func Normalize(cfg config.Config, ds experiment.Dataset, log *slog.Logger) (*Result, error) {
	log = logging.OrDefault(log, "normalize")
	res := &Result{CheckScores: map[string]int{}}
	rep := &res.Report

	events := make([]experiment.Event, 0, len(ds.Events))
	truth := make(map[int]experiment.Choice, len(ds.Events))
	for _, e := range ds.Events {
		if code, ok := cfg.GroundTruthOverrides[e.ID]; ok {
			e.ShouldEscalate = strconv.Itoa(code)
			rep.Overridden++
		}
		t, err := RecodeTruth(e.ShouldEscalate)
		if err != nil {
			return nil, fmt.Errorf("normalize event %d: %w", e.ID, err)
		}
		e.Truth = t
		truth[e.ID] = t
		events = append(events, e)
	}

	users := make([]experiment.User, 0, len(ds.Users))
	known := make(map[string]bool, len(ds.Users))
	for _, u := range ds.Users {
		if cfg.IsExcludedUser(u.Username) {
			rep.ExcludedUsers++
			continue
		}
		known[u.Username] = true
		users = append(users, u)
	}

	for _, d := range ds.Decisions {
		if !d.Choice.Valid() {
			return nil, fmt.Errorf("normalize decision %d of %s on event %d: %w: %q",
				d.ID, d.User, d.EventID, confusion.ErrUnknownChoice, string(d.Choice))
		}
	}

	var decisions, checkDecisions []experiment.Decision
	for _, d := range ds.Decisions {
		switch {
		case cfg.IsExcludedUser(d.User):
			rep.ExcludedDecisions++
		case !known[d.User]:
			rep.OrphanDecisions++
			log.Warn("decision references unknown user", "decision", d.ID, "user", d.User)
		case cfg.IsCheckEvent(d.EventID):
			rep.CheckDecisions++
			// a check event missing from the dump has no truth to score against
			if truth[d.EventID] != "" {
				checkDecisions = append(checkDecisions, d)
			}
		case truth[d.EventID] == "":
			rep.OrphanDecisions++
			log.Warn("decision references unknown event", "decision", d.ID, "event", d.EventID)
		default:
			decisions = append(decisions, d)
		}
	}

	var clicks []experiment.Click
	for _, c := range ds.Clicks {
		switch {
		case cfg.IsExcludedUser(c.User):
			rep.ExcludedClicks++
		case !known[c.User]:
			rep.OrphanClicks++
			log.Warn("click references unknown user", "click", c.ID, "user", c.User)
		case cfg.IsCheckEvent(c.EventID):
			rep.CheckClicks++
		case truth[c.EventID] == "":
			rep.OrphanClicks++
			log.Warn("click references unknown event", "click", c.ID, "event", c.EventID)
		default:
			clicks = append(clicks, c)
		}
	}

	latest, _ := dedup.Latest(checkDecisions)
	for _, d := range latest {
		if _, ok := res.CheckScores[d.User]; !ok {
			res.CheckScores[d.User] = 0
		}
		if d.Choice == truth[d.EventID] {
			res.CheckScores[d.User]++
		}
	}

	kept := events[:0]
	for _, e := range events {
		if cfg.IsCheckEvent(e.ID) {
			rep.CheckEvents++
			continue
		}
		if e.Truth == experiment.Escalate {
			rep.TrueAlarms++
		} else {
			rep.FalseAlarms++
		}
		kept = append(kept, e)
	}

	res.Dataset = experiment.Dataset{
		Events:            kept,
		Decisions:         decisions,
		Clicks:            clicks,
		Users:             users,
		Prequestionnaires: filterByUser(ds.Prequestionnaires, cfg, func(p experiment.Prequestionnaire) string { return p.User }),
		Surveys:           filterByUser(ds.Surveys, cfg, func(s experiment.Survey) string { return s.User }),
	}

	log.Info("normalized dataset",
		"events", len(kept), "true_alarms", rep.TrueAlarms, "false_alarms", rep.FalseAlarms,
		"users", len(users), "decisions", len(decisions), "clicks", len(clicks),
		"orphan_decisions", rep.OrphanDecisions, "overridden", rep.Overridden)
	return res, nil
}

// RecodeTruth maps a raw should_escalate code to Escalate or DontEscalate.
func RecodeTruth(raw string) (experiment.Choice, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownGroundTruth, raw)
	}
	switch f {
	case 1:
		return experiment.Escalate, nil
	case 0:
		return experiment.DontEscalate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGroundTruth, raw)
}

func filterByUser[T any](rows []T, cfg config.Config, user func(T) string) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if !cfg.IsExcludedUser(user(r)) {
			out = append(out, r)
		}
	}
	return out
}
