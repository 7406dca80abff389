// Package timing measures how long participants took from first opening an
// event to first deciding it, per user and per position in decision order.
package timing

import (
	"sort"
	"time"

	"crywolf/internal/dedup"
	"crywolf/internal/experiment"
	"crywolf/internal/measure"
	"crywolf/internal/stats"
)

// Step is one event in a user's decision sequence. Latency is in seconds and
// NA when the user never clicked the event.
type Step struct {
	EventID   int           `json:"event_id"`
	DecidedAt time.Time     `json:"decided_at"`
	ClickedAt *time.Time    `json:"clicked_at,omitempty"`
	Latency   measure.Value `json:"latency"`
}

// UserTiming is one user's decision sequence.
type UserTiming struct {
	User        string        `json:"user"`
	Steps       []Step        `json:"steps"`
	MeanLatency measure.Value `json:"mean_latency"`
}

// Position is the across-user latency at one point in decision order.
// N counts users that reached the position with a latency.
type Position struct {
	Index int           `json:"index"`
	Mean  measure.Value `json:"mean"`
	N     int           `json:"n"`
}

// Report is the timing analysis of a dataset.
type Report struct {
	Users     []UserTiming `json:"users"`
	Positions []Position   `json:"positions"`
}

// Analyze joins each user's earliest decision per event with the earliest
// click on that event. Sequences are ordered by first-decision time.
func Analyze(decisions []experiment.Decision, clicks []experiment.Click) Report {
	first, _ := dedup.First(decisions)
	firstClicks, _ := dedup.FirstClicks(clicks)

	clickAt := make(map[dedup.Key]time.Time, len(firstClicks))
	for _, c := range firstClicks {
		clickAt[dedup.Key{User: c.User, EventID: c.EventID}] = c.Time
	}

	// dedup output is already in (time, load order) order
	byUser := map[string][]Step{}
	for _, d := range first {
		s := Step{EventID: d.EventID, DecidedAt: d.Time}
		if ct, ok := clickAt[dedup.Key{User: d.User, EventID: d.EventID}]; ok {
			s.ClickedAt = &ct
			s.Latency = measure.Of(d.Time.Sub(ct).Seconds())
		}
		byUser[d.User] = append(byUser[d.User], s)
	}

	names := make([]string, 0, len(byUser))
	for u := range byUser {
		names = append(names, u)
	}
	sort.Strings(names)

	var rep Report
	for _, u := range names {
		steps := byUser[u]
		lat := make([]measure.Value, len(steps))
		for i, s := range steps {
			lat[i] = s.Latency
		}
		rep.Users = append(rep.Users, UserTiming{
			User:        u,
			Steps:       steps,
			MeanLatency: stats.Mean(measure.Floats(lat)),
		})
	}
	rep.Positions = positions(rep.Matrix())
	return rep
}

// Matrix returns one row per user (in Users order), padded with NA to the
// longest sequence.
func (r Report) Matrix() [][]measure.Value {
	width := 0
	for _, u := range r.Users {
		width = max(width, len(u.Steps))
	}
	m := make([][]measure.Value, len(r.Users))
	for i, u := range r.Users {
		row := make([]measure.Value, width)
		for j, s := range u.Steps {
			row[j] = s.Latency
		}
		m[i] = row
	}
	return m
}

// MeanLatency returns per-username mean latency.
func (r Report) MeanLatency() map[string]measure.Value {
	out := make(map[string]measure.Value, len(r.Users))
	for _, u := range r.Users {
		out[u.User] = u.MeanLatency
	}
	return out
}

func positions(m [][]measure.Value) []Position {
	if len(m) == 0 {
		return nil
	}
	out := make([]Position, len(m[0]))
	for j := range out {
		col := make([]measure.Value, 0, len(m))
		for _, row := range m {
			col = append(col, row[j])
		}
		xs := measure.Floats(col)
		out[j] = Position{Index: j + 1, Mean: stats.Mean(xs), N: len(xs)}
	}
	return out
}
