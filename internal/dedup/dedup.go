// Package dedup collapses repeated decisions and clicks to one record per
// (user, event) pair.
//
// Every selector orders by timestamp and breaks exact ties by load order:
// the record loaded later wins. Output is sorted by (time, load order), so
// applying a selector to its own output returns the same slice.
package dedup

import (
	"sort"
	"time"

	"crywolf/internal/experiment"
)

// Key identifies a (user, event) pair.
type Key struct {
	User    string
	EventID int
}

// Latest keeps the most recent decision per (user, event). dropped is the
// number of records discarded.
func Latest(decisions []experiment.Decision) (kept []experiment.Decision, dropped int) {
	return selectPer(decisions, decisionKey, decisionStamp, true)
}

// First keeps the earliest decision per (user, event).
func First(decisions []experiment.Decision) (kept []experiment.Decision, dropped int) {
	return selectPer(decisions, decisionKey, decisionStamp, false)
}

// FirstClicks keeps the earliest click per (user, event).
func FirstClicks(clicks []experiment.Click) (kept []experiment.Click, dropped int) {
	return selectPer(clicks, clickKey, clickStamp, false)
}

func decisionKey(d experiment.Decision) Key { return Key{d.User, d.EventID} }
func clickKey(c experiment.Click) Key       { return Key{c.User, c.EventID} }

func decisionStamp(d experiment.Decision) (time.Time, int) { return d.Time, d.Seq }
func clickStamp(c experiment.Click) (time.Time, int)       { return c.Time, c.Seq }

func selectPer[T any](rows []T, key func(T) Key, stamp func(T) (time.Time, int), latest bool) ([]T, int) {
	best := make(map[Key]T, len(rows))
	for _, r := range rows {
		k := key(r)
		cur, ok := best[k]
		if !ok || replaces(r, cur, stamp, latest) {
			best[k] = r
		}
	}
	out := make([]T, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sortByStamp(out, stamp)
	return out, len(rows) - len(out)
}

func replaces[T any](cand, cur T, stamp func(T) (time.Time, int), latest bool) bool {
	ct, cs := stamp(cand)
	rt, rs := stamp(cur)
	if ct.Equal(rt) {
		return cs > rs
	}
	if latest {
		return ct.After(rt)
	}
	return ct.Before(rt)
}

func sortByStamp[T any](rows []T, stamp func(T) (time.Time, int)) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, si := stamp(rows[i])
		tj, sj := stamp(rows[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return si < sj
	})
}

// ByPair groups decisions by (user, event) in (time, load order) order.
func ByPair(decisions []experiment.Decision) map[Key][]experiment.Decision {
	sorted := make([]experiment.Decision, len(decisions))
	copy(sorted, decisions)
	sortByStamp(sorted, decisionStamp)
	out := make(map[Key][]experiment.Decision)
	for _, d := range sorted {
		k := decisionKey(d)
		out[k] = append(out[k], d)
	}
	return out
}
