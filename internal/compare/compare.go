// Package compare contrasts two experimental groups on a per-user measure
// with the Mann–Whitney U test and descriptive statistics.
package compare

import (
	"errors"
	"fmt"

	"crywolf/internal/config"
	"crywolf/internal/measure"
	"crywolf/internal/results"
	"crywolf/internal/stats"
)

// Side is one group of a comparison.
type Side struct {
	Group int               `json:"group"`
	Label string            `json:"label"`
	Stats stats.Descriptive `json:"stats"`
}

// Result is one measure compared between two groups within a cohort.
// Possible is false when a sample is empty; Test is then zero.
type Result struct {
	Measure  string `json:"measure"`
	Cohort   string `json:"cohort"`
	A        Side   `json:"a"`
	B        Side   `json:"b"`
	Possible bool   `json:"possible"`
	Test     Test   `json:"test"`
}

// Compare contrasts two samples. NA observations are excluded first.
func Compare(name string, a, b []measure.Value) (Result, error) {
	xa, xb := measure.Floats(a), measure.Floats(b)
	r := Result{
		Measure: name,
		A:       Side{Stats: stats.Describe(xa)},
		B:       Side{Stats: stats.Describe(xb)},
	}
	t, err := MannWhitney(xa, xb)
	switch {
	case errors.Is(err, ErrEmptySample):
		return r, nil
	case err != nil:
		return r, fmt.Errorf("compare %s: %w", name, err)
	}
	r.Possible = true
	r.Test = t
	return r, nil
}

// Run compares the configured pair of groups on each named measure within
// the cohort. The cohort is selected over all users before splitting.
func Run(cfg config.Config, tbl *results.Table, names []string, cohort Cohort) ([]Result, error) {
	if len(names) == 0 {
		names = results.OutcomeMeasures
	}
	ms := make([]results.Measure, 0, len(names))
	for _, n := range names {
		m, err := results.Lookup(n)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}

	selected := cohort.Filter(tbl.Users)
	ga, gb := cfg.CompareGroups[0], cfg.CompareGroups[1]
	var ua, ub []results.UserResult
	for _, u := range selected {
		switch u.Group {
		case ga:
			ua = append(ua, u)
		case gb:
			ub = append(ub, u)
		}
	}

	out := make([]Result, 0, len(ms))
	for _, m := range ms {
		r, err := Compare(m.Name, results.Column(ua, m), results.Column(ub, m))
		if err != nil {
			return nil, err
		}
		r.Cohort = cohort.String()
		r.A.Group, r.A.Label = ga, cfg.GroupLabel(ga)
		r.B.Group, r.B.Label = gb, cfg.GroupLabel(gb)
		out = append(out, r)
	}
	return out, nil
}

// Describe returns descriptive statistics of each named measure per group,
// for every configured group, within the cohort.
func Describe(cfg config.Config, tbl *results.Table, names []string, cohort Cohort) (map[string][]Side, error) {
	selected := cohort.Filter(tbl.Users)
	byGroup := map[int][]results.UserResult{}
	for _, u := range selected {
		byGroup[u.Group] = append(byGroup[u.Group], u)
	}
	out := make(map[string][]Side, len(names))
	for _, n := range names {
		m, err := results.Lookup(n)
		if err != nil {
			return nil, err
		}
		for _, g := range cfg.GroupIDs() {
			out[m.Name] = append(out[m.Name], Side{
				Group: g,
				Label: cfg.GroupLabel(g),
				Stats: stats.DescribeValues(results.Column(byGroup[g], m)),
			})
		}
	}
	return out, nil
}
