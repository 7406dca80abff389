package compare

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"crywolf/internal/measure"
	"crywolf/internal/results"
	"crywolf/internal/stats"
)

// ErrBadCohort is returned by ParseCohort for an unrecognized cohort.
var ErrBadCohort = errors.New("bad cohort")

// CohortKind selects users by time on task.
type CohortKind string

const (
	All       CohortKind = "all"
	ExcludeQ1 CohortKind = "exclude-q1"
	Top       CohortKind = "top"
	Bottom    CohortKind = "bottom"
)

// Cohort restricts a comparison to a subset of users. Q is the time-on-task
// quantile for Top and Bottom.
type Cohort struct {
	Kind CohortKind `json:"kind"`
	Q    float64    `json:"q,omitempty"`
}

func (c Cohort) String() string {
	switch c.Kind {
	case Top, Bottom:
		return fmt.Sprintf("%s:%s", c.Kind, strconv.FormatFloat(c.Q, 'g', -1, 64))
	case "":
		return string(All)
	}
	return string(c.Kind)
}

// ParseCohort accepts "all", "exclude-q1", "top:Q" and "bottom:Q" with Q in (0,1).
func ParseCohort(s string) (Cohort, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", string(All):
		return Cohort{Kind: All}, nil
	case string(ExcludeQ1):
		return Cohort{Kind: ExcludeQ1}, nil
	}
	kind, q, ok := strings.Cut(s, ":")
	if !ok || (kind != string(Top) && kind != string(Bottom)) {
		return Cohort{}, fmt.Errorf("%w: %q", ErrBadCohort, s)
	}
	f, err := strconv.ParseFloat(q, 64)
	if err != nil || f <= 0 || f >= 1 {
		return Cohort{}, fmt.Errorf("%w: quantile %q outside (0,1)", ErrBadCohort, q)
	}
	return Cohort{Kind: CohortKind(kind), Q: f}, nil
}

// Filter returns the users in the cohort. ExcludeQ1 drops users flagged
// LowTime. Top keeps time on task above the Q quantile, Bottom at or below
// it; users with NA time on task are in neither.
func (c Cohort) Filter(users []results.UserResult) []results.UserResult {
	switch c.Kind {
	case "", All:
		return users
	case ExcludeQ1:
		var out []results.UserResult
		for _, u := range users {
			if !u.LowTime {
				out = append(out, u)
			}
		}
		return out
	}

	times := measure.Floats(results.Column(users, timeOnTask))
	cut, ok := stats.Quantile(c.Q, times).Get()
	if !ok {
		return nil
	}
	var out []results.UserResult
	for _, u := range users {
		t, ok := u.TimeOnTask.Get()
		if !ok {
			continue
		}
		if (c.Kind == Top && t > cut) || (c.Kind == Bottom && t <= cut) {
			out = append(out, u)
		}
	}
	return out
}

var timeOnTask = results.Measure{
	Name: "time_on_task",
	Of:   func(u results.UserResult) measure.Value { return u.TimeOnTask },
}
