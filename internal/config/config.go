// Package config holds the experiment configuration passed into every
// analysis run: which events are attention checks, which users are excluded,
// how groups are labelled and compared, and the questionnaire answer key.
package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// AnswerKey is the correct answer to each of the seven prequestionnaire
// knowledge questions. Matching is exact.
type AnswerKey struct {
	SubnetMask     string `json:"subnet_mask" yaml:"subnet_mask"`
	NetworkAddress string `json:"network_address" yaml:"network_address"`
	TCPFaster      string `json:"tcp_faster" yaml:"tcp_faster"`
	HTTPPort       string `json:"http_port" yaml:"http_port"`
	Firewall       string `json:"firewall" yaml:"firewall"`
	Socket         string `json:"socket" yaml:"socket"`
	WhichModel     string `json:"which_model" yaml:"which_model"`
}

// Config is the explicit configuration of one analysis run.
type Config struct {
	// Experiment names the dataset, e.g. "cry-wolf". Used in output file names.
	Experiment string `json:"experiment" yaml:"experiment"`

	// CheckEvents are attention-check event IDs, excluded from analysis.
	CheckEvents []int `json:"check_events" yaml:"check_events"`

	// ExcludedUsers are usernames removed by policy.
	ExcludedUsers []string `json:"excluded_users" yaml:"excluded_users"`

	// Groups maps experimental group IDs to display labels.
	Groups map[int]string `json:"groups" yaml:"groups"`

	// CompareGroups are the two group IDs the comparison engine contrasts.
	CompareGroups []int `json:"compare_groups" yaml:"compare_groups"`

	// TimeQuantile is the time-on-task quantile used for the cohort flag.
	TimeQuantile float64 `json:"time_quantile" yaml:"time_quantile"`

	// RequireCompleteSession drops users missing a session begin or end time.
	RequireCompleteSession bool `json:"require_complete_session" yaml:"require_complete_session"`

	// GroundTruthOverrides replaces the raw should_escalate code of an event.
	GroundTruthOverrides map[int]int `json:"ground_truth_overrides,omitempty" yaml:"ground_truth_overrides,omitempty"`

	// AnswerKey scores the prequestionnaire.
	AnswerKey AnswerKey `json:"answer_key" yaml:"answer_key"`

	// KnowledgeThreshold is the minimum score for the Novice+ and Practical groups.
	KnowledgeThreshold int `json:"knowledge_threshold" yaml:"knowledge_threshold"`

	// ExperiencedBuckets are the self-reported durations that count as at least one year.
	ExperiencedBuckets []string `json:"experienced_buckets" yaml:"experienced_buckets"`
}

// Default returns the configuration of the published Cry Wolf study.
func Default() Config {
	return Config{
		Experiment:             "cry-wolf",
		CheckEvents:            []int{74, 75},
		ExcludedUsers:          []string{"awiv3"},
		Groups:                 map[int]string{1: "50% FAR", 3: "86% FAR"},
		CompareGroups:          []int{1, 3},
		TimeQuantile:           0.25,
		RequireCompleteSession: true,
		AnswerKey: AnswerKey{
			SubnetMask:     "255.255.255.0",
			NetworkAddress: "173.67.14.0",
			TCPFaster:      "False",
			HTTPPort:       "80",
			Firewall:       "Firewall",
			Socket:         "Socket",
			WhichModel:     "TCP/IP",
		},
		KnowledgeThreshold: 5,
		ExperiencedBuckets: []string{"1-5 years", "5-10 years", "10+ years"},
	}
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the invariants the pipeline relies on.
func (c Config) Validate() error {
	if c.Experiment == "" {
		return fmt.Errorf("%w: experiment name is empty", ErrInvalid)
	}
	if c.TimeQuantile <= 0 || c.TimeQuantile >= 1 {
		return fmt.Errorf("%w: time_quantile %v outside (0,1)", ErrInvalid, c.TimeQuantile)
	}
	if len(c.Groups) == 0 {
		return fmt.Errorf("%w: no groups defined", ErrInvalid)
	}
	if len(c.CompareGroups) != 2 || c.CompareGroups[0] == c.CompareGroups[1] {
		return fmt.Errorf("%w: compare_groups must name two distinct groups, got %v", ErrInvalid, c.CompareGroups)
	}
	for _, g := range c.CompareGroups {
		if _, ok := c.Groups[g]; !ok {
			return fmt.Errorf("%w: compare group %d has no label", ErrInvalid, g)
		}
	}
	for id, code := range c.GroundTruthOverrides {
		if code != 0 && code != 1 {
			return fmt.Errorf("%w: ground truth override for event %d must be 0 or 1, got %d", ErrInvalid, id, code)
		}
	}
	if c.KnowledgeThreshold < 0 || c.KnowledgeThreshold > 7 {
		return fmt.Errorf("%w: knowledge_threshold %d outside 0..7", ErrInvalid, c.KnowledgeThreshold)
	}
	return nil
}

// IsCheckEvent reports whether id is an attention-check event.
func (c Config) IsCheckEvent(id int) bool {
	return slices.Contains(c.CheckEvents, id)
}

// IsExcludedUser reports whether username is excluded by policy.
func (c Config) IsExcludedUser(username string) bool {
	return slices.Contains(c.ExcludedUsers, username)
}

// GroupLabel returns the display label for a group, or "group N".
func (c Config) GroupLabel(group int) string {
	if l, ok := c.Groups[group]; ok {
		return l
	}
	return fmt.Sprintf("group %d", group)
}

// GroupIDs returns the configured group IDs in ascending order.
func (c Config) GroupIDs() []int {
	ids := make([]int, 0, len(c.Groups))
	for id := range c.Groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IsExperienced reports whether a self-reported duration counts as at least one year.
func (c Config) IsExperienced(duration string) bool {
	return slices.Contains(c.ExperiencedBuckets, duration)
}
