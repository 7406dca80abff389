// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, markdown reports, logs, and docs.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

import (
	"strconv"
	"strings"

	"crywolf/internal/confusion"
	"crywolf/internal/items"
)

// --- Confusion labels ---

var labels = map[confusion.Label]string{
	confusion.TruePositive:  "True positive",
	confusion.FalsePositive: "False positive",
	confusion.TrueNegative:  "True negative",
	confusion.FalseNegative: "False negative",
	confusion.Undecided:     "Undecided",
}

// Label returns the human-readable name of a confusion label.
// Unlabeled renders as "".
func Label(l confusion.Label) string {
	return labels[l]
}

// LabelWithCode returns "True positive (TP)" format.
func LabelWithCode(l confusion.Label) string {
	if name, ok := labels[l]; ok {
		return name + " (" + l.String() + ")"
	}
	return ""
}

// --- Measures ---

var measures = map[string]string{
	"time_on_task":    "Time on task (min)",
	"sensitivity":     "Sensitivity",
	"specificity":     "Specificity",
	"precision":       "Precision",
	"correctness":     "Correctness",
	"confidence":      "Confidence",
	"decision_count":  "Decisions",
	"tp":              "TP",
	"fp":              "FP",
	"tn":              "TN",
	"fn":              "FN",
	"undecided":       "Undecided",
	"knowledge_score": "Knowledge score",
	"check_score":     "Check score",
	"raw_tlx":         "Raw TLX",
	"mean_latency":    "Click-to-decision (s)",
}

// Measure returns the column title for a measure name. Unregistered names
// are returned with underscores replaced and the first letter capitalized.
func Measure(name string) string {
	if title, ok := measures[name]; ok {
		return title
	}
	s := strings.ReplaceAll(name, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// --- Cohorts ---

var cohorts = map[string]string{
	"all":        "All users",
	"exclude-q1": "Without lowest time quartile",
}

// Cohort returns a readable cohort name. Quantile cohorts ("top:0.5")
// render as "Time above q0.5"; unknown codes are returned as-is.
func Cohort(code string) string {
	if name, ok := cohorts[code]; ok {
		return name
	}
	if kind, q, ok := strings.Cut(code, ":"); ok {
		switch kind {
		case "top":
			return "Time above q" + q
		case "bottom":
			return "Time at or below q" + q
		}
	}
	return code
}

// --- Item buckets ---

// Bucket names the bucket an item falls in within a group, or "" for none.
func Bucket(gi items.GroupItem) string {
	switch {
	case gi.High:
		return "High discrimination"
	case gi.TooEasy:
		return "Too easy"
	case gi.TooHard:
		return "Too hard"
	}
	return ""
}

// --- Groups ---

// Group returns "label (N)" for an experimental group, or "group N" when
// the label is the fallback.
func Group(label string, id int) string {
	if strings.HasPrefix(label, "group ") {
		return label
	}
	return label + " (" + strconv.Itoa(id) + ")"
}
