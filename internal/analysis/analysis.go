// Package analysis runs the full pipeline over one dataset:
// normalize, deduplicate, classify, aggregate users, analyze items and
// timing, and compare the configured groups.
package analysis

import (
	"fmt"
	"log/slog"

	"crywolf/internal/compare"
	"crywolf/internal/config"
	"crywolf/internal/dedup"
	"crywolf/internal/experience"
	"crywolf/internal/experiment"
	"crywolf/internal/items"
	"crywolf/internal/logging"
	"crywolf/internal/normalize"
	"crywolf/internal/results"
	"crywolf/internal/timing"
)

// DefaultCohorts are the cohorts every run compares groups in.
var DefaultCohorts = []compare.Cohort{{Kind: compare.All}, {Kind: compare.ExcludeQ1}}

// Report is everything one run produces.
type Report struct {
	Experiment        string                   `json:"experiment"`
	Normalization     normalize.Report         `json:"normalization"`
	DroppedDuplicates int                      `json:"dropped_duplicates"`
	Users             *results.Table           `json:"users"`
	Items             items.Analysis           `json:"items"`
	Timing            timing.Report            `json:"timing"`
	Resubmissions     dedup.ResubmissionReport `json:"resubmissions"`
	Comparisons       []compare.Result         `json:"comparisons"`

	// Events is the normalized event table, ground truth recoded.
	Events []experiment.Event `json:"-"`
}

// Run executes the pipeline. ds is not modified.
func Run(cfg config.Config, ds experiment.Dataset, log *slog.Logger) (*Report, error) {
	log = logging.OrDefault(log, "analysis")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	norm, err := normalize.Normalize(cfg, ds, log.With("stage", "normalize"))
	if err != nil {
		return nil, err
	}
	clean := norm.Dataset

	latest, dropped := dedup.Latest(clean.Decisions)
	log.Info("deduplicated decisions", "kept", len(latest), "dropped", dropped)

	truth := make(map[int]experiment.Choice, len(clean.Events))
	for _, e := range clean.Events {
		truth[e.ID] = e.Truth
	}

	tim := timing.Analyze(clean.Decisions, clean.Clicks)

	tbl, err := results.Aggregate(cfg, results.Inputs{
		Users:       clean.Users,
		Decisions:   latest,
		Truth:       truth,
		Experience:  experience.ClassifyAll(cfg, clean.Prequestionnaires),
		Surveys:     clean.Surveys,
		CheckScores: norm.CheckScores,
		Latency:     tim.MeanLatency(),
	}, log.With("stage", "results"))
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Experiment:        cfg.Experiment,
		Normalization:     norm.Report,
		DroppedDuplicates: dropped,
		Users:             tbl,
		Items:             items.Analyze(tbl.Users, truth),
		Timing:            tim,
		Resubmissions:     dedup.Resubmissions(clean.Decisions),
		Events:            clean.Events,
	}
	for _, g := range rep.Items.Groups {
		log.Info("item analysis", "group", cfg.GroupLabel(g.Group), "tail_size", g.TailSize,
			"high", g.High, "too_easy", g.TooEasy, "too_hard", g.TooHard)
	}

	for _, c := range DefaultCohorts {
		rs, err := compare.Run(cfg, tbl, results.OutcomeMeasures, c)
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", c, err)
		}
		rep.Comparisons = append(rep.Comparisons, rs...)
	}
	return rep, nil
}
