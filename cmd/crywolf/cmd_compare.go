package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crywolf/internal/compare"
	"crywolf/internal/report"
	"crywolf/internal/results"
)

var compareFlags struct {
	inputFlags
	measures string
	cohort   string
	describe bool
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the configured groups with Mann-Whitney U tests",
	Long: `Compare the two configured groups on each measure within a cohort.

Cohorts select users by time on task before the groups are split:
  all          every analyzed user
  exclude-q1   users above the configured time quantile
  top:Q        users whose time on task is above quantile Q
  bottom:Q     users whose time on task is at or below quantile Q

Usage:
  crywolf compare --input dump.xlsx
  crywolf compare --input dump.xlsx --measure correctness,raw_tlx --cohort top:0.5`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	addInputFlags(compareCmd, &compareFlags.inputFlags)
	f := compareCmd.Flags()
	f.StringVar(&compareFlags.measures, "measure", "", "Comma-separated measures (default: outcome measures)")
	f.StringVar(&compareFlags.cohort, "cohort", "all", "Cohort: all, exclude-q1, top:Q, bottom:Q")
	f.BoolVar(&compareFlags.describe, "describe", false, "Also print per-group descriptive statistics")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	mode, err := parseMode(compareFlags.format)
	if err != nil {
		return err
	}
	cohort, err := compare.ParseCohort(compareFlags.cohort)
	if err != nil {
		return fmt.Errorf("--cohort: %w", err)
	}
	names := splitList(compareFlags.measures)
	if len(names) == 0 {
		names = results.OutcomeMeasures
	}
	for _, n := range names {
		if _, err := results.Lookup(n); err != nil {
			return fmt.Errorf("--measure: %w", err)
		}
	}

	p, err := runPipeline(compareFlags.inputFlags)
	if err != nil {
		return err
	}
	rs, err := compare.Run(p.cfg, p.rep.Users, names, cohort)
	if err != nil {
		return err
	}
	out := report.Comparisons(mode, rs)
	if compareFlags.describe {
		sides, err := compare.Describe(p.cfg, p.rep.Users, names, cohort)
		if err != nil {
			return err
		}
		out += "\n\n" + report.Descriptives(mode, "Descriptive statistics", sides)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
