package report

import (
	"strings"
	"testing"

	"crywolf/internal/analysis"
	"crywolf/internal/compare"
	"crywolf/internal/config"
	"crywolf/internal/dedup"
	"crywolf/internal/experiment"
	"crywolf/internal/format"
	"crywolf/internal/logging"
	"crywolf/internal/sample"
)

func sampleReport(t *testing.T) (config.Config, *analysis.Report) {
	t.Helper()
	cfg := config.Default()
	rep, err := analysis.Run(cfg, sample.Dataset(), logging.Discard())
	if err != nil {
		t.Fatalf("analysis.Run: %v", err)
	}
	return cfg, rep
}

func TestFull_ASCII(t *testing.T) {
	cfg, rep := sampleReport(t)
	out := Full(format.ASCII, cfg, rep)
	for _, want := range []string{
		"=== Cry Wolf Analysis: cry-wolf ===",
		"4 true alarms, 8 false alarms",
		sample.Username(1),
		"50% FAR",
		"86% FAR",
		"All users",
		"Without lowest time quartile",
		"Sensitivity",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "awiv3") {
		t.Errorf("excluded user rendered:\n%s", out)
	}
}

func TestFull_CSV(t *testing.T) {
	cfg, rep := sampleReport(t)
	out := Full(format.CSV, cfg, rep)
	if strings.Contains(out, "===") {
		t.Errorf("CSV output should not carry the text summary:\n%s", out)
	}
	first := strings.SplitN(out, "\n", 2)[0]
	if !strings.HasPrefix(first, "User,Group,Time") {
		t.Errorf("CSV header = %q", first)
	}
}

func TestComparisons_NotPossible(t *testing.T) {
	out := Comparisons(format.Markdown, []compare.Result{{
		Measure: "sensitivity", Cohort: "all",
		A: compare.Side{Label: "50% FAR"}, B: compare.Side{Label: "86% FAR"},
	}})
	if !strings.Contains(out, "not possible") {
		t.Errorf("expected 'not possible':\n%s", out)
	}
}

func TestDescriptives(t *testing.T) {
	cfg, rep := sampleReport(t)
	sides, err := compare.Describe(cfg, rep.Users, []string{"correctness", "raw_tlx"}, compare.Cohort{Kind: compare.ExcludeQ1})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	out := Descriptives(format.Markdown, "Outcome measures", sides)
	for _, want := range []string{"### Outcome measures", "Correctness", "Raw TLX", "50% FAR"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTimingAndResubmissions(t *testing.T) {
	_, rep := sampleReport(t)
	out := Timing(format.ASCII, rep.Timing)
	if !strings.Contains(out, "Latency by position") || !strings.Contains(out, sample.Username(3)) {
		t.Errorf("timing output:\n%s", out)
	}

	three := 3
	r := dedup.ResubmissionReport{
		Decisions: 3, Pairs: 1, Users: 1, Resubmissions: 2, Changes: 1, ChangedPairs: 1,
		Changed: []dedup.ChangedPair{{User: "ann", EventID: 4, Answers: []dedup.Answer{
			{Choice: experiment.Escalate, Confidence: &three},
			{Choice: experiment.DontKnow},
		}}},
	}
	out = Resubmissions(format.Markdown, r)
	if !strings.Contains(out, "Escalate (3) → I don't know") {
		t.Errorf("resubmission output:\n%s", out)
	}
}

func TestUserDetail(t *testing.T) {
	cfg, rep := sampleReport(t)
	u, ok := rep.Users.Find(sample.Username(1))
	if !ok {
		t.Fatalf("%s missing from results", sample.Username(1))
	}
	out := UserDetail(format.Markdown, cfg, u, rep.Events)
	for _, want := range []string{"### " + sample.Username(1) + ", ", "### Outcome tally", "False negative", "Undecided"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	rows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "| ") && strings.Contains(line, "scalate") {
			rows++
		}
	}
	if rows != len(rep.Events) {
		t.Errorf("%d event rows, want %d:\n%s", rows, len(rep.Events), out)
	}
}

func TestItemTable_GroupColumn(t *testing.T) {
	cfg, rep := sampleReport(t)
	out := ItemTable(format.CSV, cfg, rep.Items.Items)
	if !strings.Contains(out, "50% FAR (1)") {
		t.Errorf("expected labelled group in output:\n%s", out)
	}
}
