package analysis

import (
	"errors"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"crywolf/internal/compare"
	"crywolf/internal/config"
	"crywolf/internal/confusion"
	"crywolf/internal/experiment"
	"crywolf/internal/logging"
	"crywolf/internal/measure"
	"crywolf/internal/normalize"
	"crywolf/internal/sample"
)

func inUnit(v measure.Value) bool {
	f, ok := v.Get()
	return !ok || (f >= 0 && f <= 1)
}

var _ = ginkgo.Describe("Run", func() {
	ginkgo.Context("on the generated sample", func() {
		var rep *Report

		ginkgo.BeforeEach(func() {
			var err error
			rep, err = Run(config.Default(), sample.Dataset(), logging.Discard())
			gomega.Expect(err).To(gomega.Succeed())
		})

		ginkgo.It("drops check events, the excluded user and the unfinished session", func() {
			gomega.Expect(rep.Normalization.CheckEvents).To(gomega.Equal(2))
			gomega.Expect(rep.Normalization.ExcludedUsers).To(gomega.Equal(1))
			gomega.Expect(rep.Normalization.TrueAlarms).To(gomega.Equal(4))
			gomega.Expect(rep.Normalization.FalseAlarms).To(gomega.Equal(8))
			gomega.Expect(rep.Users.Users).To(gomega.HaveLen(sample.Users))
			gomega.Expect(rep.Users.Incomplete).To(gomega.ConsistOf("unfinished"))
			_, found := rep.Users.Find("awiv3")
			gomega.Expect(found).To(gomega.BeFalse())
		})

		ginkgo.It("keeps the latest answer and counts resubmission changes", func() {
			// each session resubmits one changed answer and some resubmit an identical one
			gomega.Expect(rep.Resubmissions.ChangedPairs).To(gomega.Equal(sample.Users + 1))
			gomega.Expect(rep.Resubmissions.Changes).To(gomega.Equal(sample.Users + 1))
			gomega.Expect(rep.Resubmissions.Resubmissions).To(gomega.BeNumerically(">", rep.Resubmissions.ChangedPairs))
			gomega.Expect(rep.DroppedDuplicates).To(gomega.Equal(rep.Resubmissions.Resubmissions))

			for _, u := range rep.Users.Users {
				for _, id := range u.Outcomes.EventIDs() {
					want, err := confusion.Classify(sample.Answer(userIndex(u.Username), id), sample.Truth(id))
					gomega.Expect(err).To(gomega.Succeed())
					gomega.Expect(u.Outcomes.Label(id)).To(gomega.Equal(want), "user %s event %d", u.Username, id)
				}
			}
		})

		ginkgo.It("produces measures in range with consistent counts", func() {
			for _, u := range rep.Users.Users {
				gomega.Expect(u.Counts.Total()).To(gomega.Equal(sample.Events))
				gomega.Expect(u.DecisionCount).To(gomega.Equal(sample.Events))
				for _, v := range []measure.Value{u.Sensitivity, u.Specificity, u.Precision, u.Correctness} {
					gomega.Expect(inUnit(v)).To(gomega.BeTrue())
				}
				gomega.Expect(u.TimeOnTask.Valid()).To(gomega.BeTrue())
				gomega.Expect(u.Experience).NotTo(gomega.BeEmpty())
				gomega.Expect(u.MeanLatency.Valid()).To(gomega.BeTrue())
			}
			u2, _ := rep.Users.Find(sample.Username(2))
			gomega.Expect(u2.CheckScore).To(gomega.Equal(measure.Of(1)))
			u1, _ := rep.Users.Find(sample.Username(1))
			gomega.Expect(u1.CheckScore).To(gomega.Equal(measure.Of(2)))
			gomega.Expect(u1.LowTime).To(gomega.BeTrue())
		})

		ginkgo.It("analyzes every event per group", func() {
			gomega.Expect(rep.Items.Items).To(gomega.HaveLen(sample.Events))
			gomega.Expect(rep.Items.Groups).To(gomega.HaveLen(2))
			for _, g := range rep.Items.Groups {
				gomega.Expect(g.TailSize).To(gomega.Equal(1))
			}
			for _, it := range rep.Items.Items {
				for _, gi := range it.Groups {
					gomega.Expect(inUnit(gi.Difficulty)).To(gomega.BeTrue())
					if d, ok := gi.Discrimination.Get(); ok {
						gomega.Expect(d).To(gomega.And(gomega.BeNumerically(">=", -1), gomega.BeNumerically("<=", 1)))
					}
				}
			}
		})

		ginkgo.It("compares both groups in both default cohorts", func() {
			gomega.Expect(rep.Comparisons).To(gomega.HaveLen(2 * 6))
			for _, c := range rep.Comparisons {
				gomega.Expect(c.Possible).To(gomega.BeTrue())
				gomega.Expect(c.Test.P).To(gomega.And(gomega.BeNumerically(">", 0), gomega.BeNumerically("<=", 1)))
				gomega.Expect(c.A.Label).To(gomega.Equal("50% FAR"))
			}
			gomega.Expect(rep.Comparisons[6].Cohort).To(gomega.Equal(string(compare.ExcludeQ1)))
		})

		ginkgo.It("builds a timing sequence per analyzed session", func() {
			gomega.Expect(rep.Timing.Users).To(gomega.HaveLen(sample.Users + 1))
			gomega.Expect(rep.Timing.Positions).To(gomega.HaveLen(sample.Events))
		})
	})

	ginkgo.It("reproduces the single-event scenario", func() {
		t0 := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
		t1 := t0.Add(time.Hour)
		ds := experiment.Dataset{
			Events: []experiment.Event{{ID: 1, ShouldEscalate: "1"}},
			Users: []experiment.User{
				{Username: "A", Group: 1, Begin: &t0, End: &t1},
				{Username: "B", Group: 1, Begin: &t0, End: &t1},
				{Username: "C", Group: 3, Begin: &t0, End: &t1},
			},
			Decisions: []experiment.Decision{
				{ID: 1, User: "A", EventID: 1, Choice: experiment.Escalate, Time: t0},
				{ID: 2, User: "B", EventID: 1, Choice: experiment.DontEscalate, Time: t0},
				{ID: 3, User: "C", EventID: 1, Choice: experiment.DontKnow, Time: t0},
			},
		}
		rep, err := Run(config.Default(), ds, logging.Discard())
		gomega.Expect(err).To(gomega.Succeed())

		var total confusion.Counts
		for _, u := range rep.Users.Users {
			total.TP += u.Counts.TP
			total.FP += u.Counts.FP
			total.TN += u.Counts.TN
			total.FN += u.Counts.FN
			total.Undecided += u.Counts.Undecided
		}
		gomega.Expect(total).To(gomega.Equal(confusion.Counts{TP: 1, FN: 1, Undecided: 1}))
		se := measure.Ratio(total.TP, total.TP+total.FN)
		gomega.Expect(se).To(gomega.Equal(measure.Of(0.5)))
	})

	ginkgo.It("fails on malformed ground truth", func() {
		ds := experiment.Dataset{Events: []experiment.Event{{ID: 1, ShouldEscalate: "yes"}}}
		_, err := Run(config.Default(), ds, logging.Discard())
		gomega.Expect(errors.Is(err, normalize.ErrUnknownGroundTruth)).To(gomega.BeTrue())
	})

	ginkgo.It("fails on an unknown choice", func() {
		t0 := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
		ds := experiment.Dataset{
			Events:    []experiment.Event{{ID: 1, ShouldEscalate: "0"}},
			Users:     []experiment.User{{Username: "A", Group: 1, Begin: &t0, End: &t0}},
			Decisions: []experiment.Decision{{User: "A", EventID: 1, Choice: "Escalate!", Time: t0}},
		}
		_, err := Run(config.Default(), ds, logging.Discard())
		gomega.Expect(errors.Is(err, confusion.ErrUnknownChoice)).To(gomega.BeTrue())
	})

	ginkgo.It("fails on an unknown choice in a superseded decision", func() {
		t0 := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC)
		t1 := t0.Add(time.Hour)
		ds := experiment.Dataset{
			Events: []experiment.Event{{ID: 1, ShouldEscalate: "1"}},
			Users:  []experiment.User{{Username: "u1", Group: 1, Begin: &t0, End: &t1}},
			Decisions: []experiment.Decision{
				{ID: 1, User: "u1", EventID: 1, Choice: "Maybe", Time: t0.Add(time.Minute)},
				{ID: 2, User: "u1", EventID: 1, Choice: experiment.Escalate, Time: t0.Add(2 * time.Minute)},
			},
		}
		ds.Resequence()
		rep, err := Run(config.Default(), ds, logging.Discard())
		gomega.Expect(errors.Is(err, confusion.ErrUnknownChoice)).To(gomega.BeTrue())
		gomega.Expect(err.Error()).To(gomega.ContainSubstring("decision 1 "))
		gomega.Expect(rep).To(gomega.BeNil())
	})

	ginkgo.It("rejects an invalid config", func() {
		cfg := config.Default()
		cfg.TimeQuantile = 0
		_, err := Run(cfg, experiment.Dataset{}, logging.Discard())
		gomega.Expect(errors.Is(err, config.ErrInvalid)).To(gomega.BeTrue())
	})
})

func userIndex(name string) int {
	for i := 1; i <= sample.Users; i++ {
		if sample.Username(i) == name {
			return i
		}
	}
	return 0
}
