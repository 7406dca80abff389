// Package sample generates a small deterministic Cry Wolf dataset with the
// quirks of the real export: resubmissions, "I don't know" answers, missing
// clicks, attention-check events, an excluded user and an unfinished session.
// It backs `crywolf sample` and the end-to-end tests.
package sample

import (
	"fmt"
	"time"

	"crywolf/internal/experiment"
)

// Base is the start of the first generated session.
var Base = time.Date(2020, 1, 20, 14, 0, 0, 0, time.UTC)

const (
	// Users is the number of complete, analyzable sessions generated.
	Users = 8
	// Events is the number of non-check events generated.
	Events = 12
)

// Username returns the generated name of user i (1-based).
func Username(i int) string { return fmt.Sprintf("user%02d", i) }

// Truth is the generated ground truth of event e: every third event is a true alarm.
func Truth(e int) experiment.Choice {
	if e%3 == 0 {
		return experiment.Escalate
	}
	return experiment.DontEscalate
}

func opposite(c experiment.Choice) experiment.Choice {
	if c == experiment.Escalate {
		return experiment.DontEscalate
	}
	return experiment.Escalate
}

func code(c experiment.Choice) string {
	if c == experiment.Escalate {
		return "1"
	}
	return "0"
}

// Answer is the final answer user i gives on event e.
func Answer(i, e int) experiment.Choice {
	if (e*i)%11 == 0 {
		return experiment.DontKnow
	}
	if (e+i)%(i%4+2) == 0 {
		return opposite(Truth(e))
	}
	return Truth(e)
}

// Dataset returns the generated dataset with load sequence assigned.
func Dataset() experiment.Dataset {
	var ds experiment.Dataset

	assigned := make([]int, 0, Events+2)
	for e := 1; e <= Events; e++ {
		ds.Events = append(ds.Events, experiment.Event{
			ID:                         e,
			ShouldEscalate:             code(Truth(e)),
			Country1:                   "United States",
			Country2:                   []string{"United States", "Canada", "Brazil"}[e%3],
			SuccessfulLogins1:          fmt.Sprint(10 + e),
			SuccessfulLogins2:          fmt.Sprint(e % 4),
			FailedLogins1:              "0",
			FailedLogins2:              fmt.Sprint(e % 3),
			SourceProvider1:            "Comcast",
			SourceProvider2:            []string{"Comcast", "AWS", "Private"}[e%3],
			TimeBetweenAuthentications: fmt.Sprintf("%.1f", float64(e)/2),
			VPNConfidence:              fmt.Sprint(e * 7 % 100),
		})
		assigned = append(assigned, e)
	}
	ds.Events = append(ds.Events,
		experiment.Event{ID: 74, ShouldEscalate: "1", Country1: "United States", Country2: "Russia"},
		experiment.Event{ID: 75, ShouldEscalate: "0", Country1: "United States", Country2: "United States"},
	)
	assigned = append(assigned, 74, 75)

	decisionID, clickID := 1, 1
	addDecision := func(user string, e int, c experiment.Choice, at time.Time) {
		d := experiment.Decision{ID: decisionID, User: user, EventID: e, Choice: c, Time: at}
		if c != experiment.DontKnow {
			conf := 1 + (e+decisionID)%5
			d.Confidence = &conf
		}
		ds.Decisions = append(ds.Decisions, d)
		decisionID++
	}
	addClick := func(user string, e int, at time.Time) {
		ds.Clicks = append(ds.Clicks, experiment.Click{ID: clickID, User: user, EventID: e, Time: at})
		clickID++
	}

	for i := 1; i <= Users+2; i++ {
		name := Username(i)
		group := 1
		if i%2 == 0 {
			group = 3
		}
		switch i {
		case Users + 1:
			name = "awiv3"
		case Users + 2:
			name = "unfinished"
		}
		begin := Base.Add(time.Duration(i) * time.Hour)
		end := begin.Add(time.Duration(20+5*i) * time.Minute)
		u := experiment.User{
			ID:                    i,
			Username:              name,
			Group:                 group,
			Begin:                 &begin,
			End:                   &end,
			Events:                assigned,
			QuestionnaireComplete: true,
			TrainingComplete:      true,
			ExperimentComplete:    true,
			SurveyComplete:        i%3 != 0,
			CompletionCode:        fmt.Sprintf("CW%04d", 17*i),
		}
		if name == "unfinished" {
			u.End = nil
			u.ExperimentComplete = false
			u.SurveyComplete = false
			u.CompletionCode = ""
		}
		ds.Users = append(ds.Users, u)

		for e := 1; e <= Events; e++ {
			at := begin.Add(time.Duration(e) * 90 * time.Second)
			if (e+i)%7 != 0 {
				addClick(name, e, at.Add(-time.Duration(35+(e+i)%20)*time.Second))
			}
			if e == i {
				addDecision(name, e, opposite(Answer(i, e)), at.Add(-30*time.Second))
			}
			addDecision(name, e, Answer(i, e), at)
			if e == 2*i {
				addDecision(name, e, Answer(i, e), at.Add(time.Minute))
			}
		}
		checkAt := begin.Add(time.Duration(Events+1) * 90 * time.Second)
		addDecision(name, 74, experiment.Escalate, checkAt)
		check75 := experiment.DontEscalate
		if i == 2 {
			check75 = experiment.Escalate
		}
		addDecision(name, 75, check75, checkAt.Add(time.Minute))

		if u.SurveyComplete {
			ds.Surveys = append(ds.Surveys, experiment.Survey{
				Timestamp: end, User: name,
				Mental: 1 + i%10, Physical: 1, Temporal: 1 + (2*i)%10,
				Performance: 10 - i%10, Effort: 1 + (3*i)%10, Frustration: 1 + (i+4)%10,
				UsefulInfo: "country of authentication", Feedback: "",
			})
		}
		ds.Prequestionnaires = append(ds.Prequestionnaires, prequestionnaire(i, name, begin))
	}

	ds.Resequence()
	return ds
}

func prequestionnaire(i int, name string, at time.Time) experiment.Prequestionnaire {
	durations := []string{"None", "Less than 1 year", "1-5 years", "5-10 years", "10+ years"}
	p := experiment.Prequestionnaire{
		Timestamp:       at.Add(-10 * time.Minute),
		User:            name,
		Role:            []string{"Student", "Analyst", "Administrator", "Developer"}[i%4],
		ExpResearcher:   durations[i%5],
		ExpAdmin:        durations[(i+1)%5],
		ExpSoftware:     durations[(i+2)%5],
		ExpSecurity:     durations[(i*3)%5],
		FamiliarityNone: i%4 == 0,
		FamiliarityRead: i%4 != 0,
		SubnetMask:      "255.255.255.0",
		NetworkAddress:  "173.67.14.0",
		TCPFaster:       "False",
		HTTPPort:        "80",
		Firewall:        "Firewall",
		Socket:          "Socket",
		WhichModel:      "TCP/IP",
	}
	// later users get progressively more knowledge answers wrong
	wrong := []*string{&p.WhichModel, &p.Socket, &p.Firewall, &p.HTTPPort, &p.TCPFaster, &p.NetworkAddress, &p.SubnetMask}
	for k := 0; k < i%8 && k < len(wrong); k++ {
		*wrong[k] = "unsure"
	}
	return p
}
