package workbook

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"crywolf/internal/compare"
	"crywolf/internal/config"
	"crywolf/internal/experiment"
	"crywolf/internal/items"
	"crywolf/internal/measure"
	"crywolf/internal/results"
)

// Results is what a results workbook holds.
type Results struct {
	Config      config.Config
	Users       *results.Table
	Items       []items.Item
	Comparisons []compare.Result
}

// WriteDataset writes ds in the layout Read expects. Timestamps are stored
// as RFC 3339 text so they survive a round trip exactly.
func WriteDataset(path string, ds experiment.Dataset) error {
	f, err := datasetFile(ds)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func datasetFile(ds experiment.Dataset) (*excelize.File, error) {
	w := newWriter()

	w.sheet(SheetUser, userColumns)
	for _, u := range ds.Users {
		w.row(u.ID, u.Username, u.Group, timeCell(u.Begin), timeCell(u.End),
			experiment.FormatEventList(u.Events),
			u.QuestionnaireComplete, u.TrainingComplete, u.ExperimentComplete, u.SurveyComplete,
			u.CompletionCode)
	}

	w.sheet(SheetPrequestionnaire, prequestionnaireColumns)
	for i, p := range ds.Prequestionnaires {
		w.row(i+1, FormatTime(p.Timestamp), p.User, p.Role,
			p.ExpResearcher, p.ExpAdmin, p.ExpSoftware, p.ExpSecurity,
			p.FamiliarityNone, p.FamiliarityRead, p.FamiliarityControlled, p.FamiliarityPublic, p.FamiliarityEngineered,
			p.SubnetMask, p.NetworkAddress, p.TCPFaster, p.HTTPPort, p.Firewall, p.Socket, p.WhichModel)
	}

	w.sheet(SheetEvent, eventColumns)
	for _, e := range ds.Events {
		w.row(e.ID, e.ShouldEscalate,
			e.Country1, e.SuccessfulLogins1, e.FailedLogins1, e.SourceProvider1,
			e.Country2, e.SuccessfulLogins2, e.FailedLogins2, e.SourceProvider2,
			e.TimeBetweenAuthentications, e.VPNConfidence)
	}

	w.sheet(SheetEventClicked, clickColumns)
	for _, c := range ds.Clicks {
		w.row(c.ID, c.User, c.EventID, FormatTime(c.Time))
	}

	w.sheet(SheetEventDecision, decisionColumns)
	for _, d := range ds.Decisions {
		var confidence any = ""
		if d.Confidence != nil {
			confidence = *d.Confidence
		}
		w.row(d.ID, d.User, d.EventID, string(d.Choice), confidence, FormatTime(d.Time))
	}

	w.sheet(SheetSurvey, surveyColumns)
	for i, s := range ds.Surveys {
		w.row(i+1, FormatTime(s.Timestamp), s.User,
			s.Mental, s.Physical, s.Temporal, s.Performance, s.Effort, s.Frustration,
			s.UsefulInfo, s.Feedback)
	}

	return w.finish()
}

// WriteResults writes the users, items and comparisons sheets. NA cells
// are left empty.
func WriteResults(path string, r Results) error {
	if r.Users == nil {
		return fmt.Errorf("write results workbook: nil results table")
	}
	w := newWriter()

	measures := results.Registered()
	header := []string{"username", "group", "group_label", "experience", "low_time"}
	for _, m := range measures {
		header = append(header, m.Name)
	}
	w.sheet(SheetUsers, header)
	for _, u := range r.Users.Users {
		cells := []any{u.Username, u.Group, r.Config.GroupLabel(u.Group), string(u.Experience), u.LowTime}
		for _, m := range measures {
			cells = append(cells, valueCell(m.Of(u)))
		}
		w.row(cells...)
	}

	w.sheet(SheetItems, []string{
		"event_id", "truth", "group", "labeled", "correct", "difficulty", "discrimination",
		"high_discrimination", "too_easy", "too_hard",
	})
	for _, it := range r.Items {
		for _, gi := range it.Groups {
			w.row(it.EventID, string(it.Truth), gi.Group, gi.Labeled, gi.Correct,
				valueCell(gi.Difficulty), valueCell(gi.Discrimination), gi.High, gi.TooEasy, gi.TooHard)
		}
	}

	w.sheet(SheetComparisons, []string{
		"measure", "cohort", "group_a", "group_b", "n_a", "n_b", "mean_a", "mean_b", "median_a", "median_b",
		"possible", "u", "p", "z", "effect", "exact",
	})
	for _, c := range r.Comparisons {
		cells := []any{c.Measure, c.Cohort, c.A.Label, c.B.Label, c.A.Stats.N, c.B.Stats.N,
			valueCell(c.A.Stats.Mean), valueCell(c.B.Stats.Mean),
			valueCell(c.A.Stats.Median), valueCell(c.B.Stats.Median), c.Possible}
		if c.Possible {
			cells = append(cells, max(c.Test.U1, c.Test.U2), c.Test.P, valueCell(c.Test.Z), c.Test.Effect, c.Test.Exact)
		}
		w.row(cells...)
	}

	f, err := w.finish()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// writer appends rows sheet by sheet and keeps the first error.
type writer struct {
	f       *excelize.File
	current string
	next    int
	err     error
}

func newWriter() *writer { return &writer{f: excelize.NewFile()} }

func (w *writer) sheet(name string, header []string) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("new sheet %s: %w", name, err)
		return
	}
	w.current, w.next = name, 1
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	w.row(cells...)
}

func (w *writer) row(cells ...any) {
	if w.err != nil {
		return
	}
	addr, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(w.current, addr, &cells); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", w.current, w.next, err)
		return
	}
	w.next++
}

func (w *writer) finish() (*excelize.File, error) {
	if w.err == nil {
		if err := w.f.DeleteSheet("Sheet1"); err != nil {
			w.err = fmt.Errorf("delete default sheet: %w", err)
		}
	}
	if w.err != nil {
		_ = w.f.Close()
		return nil, w.err
	}
	return w.f, nil
}

func timeCell(t *time.Time) any {
	if t == nil {
		return ""
	}
	return FormatTime(*t)
}

func valueCell(v measure.Value) any {
	if f, ok := v.Get(); ok {
		return f
	}
	return ""
}
