package workbook

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/xuri/excelize/v2"

	"crywolf/internal/experiment"
	"crywolf/internal/logging"
)

// optional sheets may be absent; their records are then empty.
var optional = []string{SheetEventClicked, SheetPrequestionnaire, SheetSurvey}

// Read opens an .xlsx dump and returns its six tables with load sequence
// assigned in sheet row order.
func Read(path string, log *slog.Logger) (experiment.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return experiment.Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readFile(f, log)
}

// ReadFrom is Read over an in-memory workbook.
func ReadFrom(r io.Reader, log *slog.Logger) (experiment.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return experiment.Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return readFile(f, log)
}

func readFile(f *excelize.File, log *slog.Logger) (experiment.Dataset, error) {
	log = logging.OrDefault(log, "workbook")
	var ds experiment.Dataset

	sheets := f.GetSheetList()
	load := func(name string) (*table, error) {
		if !slices.Contains(sheets, name) {
			if slices.Contains(optional, name) {
				log.Warn("sheet absent, table left empty", "sheet", name)
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrMissingSheet, name)
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		t, err := newTable(name, rows)
		if err != nil {
			return nil, err
		}
		log.Debug("read sheet", "sheet", name, "rows", len(t.rows))
		return t, nil
	}

	steps := []struct {
		sheet string
		parse func(*table, *experiment.Dataset) error
	}{
		{SheetEvent, parseEvents},
		{SheetEventDecision, parseDecisions},
		{SheetEventClicked, parseClicks},
		{SheetUser, parseUsers},
		{SheetPrequestionnaire, parsePrequestionnaires},
		{SheetSurvey, parseSurveys},
	}
	for _, st := range steps {
		t, err := load(st.sheet)
		if err != nil {
			return experiment.Dataset{}, err
		}
		if t == nil {
			continue
		}
		if err := st.parse(t, &ds); err != nil {
			return experiment.Dataset{}, err
		}
	}

	ds.Resequence()
	log.Info("read workbook",
		"events", len(ds.Events), "decisions", len(ds.Decisions), "clicks", len(ds.Clicks),
		"users", len(ds.Users), "prequestionnaires", len(ds.Prequestionnaires), "surveys", len(ds.Surveys))
	return ds, nil
}

func parseEvents(t *table, ds *experiment.Dataset) error {
	for i, r := range t.rows {
		id, err := t.intAt(r, "id", t.lines[i])
		if err != nil {
			return err
		}
		ds.Events = append(ds.Events, experiment.Event{
			ID:                         id,
			ShouldEscalate:             t.cell(r, "should_escalate"),
			Country1:                   t.cell(r, "country_of_authentication1"),
			Country2:                   t.cell(r, "country_of_authentication2"),
			SuccessfulLogins1:          t.cell(r, "number_successful_logins1"),
			SuccessfulLogins2:          t.cell(r, "number_successful_logins2"),
			FailedLogins1:              t.cell(r, "number_failed_logins1"),
			FailedLogins2:              t.cell(r, "number_failed_logins2"),
			SourceProvider1:            t.cell(r, "source_provider1"),
			SourceProvider2:            t.cell(r, "source_provider2"),
			TimeBetweenAuthentications: t.cell(r, "time_between_authentications"),
			VPNConfidence:              t.cell(r, "vpn_confidence"),
		})
	}
	return nil
}

func parseDecisions(t *table, ds *experiment.Dataset) error {
	for i, r := range t.rows {
		line := t.lines[i]
		d := experiment.Decision{User: t.cell(r, "user"), Choice: experiment.Choice(t.cell(r, "escalate"))}
		var err error
		if d.ID, err = t.intAt(r, "id", line); err != nil {
			return err
		}
		if d.EventID, err = t.intAt(r, "event_id", line); err != nil {
			return err
		}
		if d.Confidence, err = experiment.ParseConfidence(t.cell(r, "confidence")); err != nil {
			return fmt.Errorf("%s row %d: %w", t.name, line, err)
		}
		at, err := t.timeAt(r, "time_event_decision", line)
		if err != nil {
			return err
		}
		if at == nil {
			return fmt.Errorf("%s row %d: empty time_event_decision", t.name, line)
		}
		d.Time = *at
		ds.Decisions = append(ds.Decisions, d)
	}
	return nil
}

func parseClicks(t *table, ds *experiment.Dataset) error {
	for i, r := range t.rows {
		line := t.lines[i]
		c := experiment.Click{User: t.cell(r, "user")}
		var err error
		if c.ID, err = t.intAt(r, "id", line); err != nil {
			return err
		}
		if c.EventID, err = t.intAt(r, "event_id", line); err != nil {
			return err
		}
		at, err := t.timeAt(r, "time_event_click", line)
		if err != nil {
			return err
		}
		if at == nil {
			return fmt.Errorf("%s row %d: empty time_event_click", t.name, line)
		}
		c.Time = *at
		ds.Clicks = append(ds.Clicks, c)
	}
	return nil
}

func parseUsers(t *table, ds *experiment.Dataset) error {
	for i, r := range t.rows {
		line := t.lines[i]
		u := experiment.User{Username: t.cell(r, "username"), CompletionCode: t.cell(r, "completion_code")}
		var err error
		if u.ID, err = t.intAt(r, "id", line); err != nil {
			return err
		}
		if u.Group, err = t.intAt(r, "group", line); err != nil {
			return err
		}
		if u.Begin, err = t.timeAt(r, "time_begin", line); err != nil {
			return err
		}
		if u.End, err = t.timeAt(r, "time_end", line); err != nil {
			return err
		}
		if u.Events, err = experiment.ParseEventList(t.cell(r, "events")); err != nil {
			return fmt.Errorf("%s row %d: %w", t.name, line, err)
		}
		flags := []struct {
			col string
			dst *bool
		}{
			{"questionnaire_complete", &u.QuestionnaireComplete},
			{"training_complete", &u.TrainingComplete},
			{"experiment_complete", &u.ExperimentComplete},
			{"survey_complete", &u.SurveyComplete},
		}
		for _, fl := range flags {
			if *fl.dst, err = t.boolAt(r, fl.col, line); err != nil {
				return err
			}
		}
		ds.Users = append(ds.Users, u)
	}
	return nil
}

func parsePrequestionnaires(t *table, ds *experiment.Dataset) error {
	for i, r := range t.rows {
		line := t.lines[i]
		p := experiment.Prequestionnaire{
			User:           t.cell(r, "user"),
			Role:           t.cell(r, "role"),
			ExpResearcher:  t.cell(r, "exp_researcher"),
			ExpAdmin:       t.cell(r, "exp_admin"),
			ExpSoftware:    t.cell(r, "exp_software"),
			ExpSecurity:    t.cell(r, "exp_security"),
			SubnetMask:     t.cell(r, "subnet_mask"),
			NetworkAddress: t.cell(r, "network_address"),
			TCPFaster:      t.cell(r, "tcp_faster"),
			HTTPPort:       t.cell(r, "http_port"),
			Firewall:       t.cell(r, "firewall"),
			Socket:         t.cell(r, "socket"),
			WhichModel:     t.cell(r, "which_model"),
		}
		at, err := t.timeAt(r, "timestamp", line)
		if err != nil {
			return err
		}
		if at != nil {
			p.Timestamp = *at
		}
		flags := []struct {
			col string
			dst *bool
		}{
			{"familiarity_none", &p.FamiliarityNone},
			{"familiarity_read", &p.FamiliarityRead},
			{"familiarity_controlled", &p.FamiliarityControlled},
			{"familiarity_public", &p.FamiliarityPublic},
			{"familiarity_engineered", &p.FamiliarityEngineered},
		}
		for _, fl := range flags {
			if *fl.dst, err = t.boolAt(r, fl.col, line); err != nil {
				return err
			}
		}
		ds.Prequestionnaires = append(ds.Prequestionnaires, p)
	}
	return nil
}

func parseSurveys(t *table, ds *experiment.Dataset) error {
	for i, r := range t.rows {
		line := t.lines[i]
		s := experiment.Survey{
			User:       t.cell(r, "user"),
			UsefulInfo: t.cell(r, "useful_info"),
			Feedback:   t.cell(r, "feedback"),
		}
		at, err := t.timeAt(r, "timestamp", line)
		if err != nil {
			return err
		}
		if at != nil {
			s.Timestamp = *at
		}
		ratings := []struct {
			col string
			dst *int
		}{
			{"mental", &s.Mental},
			{"physical", &s.Physical},
			{"temporal", &s.Temporal},
			{"performance", &s.Performance},
			{"effort", &s.Effort},
			{"frustration", &s.Frustration},
		}
		for _, rt := range ratings {
			if *rt.dst, err = t.intAt(r, rt.col, line); err != nil {
				return err
			}
		}
		ds.Surveys = append(ds.Surveys, s)
	}
	return nil
}
