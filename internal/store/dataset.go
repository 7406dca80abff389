package store

import (
	"database/sql"
	"fmt"

	"crywolf/internal/experiment"
)

var datasetTables = []string{
	"event", "event_decision", "event_clicked", "user", "prequestionnaire_answers", "survey_answers",
}

// SaveDataset replaces all six experiment tables in one transaction.
// Decisions and clicks are stored with their load sequence.
func (s *SqlStore) SaveDataset(ds experiment.Dataset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range datasetTables {
		if _, err := tx.Exec("DELETE FROM " + t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	for _, e := range ds.Events {
		_, err := tx.Exec(
			`INSERT INTO event(id, should_escalate,
			   country_of_authentication1, country_of_authentication2,
			   number_successful_logins1, number_successful_logins2,
			   number_failed_logins1, number_failed_logins2,
			   source_provider1, source_provider2,
			   time_between_authentications, vpn_confidence)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.ShouldEscalate, e.Country1, e.Country2,
			e.SuccessfulLogins1, e.SuccessfulLogins2, e.FailedLogins1, e.FailedLogins2,
			e.SourceProvider1, e.SourceProvider2, e.TimeBetweenAuthentications, e.VPNConfidence,
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.ID, err)
		}
	}

	for i, d := range ds.Decisions {
		var confidence any
		if d.Confidence != nil {
			confidence = *d.Confidence
		}
		_, err := tx.Exec(
			`INSERT INTO event_decision(seq, id, user, event_id, escalate, confidence, time_event_decision)
			 VALUES(?, ?, ?, ?, ?, ?, ?)`,
			i, d.ID, d.User, d.EventID, string(d.Choice), confidence, timeArg(d.Time),
		)
		if err != nil {
			return fmt.Errorf("insert decision %d: %w", d.ID, err)
		}
	}

	for i, c := range ds.Clicks {
		_, err := tx.Exec(
			`INSERT INTO event_clicked(seq, id, user, event_id, time_event_click) VALUES(?, ?, ?, ?, ?)`,
			i, c.ID, c.User, c.EventID, timeArg(c.Time),
		)
		if err != nil {
			return fmt.Errorf("insert click %d: %w", c.ID, err)
		}
	}

	for _, u := range ds.Users {
		_, err := tx.Exec(
			`INSERT INTO user(id, username, grp, time_begin, time_end, events,
			   questionnaire_complete, training_complete, experiment_complete, survey_complete, completion_code)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Username, u.Group, timePtrArg(u.Begin), timePtrArg(u.End),
			experiment.FormatEventList(u.Events),
			boolArg(u.QuestionnaireComplete), boolArg(u.TrainingComplete),
			boolArg(u.ExperimentComplete), boolArg(u.SurveyComplete), u.CompletionCode,
		)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.Username, err)
		}
	}

	for i, p := range ds.Prequestionnaires {
		_, err := tx.Exec(
			`INSERT INTO prequestionnaire_answers(seq, timestamp, user, role,
			   exp_researcher, exp_admin, exp_software, exp_security,
			   familiarity_none, familiarity_read, familiarity_controlled, familiarity_public, familiarity_engineered,
			   subnet_mask, network_address, tcp_faster, http_port, firewall, socket, which_model)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, timeArg(p.Timestamp), p.User, p.Role,
			p.ExpResearcher, p.ExpAdmin, p.ExpSoftware, p.ExpSecurity,
			boolArg(p.FamiliarityNone), boolArg(p.FamiliarityRead), boolArg(p.FamiliarityControlled),
			boolArg(p.FamiliarityPublic), boolArg(p.FamiliarityEngineered),
			p.SubnetMask, p.NetworkAddress, p.TCPFaster, p.HTTPPort, p.Firewall, p.Socket, p.WhichModel,
		)
		if err != nil {
			return fmt.Errorf("insert prequestionnaire of %s: %w", p.User, err)
		}
	}

	for i, sv := range ds.Surveys {
		_, err := tx.Exec(
			`INSERT INTO survey_answers(seq, timestamp, user, mental, physical, temporal,
			   performance, effort, frustration, useful_info, feedback)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, timeArg(sv.Timestamp), sv.User, sv.Mental, sv.Physical, sv.Temporal,
			sv.Performance, sv.Effort, sv.Frustration, sv.UsefulInfo, sv.Feedback,
		)
		if err != nil {
			return fmt.Errorf("insert survey of %s: %w", sv.User, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}
	return nil
}

// LoadDataset reads the six experiment tables.
func (s *SqlStore) LoadDataset() (experiment.Dataset, error) {
	var ds experiment.Dataset
	var err error
	if ds.Events, err = s.loadEvents(); err != nil {
		return ds, err
	}
	if ds.Decisions, err = s.loadDecisions(); err != nil {
		return ds, err
	}
	if ds.Clicks, err = s.loadClicks(); err != nil {
		return ds, err
	}
	if ds.Users, err = s.loadUsers(); err != nil {
		return ds, err
	}
	if ds.Prequestionnaires, err = s.loadPrequestionnaires(); err != nil {
		return ds, err
	}
	if ds.Surveys, err = s.loadSurveys(); err != nil {
		return ds, err
	}
	ds.Resequence()
	return ds, nil
}

func (s *SqlStore) loadEvents() ([]experiment.Event, error) {
	rows, err := s.db.Query(
		`SELECT id, should_escalate,
		        country_of_authentication1, country_of_authentication2,
		        number_successful_logins1, number_successful_logins2,
		        number_failed_logins1, number_failed_logins2,
		        source_provider1, source_provider2,
		        time_between_authentications, vpn_confidence
		 FROM event ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	var list []experiment.Event
	for rows.Next() {
		var e experiment.Event
		var attrs [10]sql.NullString
		if err := rows.Scan(&e.ID, &e.ShouldEscalate,
			&attrs[0], &attrs[1], &attrs[2], &attrs[3], &attrs[4],
			&attrs[5], &attrs[6], &attrs[7], &attrs[8], &attrs[9]); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Country1, e.Country2 = nullStr(attrs[0]), nullStr(attrs[1])
		e.SuccessfulLogins1, e.SuccessfulLogins2 = nullStr(attrs[2]), nullStr(attrs[3])
		e.FailedLogins1, e.FailedLogins2 = nullStr(attrs[4]), nullStr(attrs[5])
		e.SourceProvider1, e.SourceProvider2 = nullStr(attrs[6]), nullStr(attrs[7])
		e.TimeBetweenAuthentications, e.VPNConfidence = nullStr(attrs[8]), nullStr(attrs[9])
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return list, nil
}

func (s *SqlStore) loadDecisions() ([]experiment.Decision, error) {
	rows, err := s.db.Query(
		`SELECT id, user, event_id, escalate, confidence, time_event_decision
		 FROM event_decision ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()
	var list []experiment.Decision
	for rows.Next() {
		var d experiment.Decision
		var choice, at string
		var confidence sql.NullInt64
		if err := rows.Scan(&d.ID, &d.User, &d.EventID, &choice, &confidence, &at); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Choice = experiment.Choice(choice)
		if confidence.Valid {
			c := int(confidence.Int64)
			d.Confidence = &c
		}
		if d.Time, err = parseTime(at); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	return list, nil
}

func (s *SqlStore) loadClicks() ([]experiment.Click, error) {
	rows, err := s.db.Query(`SELECT id, user, event_id, time_event_click FROM event_clicked ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}
	defer rows.Close()
	var list []experiment.Click
	for rows.Next() {
		var c experiment.Click
		var at string
		if err := rows.Scan(&c.ID, &c.User, &c.EventID, &at); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		if c.Time, err = parseTime(at); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}
	return list, nil
}

func (s *SqlStore) loadUsers() ([]experiment.User, error) {
	rows, err := s.db.Query(
		`SELECT id, username, grp, time_begin, time_end, events,
		        questionnaire_complete, training_complete, experiment_complete, survey_complete, completion_code
		 FROM user ORDER BY id, username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []experiment.User
	for rows.Next() {
		var u experiment.User
		var begin, end, code sql.NullString
		var events string
		if err := rows.Scan(&u.ID, &u.Username, &u.Group, &begin, &end, &events,
			&u.QuestionnaireComplete, &u.TrainingComplete, &u.ExperimentComplete, &u.SurveyComplete, &code); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.Begin, err = parseNullTime(begin); err != nil {
			return nil, err
		}
		if u.End, err = parseNullTime(end); err != nil {
			return nil, err
		}
		if u.Events, err = experiment.ParseEventList(events); err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Username, err)
		}
		u.CompletionCode = nullStr(code)
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

func (s *SqlStore) loadPrequestionnaires() ([]experiment.Prequestionnaire, error) {
	rows, err := s.db.Query(
		`SELECT timestamp, user, role, exp_researcher, exp_admin, exp_software, exp_security,
		        familiarity_none, familiarity_read, familiarity_controlled, familiarity_public, familiarity_engineered,
		        subnet_mask, network_address, tcp_faster, http_port, firewall, socket, which_model
		 FROM prequestionnaire_answers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list prequestionnaires: %w", err)
	}
	defer rows.Close()
	var list []experiment.Prequestionnaire
	for rows.Next() {
		var p experiment.Prequestionnaire
		var ts sql.NullString
		var text [12]sql.NullString
		if err := rows.Scan(&ts, &p.User, &text[0], &text[1], &text[2], &text[3], &text[4],
			&p.FamiliarityNone, &p.FamiliarityRead, &p.FamiliarityControlled, &p.FamiliarityPublic, &p.FamiliarityEngineered,
			&text[5], &text[6], &text[7], &text[8], &text[9], &text[10], &text[11]); err != nil {
			return nil, fmt.Errorf("scan prequestionnaire: %w", err)
		}
		if t, err := parseNullTime(ts); err != nil {
			return nil, err
		} else if t != nil {
			p.Timestamp = *t
		}
		p.Role = nullStr(text[0])
		p.ExpResearcher, p.ExpAdmin = nullStr(text[1]), nullStr(text[2])
		p.ExpSoftware, p.ExpSecurity = nullStr(text[3]), nullStr(text[4])
		p.SubnetMask, p.NetworkAddress = nullStr(text[5]), nullStr(text[6])
		p.TCPFaster, p.HTTPPort = nullStr(text[7]), nullStr(text[8])
		p.Firewall, p.Socket = nullStr(text[9]), nullStr(text[10])
		p.WhichModel = nullStr(text[11])
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prequestionnaires: %w", err)
	}
	return list, nil
}

func (s *SqlStore) loadSurveys() ([]experiment.Survey, error) {
	rows, err := s.db.Query(
		`SELECT timestamp, user, mental, physical, temporal, performance, effort, frustration, useful_info, feedback
		 FROM survey_answers ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()
	var list []experiment.Survey
	for rows.Next() {
		var sv experiment.Survey
		var ts, useful, feedback sql.NullString
		if err := rows.Scan(&ts, &sv.User, &sv.Mental, &sv.Physical, &sv.Temporal,
			&sv.Performance, &sv.Effort, &sv.Frustration, &useful, &feedback); err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		if t, err := parseNullTime(ts); err != nil {
			return nil, err
		} else if t != nil {
			sv.Timestamp = *t
		}
		sv.UsefulInfo, sv.Feedback = nullStr(useful), nullStr(feedback)
		list = append(list, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return list, nil
}
