package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"crywolf/internal/confusion"
	"crywolf/internal/experience"
	"crywolf/internal/experiment"
	"crywolf/internal/items"
	"crywolf/internal/results"
)

// SaveRun persists a results table and its item analysis as a new run.
func (s *SqlStore) SaveRun(experimentName string, users *results.Table, its []items.Item) (int64, error) {
	if users == nil {
		return 0, errors.New("save run: nil results table")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec("INSERT INTO runs(experiment, created_at, time_cutoff) VALUES(?, ?, ?)",
		experimentName, nowUTC(), valueArg(users.TimeCutoff))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for pos, u := range users.Users {
		args := []any{
			id, pos, u.Username, u.Group, valueArg(u.TimeOnTask), boolArg(u.LowTime),
			u.DecisionCount, u.AssignedEvents, valueArg(u.MeanConfidence),
			u.Counts.TP, u.Counts.FP, u.Counts.TN, u.Counts.FN, u.Counts.Undecided,
			valueArg(u.Sensitivity), valueArg(u.Specificity), valueArg(u.Precision), valueArg(u.Correctness),
			string(u.Experience), valueArg(u.KnowledgeScore), valueArg(u.CheckScore),
		}
		for _, w := range u.Workload {
			args = append(args, valueArg(w))
		}
		args = append(args, valueArg(u.RawTLX), valueArg(u.MeanLatency))
		_, err := tx.Exec(
			`INSERT INTO user_results(run_id, pos, username, grp, time_on_task, low_time,
			   decision_count, assigned_events, mean_confidence, tp, fp, tn, fn, undecided,
			   sensitivity, specificity, precision, correctness, experience, knowledge_score, check_score,
			   mental, physical, temporal, performance, effort, frustration, raw_tlx, mean_latency)
			 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			args...,
		)
		if err != nil {
			return 0, fmt.Errorf("insert result of %s: %w", u.Username, err)
		}
		for _, eventID := range u.Outcomes.EventIDs() {
			_, err := tx.Exec("INSERT INTO user_outcomes(run_id, username, event_id, label) VALUES(?, ?, ?, ?)",
				id, u.Username, eventID, u.Outcomes.Label(eventID).String())
			if err != nil {
				return 0, fmt.Errorf("insert outcome of %s: %w", u.Username, err)
			}
		}
	}

	for _, name := range users.Incomplete {
		if _, err := tx.Exec("INSERT INTO run_incomplete(run_id, username) VALUES(?, ?)", id, name); err != nil {
			return 0, fmt.Errorf("insert incomplete user: %w", err)
		}
	}

	for _, it := range its {
		for _, gi := range it.Groups {
			_, err := tx.Exec(
				`INSERT INTO item_stats(run_id, event_id, truth, grp, labeled, correct,
				   difficulty, discrimination, high, too_easy, too_hard)
				 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, it.EventID, string(it.Truth), gi.Group, gi.Labeled, gi.Correct,
				valueArg(gi.Difficulty), valueArg(gi.Discrimination),
				boolArg(gi.High), boolArg(gi.TooEasy), boolArg(gi.TooHard),
			)
			if err != nil {
				return 0, fmt.Errorf("insert item %d: %w", it.EventID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run tx: %w", err)
	}
	return id, nil
}

// GetRun reads back a run. Users keep their saved order and outcomes.
func (s *SqlStore) GetRun(id int64) (*Run, error) {
	run := &Run{ID: id, Users: &results.Table{}}
	var cutoff sql.NullFloat64
	err := s.db.QueryRow("SELECT experiment, created_at, time_cutoff FROM runs WHERE id = ?", id).
		Scan(&run.Experiment, &run.CreatedAt, &cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	run.Users.TimeCutoff = nullValue(cutoff)

	outcomes, err := s.runOutcomes(id)
	if err != nil {
		return nil, err
	}
	if run.Users.Users, err = s.runUsers(id, outcomes); err != nil {
		return nil, err
	}

	seen := map[int]bool{}
	for _, m := range outcomes {
		for eventID := range m {
			seen[eventID] = true
		}
	}
	for eventID := range seen {
		run.Users.EventIDs = append(run.Users.EventIDs, eventID)
	}
	sort.Ints(run.Users.EventIDs)

	if run.Users.Incomplete, err = s.runIncomplete(id); err != nil {
		return nil, err
	}
	if run.Items, err = s.runItems(id); err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRunID returns the newest run id, or 0 when no run was saved.
func (s *SqlStore) LatestRunID() (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(id) FROM runs").Scan(&id); err != nil {
		return 0, fmt.Errorf("latest run: %w", err)
	}
	if !id.Valid {
		return 0, nil
	}
	return id.Int64, nil
}

func (s *SqlStore) runOutcomes(id int64) (map[string]map[int]confusion.Label, error) {
	rows, err := s.db.Query("SELECT username, event_id, label FROM user_outcomes WHERE run_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()
	out := map[string]map[int]confusion.Label{}
	for rows.Next() {
		var user, label string
		var eventID int
		if err := rows.Scan(&user, &eventID, &label); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		l, err := confusion.ParseLabel(label)
		if err != nil {
			return nil, fmt.Errorf("outcome of %s on %d: %w", user, eventID, err)
		}
		if out[user] == nil {
			out[user] = map[int]confusion.Label{}
		}
		out[user][eventID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return out, nil
}

func (s *SqlStore) runUsers(id int64, outcomes map[string]map[int]confusion.Label) ([]results.UserResult, error) {
	rows, err := s.db.Query(
		`SELECT username, grp, time_on_task, low_time, decision_count, assigned_events, mean_confidence,
		        tp, fp, tn, fn, undecided, sensitivity, specificity, precision, correctness,
		        experience, knowledge_score, check_score,
		        mental, physical, temporal, performance, effort, frustration, raw_tlx, mean_latency
		 FROM user_results WHERE run_id = ? ORDER BY pos`, id)
	if err != nil {
		return nil, fmt.Errorf("list user results: %w", err)
	}
	defer rows.Close()
	var list []results.UserResult
	for rows.Next() {
		var u results.UserResult
		var tot, conf, se, sp, pr, co, ks, cs, tlx, lat sql.NullFloat64
		var work [6]sql.NullFloat64
		var exp sql.NullString
		if err := rows.Scan(&u.Username, &u.Group, &tot, &u.LowTime, &u.DecisionCount, &u.AssignedEvents, &conf,
			&u.Counts.TP, &u.Counts.FP, &u.Counts.TN, &u.Counts.FN, &u.Counts.Undecided,
			&se, &sp, &pr, &co, &exp, &ks, &cs,
			&work[0], &work[1], &work[2], &work[3], &work[4], &work[5], &tlx, &lat); err != nil {
			return nil, fmt.Errorf("scan user result: %w", err)
		}
		u.TimeOnTask, u.MeanConfidence = nullValue(tot), nullValue(conf)
		u.Sensitivity, u.Specificity = nullValue(se), nullValue(sp)
		u.Precision, u.Correctness = nullValue(pr), nullValue(co)
		u.Experience = experience.Group(nullStr(exp))
		u.KnowledgeScore, u.CheckScore = nullValue(ks), nullValue(cs)
		for i, w := range work {
			u.Workload[i] = nullValue(w)
		}
		u.RawTLX, u.MeanLatency = nullValue(tlx), nullValue(lat)
		u.Outcomes = confusion.OutcomesFrom(outcomes[u.Username])
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list user results: %w", err)
	}
	return list, nil
}

func (s *SqlStore) runIncomplete(id int64) ([]string, error) {
	rows, err := s.db.Query("SELECT username FROM run_incomplete WHERE run_id = ? ORDER BY rowid", id)
	if err != nil {
		return nil, fmt.Errorf("list incomplete users: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan incomplete user: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SqlStore) runItems(id int64) ([]items.Item, error) {
	rows, err := s.db.Query(
		`SELECT event_id, truth, grp, labeled, correct, difficulty, discrimination, high, too_easy, too_hard
		 FROM item_stats WHERE run_id = ? ORDER BY event_id, grp`, id)
	if err != nil {
		return nil, fmt.Errorf("list item stats: %w", err)
	}
	defer rows.Close()
	var list []items.Item
	for rows.Next() {
		var eventID int
		var truth string
		var gi items.GroupItem
		var diff, disc sql.NullFloat64
		if err := rows.Scan(&eventID, &truth, &gi.Group, &gi.Labeled, &gi.Correct,
			&diff, &disc, &gi.High, &gi.TooEasy, &gi.TooHard); err != nil {
			return nil, fmt.Errorf("scan item stats: %w", err)
		}
		gi.Difficulty, gi.Discrimination = nullValue(diff), nullValue(disc)
		if n := len(list); n == 0 || list[n-1].EventID != eventID {
			list = append(list, items.Item{EventID: eventID, Truth: experiment.Choice(truth)})
		}
		last := &list[len(list)-1]
		last.Groups = append(last.Groups, gi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list item stats: %w", err)
	}
	return list, nil
}
