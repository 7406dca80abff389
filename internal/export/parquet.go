package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"crywolf/internal/confusion"
	"crywolf/internal/experience"
	"crywolf/internal/experiment"
	"crywolf/internal/items"
	"crywolf/internal/measure"
	"crywolf/internal/results"
)

// UserRow is one results-table row in columnar form. NA measures are null.
type UserRow struct {
	Username       string   `parquet:"username"`
	Group          int64    `parquet:"group"`
	LowTime        bool     `parquet:"low_time"`
	TimeOnTask     *float64 `parquet:"time_on_task,optional"`
	DecisionCount  int64    `parquet:"decision_count"`
	AssignedEvents int64    `parquet:"assigned_events"`
	MeanConfidence *float64 `parquet:"mean_confidence,optional"`
	TP             int64    `parquet:"tp"`
	FP             int64    `parquet:"fp"`
	TN             int64    `parquet:"tn"`
	FN             int64    `parquet:"fn"`
	Undecided      int64    `parquet:"undecided"`
	Sensitivity    *float64 `parquet:"sensitivity,optional"`
	Specificity    *float64 `parquet:"specificity,optional"`
	Precision      *float64 `parquet:"precision,optional"`
	Correctness    *float64 `parquet:"correctness,optional"`
	Experience     string   `parquet:"experience"`
	KnowledgeScore *float64 `parquet:"knowledge_score,optional"`
	CheckScore     *float64 `parquet:"check_score,optional"`
	Mental         *float64 `parquet:"mental,optional"`
	Physical       *float64 `parquet:"physical,optional"`
	Temporal       *float64 `parquet:"temporal,optional"`
	Performance    *float64 `parquet:"performance,optional"`
	Effort         *float64 `parquet:"effort,optional"`
	Frustration    *float64 `parquet:"frustration,optional"`
	RawTLX         *float64 `parquet:"raw_tlx,optional"`
	MeanLatency    *float64 `parquet:"mean_latency,optional"`
}

// ItemRow is one event's statistics within one group.
type ItemRow struct {
	EventID        int64    `parquet:"event_id"`
	Truth          string   `parquet:"truth"`
	Group          int64    `parquet:"group"`
	Labeled        int64    `parquet:"labeled"`
	Correct        int64    `parquet:"correct"`
	Difficulty     *float64 `parquet:"difficulty,optional"`
	Discrimination *float64 `parquet:"discrimination,optional"`
	High           bool     `parquet:"high_discrimination"`
	TooEasy        bool     `parquet:"too_easy"`
	TooHard        bool     `parquet:"too_hard"`
}

// UserRows flattens a results table.
func UserRows(tbl *results.Table) []UserRow {
	rows := make([]UserRow, len(tbl.Users))
	for i, u := range tbl.Users {
		rows[i] = UserRow{
			Username:       u.Username,
			Group:          int64(u.Group),
			LowTime:        u.LowTime,
			TimeOnTask:     u.TimeOnTask.Ptr(),
			DecisionCount:  int64(u.DecisionCount),
			AssignedEvents: int64(u.AssignedEvents),
			MeanConfidence: u.MeanConfidence.Ptr(),
			TP:             int64(u.Counts.TP),
			FP:             int64(u.Counts.FP),
			TN:             int64(u.Counts.TN),
			FN:             int64(u.Counts.FN),
			Undecided:      int64(u.Counts.Undecided),
			Sensitivity:    u.Sensitivity.Ptr(),
			Specificity:    u.Specificity.Ptr(),
			Precision:      u.Precision.Ptr(),
			Correctness:    u.Correctness.Ptr(),
			Experience:     string(u.Experience),
			KnowledgeScore: u.KnowledgeScore.Ptr(),
			CheckScore:     u.CheckScore.Ptr(),
			Mental:         u.Workload[0].Ptr(),
			Physical:       u.Workload[1].Ptr(),
			Temporal:       u.Workload[2].Ptr(),
			Performance:    u.Workload[3].Ptr(),
			Effort:         u.Workload[4].Ptr(),
			Frustration:    u.Workload[5].Ptr(),
			RawTLX:         u.RawTLX.Ptr(),
			MeanLatency:    u.MeanLatency.Ptr(),
		}
	}
	return rows
}

// Result rebuilds a UserResult. Per-event outcomes are not part of the row.
func (r UserRow) Result() results.UserResult {
	return results.UserResult{
		Username:       r.Username,
		Group:          int(r.Group),
		LowTime:        r.LowTime,
		TimeOnTask:     measure.FromPtr(r.TimeOnTask),
		DecisionCount:  int(r.DecisionCount),
		AssignedEvents: int(r.AssignedEvents),
		MeanConfidence: measure.FromPtr(r.MeanConfidence),
		Counts: confusion.Counts{
			TP: int(r.TP), FP: int(r.FP), TN: int(r.TN), FN: int(r.FN), Undecided: int(r.Undecided),
		},
		Sensitivity:    measure.FromPtr(r.Sensitivity),
		Specificity:    measure.FromPtr(r.Specificity),
		Precision:      measure.FromPtr(r.Precision),
		Correctness:    measure.FromPtr(r.Correctness),
		Experience:     experience.Group(r.Experience),
		KnowledgeScore: measure.FromPtr(r.KnowledgeScore),
		CheckScore:     measure.FromPtr(r.CheckScore),
		Workload: [6]measure.Value{
			measure.FromPtr(r.Mental), measure.FromPtr(r.Physical), measure.FromPtr(r.Temporal),
			measure.FromPtr(r.Performance), measure.FromPtr(r.Effort), measure.FromPtr(r.Frustration),
		},
		RawTLX:      measure.FromPtr(r.RawTLX),
		MeanLatency: measure.FromPtr(r.MeanLatency),
	}
}

// ItemRows flattens the item table, one row per event and group.
func ItemRows(its []items.Item) []ItemRow {
	var rows []ItemRow
	for _, it := range its {
		for _, gi := range it.Groups {
			rows = append(rows, ItemRow{
				EventID:        int64(it.EventID),
				Truth:          string(it.Truth),
				Group:          int64(gi.Group),
				Labeled:        int64(gi.Labeled),
				Correct:        int64(gi.Correct),
				Difficulty:     gi.Difficulty.Ptr(),
				Discrimination: gi.Discrimination.Ptr(),
				High:           gi.High,
				TooEasy:        gi.TooEasy,
				TooHard:        gi.TooHard,
			})
		}
	}
	return rows
}

// Items regroups item rows by event, keeping row order.
func Items(rows []ItemRow) []items.Item {
	var out []items.Item
	for _, r := range rows {
		if n := len(out); n == 0 || out[n-1].EventID != int(r.EventID) {
			out = append(out, items.Item{EventID: int(r.EventID), Truth: experiment.Choice(r.Truth)})
		}
		last := &out[len(out)-1]
		last.Groups = append(last.Groups, items.GroupItem{
			Group:          int(r.Group),
			Labeled:        int(r.Labeled),
			Correct:        int(r.Correct),
			Difficulty:     measure.FromPtr(r.Difficulty),
			Discrimination: measure.FromPtr(r.Discrimination),
			High:           r.High,
			TooEasy:        r.TooEasy,
			TooHard:        r.TooHard,
		})
	}
	return out
}

// WriteParquet writes rows to path.
func WriteParquet[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	w := parquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("export: close writer %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	return nil
}

// ReadParquet reads every row of path.
func ReadParquet[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("export: read %s: %w", path, err)
	}
	return rows, nil
}
