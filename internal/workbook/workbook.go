// Package workbook reads the .xlsx dump of the experiment database and
// writes dataset and results workbooks.
//
// Each table lives on its own sheet with a header row naming the columns.
// Columns are matched by header name, so column order in the file does not
// matter, but every required column must be present.
package workbook

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Sheet names as exported by the experiment database dump.
const (
	SheetEvent            = "Event"
	SheetEventDecision    = "EventDecision"
	SheetEventClicked     = "EventClicked"
	SheetUser             = "User"
	SheetPrequestionnaire = "PrequestionnaireAnswer"
	SheetSurvey           = "SurveyAnswer"
)

// Sheet names of a results workbook.
const (
	SheetUsers       = "Users"
	SheetItems       = "Items"
	SheetComparisons = "Comparisons"
)

var (
	ErrMissingSheet  = errors.New("workbook: missing sheet")
	ErrMissingColumn = errors.New("workbook: missing column")
)

var (
	eventColumns = []string{
		"id", "should_escalate",
		"country_of_authentication1", "number_successful_logins1", "number_failed_logins1", "source_provider1",
		"country_of_authentication2", "number_successful_logins2", "number_failed_logins2", "source_provider2",
		"time_between_authentications", "vpn_confidence",
	}
	decisionColumns = []string{"id", "user", "event_id", "escalate", "confidence", "time_event_decision"}
	clickColumns    = []string{"id", "user", "event_id", "time_event_click"}
	userColumns     = []string{
		"id", "username", "group", "time_begin", "time_end", "events",
		"questionnaire_complete", "training_complete", "experiment_complete", "survey_complete", "completion_code",
	}
	prequestionnaireColumns = []string{
		"id", "timestamp", "user", "role", "exp_researcher", "exp_admin", "exp_software", "exp_security",
		"familiarity_none", "familiarity_read", "familiarity_controlled", "familiarity_public", "familiarity_engineered",
		"subnet_mask", "network_address", "tcp_faster", "http_port", "firewall", "socket", "which_model",
	}
	surveyColumns = []string{
		"id", "timestamp", "user", "mental", "physical", "temporal", "performance", "effort", "frustration",
		"useful_info", "feedback",
	}
)

// required lists the columns the analysis reads from each sheet. The
// remaining columns are carried along when present.
var required = map[string][]string{
	SheetEvent:            {"id", "should_escalate"},
	SheetEventDecision:    {"user", "event_id", "escalate", "time_event_decision"},
	SheetEventClicked:     {"user", "event_id", "time_event_click"},
	SheetUser:             {"username", "group", "time_begin", "time_end"},
	SheetPrequestionnaire: {"user", "subnet_mask", "network_address", "tcp_faster", "http_port", "firewall", "socket", "which_model"},
	SheetSurvey:           {"user", "mental", "physical", "temporal", "performance", "effort", "frustration"},
}

// table is one sheet with its header index.
type table struct {
	name  string
	cols  map[string]int
	rows  [][]string
	lines []int // 1-based sheet row of each entry in rows
}

func newTable(name string, rows [][]string) (*table, error) {
	t := &table{name: name, cols: map[string]int{}}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s has no header row", ErrMissingColumn, name)
	}
	for i, h := range rows[0] {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			t.cols[h] = i
		}
	}
	for _, c := range required[name] {
		if _, ok := t.cols[c]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingColumn, name, c)
		}
	}
	for i, r := range rows[1:] {
		if blank(r) {
			continue
		}
		t.rows = append(t.rows, r)
		t.lines = append(t.lines, i+2)
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell returns the trimmed value of column col, or "" when the
// column is absent or the row is short.
func (t *table) cell(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) intAt(row []string, col string, line int) (int, error) {
	s := t.cell(row, col)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil {
		return n, nil
	}
	// numeric cells can come back as "3.0"
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%s row %d: %s %q is not an integer", t.name, line, col, s)
	}
	return int(f), nil
}

func (t *table) boolAt(row []string, col string, line int) (bool, error) {
	s := t.cell(row, col)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s row %d: %s %q is not a boolean", t.name, line, col, s)
	}
	return b, nil
}

func (t *table) timeAt(row []string, col string, line int) (*time.Time, error) {
	s := t.cell(row, col)
	if s == "" {
		return nil, nil
	}
	at, err := ParseTime(s)
	if err != nil {
		return nil, fmt.Errorf("%s row %d: %s: %w", t.name, line, col, err)
	}
	return &at, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/06 15:04",
}

// ParseTime accepts an Excel serial date or one of the text layouts the
// database dump has used. Zoneless values are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse serial date %q: %w", s, err)
		}
		return t.UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse time %q: unknown layout", s)
}

// FormatTime is the text form WriteDataset stores timestamps in.
func FormatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
