// Package experiment defines the records exported from the Cry Wolf web
// application: alert events, per-event decisions and clicks, users, and the
// two questionnaires. Records are plain values; analysis stages never mutate
// a Dataset they are given.
package experiment

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Choice is an analyst's answer to an alert, stored as the raw string the
// web application recorded. Ground truth is expressed with the same type,
// restricted to Escalate and DontEscalate.
type Choice string

const (
	Escalate     Choice = "Escalate"
	DontEscalate Choice = "Don't escalate"
	DontKnow     Choice = "I don't know"
)

// Valid reports whether c is one of the three recorded answers.
func (c Choice) Valid() bool {
	switch c {
	case Escalate, DontEscalate, DontKnow:
		return true
	}
	return false
}

// Event is one security alert shown to participants. Descriptive attributes
// are kept as exported strings; the analysis only reads ID and Truth.
type Event struct {
	ID int `json:"id"`

	// ShouldEscalate is the raw ground-truth code: "1" true alarm, "0" false alarm.
	ShouldEscalate string `json:"should_escalate"`

	// Truth is the recoded ground truth, set by normalization.
	Truth Choice `json:"truth,omitempty"`

	Country1                   string `json:"country_of_authentication1,omitempty"`
	Country2                   string `json:"country_of_authentication2,omitempty"`
	SuccessfulLogins1          string `json:"number_successful_logins1,omitempty"`
	SuccessfulLogins2          string `json:"number_successful_logins2,omitempty"`
	FailedLogins1              string `json:"number_failed_logins1,omitempty"`
	FailedLogins2              string `json:"number_failed_logins2,omitempty"`
	SourceProvider1            string `json:"source_provider1,omitempty"`
	SourceProvider2            string `json:"source_provider2,omitempty"`
	TimeBetweenAuthentications string `json:"time_between_authentications,omitempty"`
	VPNConfidence              string `json:"vpn_confidence,omitempty"`
}

// Decision is one submitted answer. A user may answer the same event
// several times; Seq preserves the original load order for tie-breaks.
type Decision struct {
	ID         int       `json:"id"`
	User       string    `json:"user"`
	EventID    int       `json:"event_id"`
	Choice     Choice    `json:"escalate"`
	Confidence *int      `json:"confidence,omitempty"`
	Time       time.Time `json:"time_event_decision"`
	Seq        int       `json:"seq"`
}

// Click records a user opening an event's detail view.
type Click struct {
	ID      int       `json:"id"`
	User    string    `json:"user"`
	EventID int       `json:"event_id"`
	Time    time.Time `json:"time_event_click"`
	Seq     int       `json:"seq"`
}

// User is one participant session.
type User struct {
	ID                    int        `json:"id"`
	Username              string     `json:"username"`
	Group                 int        `json:"group"`
	Begin                 *time.Time `json:"time_begin,omitempty"`
	End                   *time.Time `json:"time_end,omitempty"`
	Events                []int      `json:"events,omitempty"`
	QuestionnaireComplete bool       `json:"questionnaire_complete"`
	TrainingComplete      bool       `json:"training_complete"`
	ExperimentComplete    bool       `json:"experiment_complete"`
	SurveyComplete        bool       `json:"survey_complete"`
	CompletionCode        string     `json:"completion_code,omitempty"`
}

// TimeOnTask returns End - Begin. ok is false when either timestamp is missing.
func (u User) TimeOnTask() (d time.Duration, ok bool) {
	if u.Begin == nil || u.End == nil {
		return 0, false
	}
	return u.End.Sub(*u.Begin), true
}

// Prequestionnaire is a user's background questionnaire.
type Prequestionnaire struct {
	Timestamp     time.Time `json:"timestamp"`
	User          string    `json:"user"`
	Role          string    `json:"role"`
	ExpResearcher string    `json:"exp_researcher"`
	ExpAdmin      string    `json:"exp_admin"`
	ExpSoftware   string    `json:"exp_software"`
	ExpSecurity   string    `json:"exp_security"`

	FamiliarityNone       bool `json:"familiarity_none"`
	FamiliarityRead       bool `json:"familiarity_read"`
	FamiliarityControlled bool `json:"familiarity_controlled"`
	FamiliarityPublic     bool `json:"familiarity_public"`
	FamiliarityEngineered bool `json:"familiarity_engineered"`

	SubnetMask     string `json:"subnet_mask"`
	NetworkAddress string `json:"network_address"`
	TCPFaster      string `json:"tcp_faster"`
	HTTPPort       string `json:"http_port"`
	Firewall       string `json:"firewall"`
	Socket         string `json:"socket"`
	WhichModel     string `json:"which_model"`
}

// Survey is a user's post-task workload questionnaire (NASA-TLX, 1..10 scales).
type Survey struct {
	Timestamp   time.Time `json:"timestamp"`
	User        string    `json:"user"`
	Mental      int       `json:"mental"`
	Physical    int       `json:"physical"`
	Temporal    int       `json:"temporal"`
	Performance int       `json:"performance"`
	Effort      int       `json:"effort"`
	Frustration int       `json:"frustration"`
	UsefulInfo  string    `json:"useful_info,omitempty"`
	Feedback    string    `json:"feedback,omitempty"`
}

// Workload returns the six ratings in questionnaire order.
func (s Survey) Workload() [6]int {
	return [6]int{s.Mental, s.Physical, s.Temporal, s.Performance, s.Effort, s.Frustration}
}

// RawTLX is the unweighted mean of the six workload ratings.
func (s Survey) RawTLX() float64 {
	sum := 0
	for _, r := range s.Workload() {
		sum += r
	}
	return float64(sum) / 6
}

// WorkloadDimensions names the six workload ratings in questionnaire order.
var WorkloadDimensions = [6]string{"mental", "physical", "temporal", "performance", "effort", "frustration"}

// Dataset holds the six exported tables of one experiment run.
type Dataset struct {
	Events            []Event            `json:"events"`
	Decisions         []Decision         `json:"decisions"`
	Clicks            []Click            `json:"clicks"`
	Users             []User             `json:"users"`
	Prequestionnaires []Prequestionnaire `json:"prequestionnaires"`
	Surveys           []Survey           `json:"surveys"`
}

// Resequence assigns Seq to decisions and clicks in their current slice
// order. Loaders call it once after reading a table.
func (d *Dataset) Resequence() {
	for i := range d.Decisions {
		d.Decisions[i].Seq = i
	}
	for i := range d.Clicks {
		d.Clicks[i].Seq = i
	}
}

// ParseEventList parses the comma-separated event assignment of a user row.
// Blank entries are skipped.
func ParseEventList(s string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse event list %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FormatEventList is the inverse of ParseEventList.
func FormatEventList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Confidence ratings are integers on a 1..5 scale.
const (
	MinConfidence = 1
	MaxConfidence = 5
)

// ErrBadConfidence is returned for a confidence that is not an integer
// in [MinConfidence, MaxConfidence].
var ErrBadConfidence = errors.New("bad confidence")

// ParseConfidence parses a recorded confidence. Empty input is nil.
// Spreadsheet renderings such as "3.0" are accepted.
func ParseConfidence(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse confidence %q: %w", s, err)
	}
	if f != math.Trunc(f) || f < MinConfidence || f > MaxConfidence {
		return nil, fmt.Errorf("%w: %q (want an integer %d..%d)", ErrBadConfidence, s, MinConfidence, MaxConfidence)
	}
	c := int(f)
	return &c, nil
}
