package store

// schemaVersionV1 holds only the exported experiment tables.
const schemaVersionV1 = 1

// schemaVersionV2 adds persisted analysis runs.
const schemaVersionV2 = 2

// schemaV1 mirrors the tables of the experiment web application.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS event (
	id                           INTEGER PRIMARY KEY,
	should_escalate              TEXT NOT NULL,
	country_of_authentication1   TEXT,
	country_of_authentication2   TEXT,
	number_successful_logins1    TEXT,
	number_successful_logins2    TEXT,
	number_failed_logins1        TEXT,
	number_failed_logins2        TEXT,
	source_provider1             TEXT,
	source_provider2             TEXT,
	time_between_authentications TEXT,
	vpn_confidence               TEXT
);

CREATE TABLE IF NOT EXISTS event_decision (
	seq                 INTEGER PRIMARY KEY,
	id                  INTEGER NOT NULL,
	user                TEXT NOT NULL,
	event_id            INTEGER NOT NULL,
	escalate            TEXT NOT NULL,
	confidence          INTEGER,
	time_event_decision TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_clicked (
	seq              INTEGER PRIMARY KEY,
	id               INTEGER NOT NULL,
	user             TEXT NOT NULL,
	event_id         INTEGER NOT NULL,
	time_event_click TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS user (
	id                     INTEGER NOT NULL,
	username               TEXT PRIMARY KEY,
	grp                    INTEGER NOT NULL,
	time_begin             TEXT,
	time_end               TEXT,
	events                 TEXT NOT NULL DEFAULT '',
	questionnaire_complete INTEGER NOT NULL DEFAULT 0,
	training_complete      INTEGER NOT NULL DEFAULT 0,
	experiment_complete    INTEGER NOT NULL DEFAULT 0,
	survey_complete        INTEGER NOT NULL DEFAULT 0,
	completion_code        TEXT
);

CREATE TABLE IF NOT EXISTS prequestionnaire_answers (
	seq                    INTEGER PRIMARY KEY,
	timestamp              TEXT,
	user                   TEXT NOT NULL,
	role                   TEXT,
	exp_researcher         TEXT,
	exp_admin              TEXT,
	exp_software           TEXT,
	exp_security           TEXT,
	familiarity_none       INTEGER NOT NULL DEFAULT 0,
	familiarity_read       INTEGER NOT NULL DEFAULT 0,
	familiarity_controlled INTEGER NOT NULL DEFAULT 0,
	familiarity_public     INTEGER NOT NULL DEFAULT 0,
	familiarity_engineered INTEGER NOT NULL DEFAULT 0,
	subnet_mask            TEXT,
	network_address        TEXT,
	tcp_faster             TEXT,
	http_port              TEXT,
	firewall               TEXT,
	socket                 TEXT,
	which_model            TEXT
);

CREATE TABLE IF NOT EXISTS survey_answers (
	seq         INTEGER PRIMARY KEY,
	timestamp   TEXT,
	user        TEXT NOT NULL,
	mental      INTEGER NOT NULL,
	physical    INTEGER NOT NULL,
	temporal    INTEGER NOT NULL,
	performance INTEGER NOT NULL,
	effort      INTEGER NOT NULL,
	frustration INTEGER NOT NULL,
	useful_info TEXT,
	feedback    TEXT
);
`

// schemaRunsV2 is the DDL added by v2.
var schemaRunsV2 = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	experiment  TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	time_cutoff REAL
);

CREATE TABLE IF NOT EXISTS user_results (
	run_id          INTEGER NOT NULL REFERENCES runs(id),
	pos             INTEGER NOT NULL,
	username        TEXT NOT NULL,
	grp             INTEGER NOT NULL,
	time_on_task    REAL,
	low_time        INTEGER NOT NULL,
	decision_count  INTEGER NOT NULL,
	assigned_events INTEGER NOT NULL,
	mean_confidence REAL,
	tp              INTEGER NOT NULL,
	fp              INTEGER NOT NULL,
	tn              INTEGER NOT NULL,
	fn              INTEGER NOT NULL,
	undecided       INTEGER NOT NULL,
	sensitivity     REAL,
	specificity     REAL,
	precision       REAL,
	correctness     REAL,
	experience      TEXT,
	knowledge_score REAL,
	check_score     REAL,
	mental          REAL,
	physical        REAL,
	temporal        REAL,
	performance     REAL,
	effort          REAL,
	frustration     REAL,
	raw_tlx         REAL,
	mean_latency    REAL,
	PRIMARY KEY (run_id, username)
);

CREATE TABLE IF NOT EXISTS user_outcomes (
	run_id   INTEGER NOT NULL REFERENCES runs(id),
	username TEXT NOT NULL,
	event_id INTEGER NOT NULL,
	label    TEXT NOT NULL,
	PRIMARY KEY (run_id, username, event_id)
);

CREATE TABLE IF NOT EXISTS run_incomplete (
	run_id   INTEGER NOT NULL REFERENCES runs(id),
	username TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS item_stats (
	run_id         INTEGER NOT NULL REFERENCES runs(id),
	event_id       INTEGER NOT NULL,
	truth          TEXT NOT NULL,
	grp            INTEGER NOT NULL,
	labeled        INTEGER NOT NULL,
	correct        INTEGER NOT NULL,
	difficulty     REAL,
	discrimination REAL,
	high           INTEGER NOT NULL,
	too_easy       INTEGER NOT NULL,
	too_hard       INTEGER NOT NULL,
	PRIMARY KEY (run_id, event_id, grp)
);
`

// schemaV2 is the fresh-install DDL.
var schemaV2 = schemaV1 + schemaRunsV2
