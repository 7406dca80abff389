package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"crywolf/internal/analysis"
	"crywolf/internal/config"
	"crywolf/internal/confusion"
	"crywolf/internal/logging"
	"crywolf/internal/measure"
	"crywolf/internal/sample"
)

func openTemp(t *testing.T, name string) *SqlStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSqlStore_DatasetRoundTrip(t *testing.T) {
	s := openTemp(t, "dataset.db")
	want := sample.Dataset()

	if err := s.SaveDataset(want); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}
	got, err := s.LoadDataset()
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}

	// a second import replaces the first
	small := sample.Dataset()
	small.Decisions = small.Decisions[:3]
	if err := s.SaveDataset(small); err != nil {
		t.Fatalf("SaveDataset again: %v", err)
	}
	got, err = s.LoadDataset()
	if err != nil {
		t.Fatalf("LoadDataset again: %v", err)
	}
	if len(got.Decisions) != 3 || len(got.Users) != len(small.Users) {
		t.Errorf("reimport: got %d decisions %d users", len(got.Decisions), len(got.Users))
	}
}

func TestSqlStore_RunRoundTrip(t *testing.T) {
	s := openTemp(t, "runs.db")

	if id, err := s.LatestRunID(); err != nil || id != 0 {
		t.Fatalf("LatestRunID on empty store: got %d err %v", id, err)
	}
	if run, err := s.GetRun(42); err != nil || run != nil {
		t.Fatalf("GetRun(42): got %+v err %v", run, err)
	}

	rep, err := analysis.Run(config.Default(), sample.Dataset(), logging.Discard())
	if err != nil {
		t.Fatalf("analysis.Run: %v", err)
	}
	first, err := s.SaveRun(rep.Experiment, rep.Users, rep.Items.Items)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	second, err := s.SaveRun(rep.Experiment, rep.Users, rep.Items.Items)
	if err != nil {
		t.Fatalf("SaveRun again: %v", err)
	}
	if second <= first {
		t.Errorf("run ids not increasing: %d then %d", first, second)
	}
	latest, err := s.LatestRunID()
	if err != nil || latest != second {
		t.Fatalf("LatestRunID: got %d err %v, want %d", latest, err, second)
	}

	run, err := s.GetRun(first)
	if err != nil || run == nil {
		t.Fatalf("GetRun: got %+v err %v", run, err)
	}
	if run.Experiment != "cry-wolf" || run.CreatedAt == "" {
		t.Errorf("run header: experiment %q created %q", run.Experiment, run.CreatedAt)
	}
	opts := cmp.AllowUnexported(measure.Value{}, confusion.Outcomes{})
	if diff := cmp.Diff(rep.Users, run.Users, opts); diff != "" {
		t.Errorf("results table mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(rep.Items.Items, run.Items, opts); diff != "" {
		t.Errorf("item stats mismatch (-want +got):\n%s", diff)
	}
}

func TestSqlStore_SaveRunRejectsNilTable(t *testing.T) {
	s := openTemp(t, "nil.db")
	if _, err := s.SaveRun("x", nil, nil); err == nil {
		t.Fatal("SaveRun(nil) succeeded")
	}
}

func TestSqlStore_FreshInstall(t *testing.T) {
	s := openTemp(t, "fresh.db")
	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != currentSchemaVersion {
		t.Errorf("schema version: got %d want %d", v, currentSchemaVersion)
	}
}

// TestSqlStore_Migration opens an import-only v1 database and expects the
// run tables to be added with the imported rows preserved.
func TestSqlStore_Migration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")
	createV1DB(t, path)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open (migration): %v", err)
	}
	defer s.Close()

	v, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != schemaVersionV2 {
		t.Errorf("schema version: got %d want %d", v, schemaVersionV2)
	}

	ds, err := s.LoadDataset()
	if err != nil {
		t.Fatalf("LoadDataset after migration: %v", err)
	}
	if len(ds.Events) != 1 || ds.Events[0].ID != 7 || ds.Events[0].ShouldEscalate != "1" {
		t.Errorf("migrated events: got %+v", ds.Events)
	}

	if id, err := s.LatestRunID(); err != nil || id != 0 {
		t.Errorf("LatestRunID after migration: got %d err %v", id, err)
	}
}

// createV1DB writes a v1 database holding one event.
func createV1DB(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(schemaV1); err != nil {
		t.Fatalf("create v1 schema: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version(version) VALUES(1)"); err != nil {
		t.Fatalf("insert v1 version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO event(id, should_escalate) VALUES(7, '1')"); err != nil {
		t.Fatalf("insert v1 event: %v", err)
	}
}
