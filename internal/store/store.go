package store

import (
	"crywolf/internal/experiment"
	"crywolf/internal/items"
	"crywolf/internal/results"
)

// DefaultDBPath is the default relative path for the SQLite DB.
// Open() creates the parent dir (e.g. .crywolf).
const DefaultDBPath = ".crywolf/crywolf.db"

// Run is one persisted analysis run.
type Run struct {
	ID         int64
	Experiment string
	CreatedAt  string
	Users      *results.Table
	Items      []items.Item
}

// Store is the persistence facade: the six experiment tables plus analysis
// runs. The CLI uses only this interface.
type Store interface {
	// SaveDataset replaces the stored experiment tables with ds.
	SaveDataset(ds experiment.Dataset) error
	// LoadDataset returns the stored tables, decisions and clicks in load order.
	LoadDataset() (experiment.Dataset, error)

	// SaveRun persists a results table and item analysis and returns the run id.
	SaveRun(experiment string, users *results.Table, items []items.Item) (int64, error)
	// GetRun returns a run by id, or nil if it does not exist.
	GetRun(id int64) (*Run, error)
	// LatestRunID returns the newest run id, or 0 if none.
	LatestRunID() (int64, error)

	Close() error
}
