package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"crywolf/internal/analysis"
	"crywolf/internal/export"
	"crywolf/internal/items"
	"crywolf/internal/report"
	"crywolf/internal/results"
	"crywolf/internal/store"
)

var showFlags struct {
	dir     string
	parquet bool
	dbPath  string
	runID   int64
	format  string
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Re-render saved results without rerunning the pipeline",
	Long: `Print the users and items tables of a previous run.

Results are read from the report.json written by analyze --out-dir, from
its Parquet tables with --parquet, or from a run saved with analyze --db.

Usage:
  crywolf show --dir .crywolf/output
  crywolf show --dir out --parquet --format csv
  crywolf show --db .crywolf/crywolf.db --run 3`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	f := showCmd.Flags()
	f.StringVar(&showFlags.dir, "dir", filepath.Join(".crywolf", "output"), "Output directory of a previous analyze")
	f.BoolVar(&showFlags.parquet, "parquet", false, "Read the users and items Parquet tables instead of report.json")
	f.StringVar(&showFlags.dbPath, "db", "", "Read a saved run from this SQLite store instead of --dir")
	f.Int64Var(&showFlags.runID, "run", 0, "Run ID in the store (0 = latest)")
	f.StringVar(&showFlags.format, "format", "ascii", "Output format: ascii, markdown, csv")
	showCmd.MarkFlagsMutuallyExclusive("parquet", "db")
}

func runShow(cmd *cobra.Command, _ []string) error {
	mode, err := parseMode(showFlags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var (
		users *results.Table
		its   []items.Item
		rep   *analysis.Report
	)
	switch {
	case showFlags.dbPath != "":
		users, its, err = showFromStore(showFlags.dbPath, showFlags.runID)
	case showFlags.parquet:
		users, its, err = showFromParquet(showFlags.dir)
	default:
		rep, err = showFromJSON(showFlags.dir)
		if rep != nil {
			users, its = rep.Users, rep.Items.Items
		}
	}
	if err != nil {
		return err
	}

	out := report.Users(mode, cfg, users) + "\n\n" + report.ItemTable(mode, cfg, its)
	if rep != nil {
		out += "\n\n" + report.Comparisons(mode, rep.Comparisons)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func showFromStore(path string, id int64) (*results.Table, []items.Item, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if id == 0 {
		if id, err = st.LatestRunID(); err != nil {
			return nil, nil, err
		}
		if id == 0 {
			return nil, nil, errors.New("no runs saved in " + path)
		}
	}
	run, err := st.GetRun(id)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, fmt.Errorf("run %d not found in %s", id, path)
	}
	return run.Users, run.Items, nil
}

func showFromParquet(dir string) (*results.Table, []items.Item, error) {
	urows, err := export.ReadParquet[export.UserRow](filepath.Join(dir, export.UsersFile))
	if err != nil {
		return nil, nil, err
	}
	irows, err := export.ReadParquet[export.ItemRow](filepath.Join(dir, export.ItemsFile))
	if err != nil {
		return nil, nil, err
	}
	tbl := &results.Table{Users: make([]results.UserResult, len(urows))}
	for i, r := range urows {
		tbl.Users[i] = r.Result()
	}
	return tbl, export.Items(irows), nil
}

func showFromJSON(dir string) (*analysis.Report, error) {
	var rep analysis.Report
	if err := export.ReadJSON(filepath.Join(dir, export.ReportFile), &rep); err != nil {
		return nil, err
	}
	if rep.Users == nil {
		return nil, fmt.Errorf("%s has no users table", export.ReportFile)
	}
	return &rep, nil
}

