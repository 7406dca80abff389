package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"crywolf/internal/store"
	"crywolf/internal/workbook"
)

var importFlags struct {
	input  string
	dbPath string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load an exported workbook into the SQLite store",
	Long: `Read the six experiment tables from an .xlsx dump and replace the
tables held in the SQLite store. Analysis runs saved earlier are kept.

Usage:
  crywolf import --input dump.xlsx
  crywolf import --input dump.xlsx --db pilot.db`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importFlags.input, "input", "", "Workbook dump (.xlsx) (required)")
	f.StringVar(&importFlags.dbPath, "db", store.DefaultDBPath, "Store DB path")
	_ = importCmd.MarkFlagRequired("input")
}

func runImport(cmd *cobra.Command, _ []string) error {
	if ext := strings.ToLower(filepath.Ext(importFlags.input)); ext != ".xlsx" && ext != ".xlsm" {
		return fmt.Errorf("import reads workbooks only, got %q", importFlags.input)
	}
	ds, err := workbook.Read(importFlags.input, nil)
	if err != nil {
		return err
	}
	st, err := store.Open(importFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if err := st.SaveDataset(ds); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d events, %d users, %d decisions, %d clicks, %d prequestionnaires, %d surveys into %s\n",
		len(ds.Events), len(ds.Users), len(ds.Decisions), len(ds.Clicks), len(ds.Prequestionnaires), len(ds.Surveys), importFlags.dbPath)
	return nil
}
