package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"crywolf/internal/export"
	"crywolf/internal/report"
	"crywolf/internal/store"
)

var analyzeFlags struct {
	inputFlags
	outDir   string
	xlsx     bool
	parquet  bool
	dbPath   string
	parallel int
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full pipeline and print users, items and comparisons",
	Long: `Run the full analysis over an experiment dump: normalize, deduplicate,
classify every decision, aggregate per-user results, analyze items and
timing, and compare the configured groups.

The report.json summary is always written to --out-dir. --xlsx adds a
results workbook and --parquet adds users/items Parquet tables. With --db
the input tables and the results are also saved to a SQLite store.

Usage:
  crywolf analyze --input dump.xlsx
  crywolf analyze --input dump.xlsx --out-dir out --xlsx --parquet
  crywolf analyze --input .crywolf/crywolf.db --format markdown`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	addInputFlags(analyzeCmd, &analyzeFlags.inputFlags)
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.outDir, "out-dir", filepath.Join(".crywolf", "output"), "Output directory for report files")
	f.BoolVar(&analyzeFlags.xlsx, "xlsx", false, "Write a results workbook")
	f.BoolVar(&analyzeFlags.parquet, "parquet", false, "Write users and items Parquet tables")
	f.StringVar(&analyzeFlags.dbPath, "db", "", "Save input tables and results to this SQLite store")
	f.IntVar(&analyzeFlags.parallel, "parallel", 0, "Maximum concurrent output writers (0 = one per file)")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	mode, err := parseMode(analyzeFlags.format)
	if err != nil {
		return err
	}
	p, err := runPipeline(analyzeFlags.inputFlags)
	if err != nil {
		return err
	}
	cfg, rep := p.cfg, p.rep

	fmt.Fprint(cmd.OutOrStdout(), report.Full(mode, cfg, rep))

	paths, err := export.WriteAll(cmd.Context(), analyzeFlags.outDir, cfg, rep, export.Options{
		Parquet:  analyzeFlags.parquet,
		Workbook: analyzeFlags.xlsx,
		Parallel: analyzeFlags.parallel,
	}, nil)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote: %s\n", path)
	}

	if analyzeFlags.dbPath == "" {
		return nil
	}
	st, err := store.Open(analyzeFlags.dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	if filepath.Clean(analyzeFlags.dbPath) != filepath.Clean(analyzeFlags.input) {
		if err := st.SaveDataset(p.ds); err != nil {
			return err
		}
	}
	id, err := st.SaveRun(cfg.Experiment, rep.Users, rep.Items.Items)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %d to %s\n", id, analyzeFlags.dbPath)
	return nil
}
