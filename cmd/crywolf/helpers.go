package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"crywolf/internal/analysis"
	"crywolf/internal/config"
	"crywolf/internal/experiment"
	"crywolf/internal/format"
	"crywolf/internal/store"
	"crywolf/internal/workbook"
)

// inputFlags are shared by every command that runs the pipeline.
type inputFlags struct {
	input  string
	format string
}

func addInputFlags(cmd *cobra.Command, f *inputFlags) {
	cmd.Flags().StringVar(&f.input, "input", "", "Experiment dump: .xlsx workbook or .db store (required)")
	cmd.Flags().StringVar(&f.format, "format", "ascii", "Output format: ascii, markdown, csv")
	_ = cmd.MarkFlagRequired("input")
}

// loadConfig returns the config named by --config, or the defaults.
func loadConfig() (config.Config, error) {
	if rootFlags.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromPath(rootFlags.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadDataset reads the six tables from a workbook or an existing store,
// chosen by file extension.
func loadDataset(path string) (experiment.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return experiment.Dataset{}, fmt.Errorf("input not found: %s", path)
		}
		return experiment.Dataset{}, fmt.Errorf("stat input: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return workbook.Read(path, nil)
	case ".db", ".sqlite", ".sqlite3":
		st, err := store.Open(path)
		if err != nil {
			return experiment.Dataset{}, fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		return st.LoadDataset()
	}
	return experiment.Dataset{}, fmt.Errorf("unsupported input %q (want .xlsx or .db)", path)
}

// pipeline is one loaded input and its analysis.
type pipeline struct {
	cfg config.Config
	ds  experiment.Dataset
	rep *analysis.Report
}

// runPipeline loads config and input and runs the analysis.
func runPipeline(f inputFlags) (pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return pipeline{}, err
	}
	ds, err := loadDataset(f.input)
	if err != nil {
		return pipeline{}, err
	}
	rep, err := analysis.Run(cfg, ds, nil)
	if err != nil {
		return pipeline{}, fmt.Errorf("analyze: %w", err)
	}
	return pipeline{cfg: cfg, ds: ds, rep: rep}, nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseMode(s string) (format.Mode, error) {
	m, err := format.ParseMode(s)
	if err != nil {
		return m, fmt.Errorf("--format: %w", err)
	}
	return m, nil
}
