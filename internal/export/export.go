// Package export writes the products of an analysis run to an output
// directory: a JSON report, Parquet tables and a results workbook.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"crywolf/internal/analysis"
	"crywolf/internal/config"
	"crywolf/internal/logging"
	"crywolf/internal/workbook"
)

// File names inside the output directory.
const (
	ReportFile   = "report.json"
	UsersFile    = "users.parquet"
	ItemsFile    = "items.parquet"
	WorkbookFile = "results.xlsx"
)

// Options selects the optional outputs. The JSON report is always written.
type Options struct {
	Parquet  bool
	Workbook bool

	// Parallel bounds concurrent writers; 0 means one per file.
	Parallel int
}

// WriteAll writes the selected outputs of rep into dir concurrently and
// returns the written paths, sorted.
func WriteAll(ctx context.Context, dir string, cfg config.Config, rep *analysis.Report, opts Options, log *slog.Logger) ([]string, error) {
	log = logging.OrDefault(log, "export")
	if rep == nil || rep.Users == nil {
		return nil, fmt.Errorf("export: empty report")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}

	type job struct {
		name  string
		write func(path string) error
	}
	jobs := []job{{ReportFile, func(p string) error { return WriteJSON(p, rep) }}}
	if opts.Parquet {
		jobs = append(jobs,
			job{UsersFile, func(p string) error { return WriteParquet(p, UserRows(rep.Users)) }},
			job{ItemsFile, func(p string) error { return WriteParquet(p, ItemRows(rep.Items.Items)) }},
		)
	}
	if opts.Workbook {
		jobs = append(jobs, job{WorkbookFile, func(p string) error {
			return workbook.WriteResults(p, workbook.Results{
				Config: cfg, Users: rep.Users, Items: rep.Items.Items, Comparisons: rep.Comparisons,
			})
		}})
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	paths := make([]string, len(jobs))
	for i, j := range jobs {
		j := j
		path := filepath.Join(dir, j.name)
		paths[i] = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := j.write(path); err != nil {
				return err
			}
			log.Debug("wrote output", "path", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	log.Info("outputs written", "dir", dir, "files", len(paths))
	return paths, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadJSON decodes a file written by WriteJSON into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("export: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("export: unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}
