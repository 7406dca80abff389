package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crywolf/internal/config"
	"crywolf/internal/sample"
	"crywolf/internal/workbook"
)

var sampleFlags struct {
	out string
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a small synthetic experiment dump",
	Long: `Write a deterministic synthetic dump with two groups, one attention-check
event, a resubmitted decision, an excluded user and an incomplete session.
Useful for trying the other commands.

Usage:
  crywolf sample --out sample.xlsx
  crywolf analyze --input sample.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := workbook.WriteDataset(sampleFlags.out, sample.Dataset()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sample: %s\n", sampleFlags.out)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	sampleCmd.Flags().StringVar(&sampleFlags.out, "out", "sample.xlsx", "Output workbook path")
}
