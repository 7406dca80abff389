package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"crywolf/internal/format"
	"crywolf/internal/report"
)

var (
	itemsFlags    inputFlags
	timingFlags   inputFlags
	resubmitFlags inputFlags
)

var userFlags struct {
	inputFlags
	name string
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Print item difficulty and discrimination per group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return focused(cmd, itemsFlags, func(m format.Mode, p pipeline) string {
			return report.Items(m, p.cfg, p.rep.Items)
		})
	},
}

var timingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Print click-to-decision latency by position and by user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return focused(cmd, timingFlags, func(m format.Mode, p pipeline) string {
			return report.Timing(m, p.rep.Timing)
		})
	},
}

var resubmitCmd = &cobra.Command{
	Use:   "resubmit",
	Short: "Print how often users resubmitted and changed a decision",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return focused(cmd, resubmitFlags, func(m format.Mode, p pipeline) string {
			return report.Resubmissions(m, p.rep.Resubmissions)
		})
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Print one user's outcome on every event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := parseMode(userFlags.format)
		if err != nil {
			return err
		}
		p, err := runPipeline(userFlags.inputFlags)
		if err != nil {
			return err
		}
		u, ok := p.rep.Users.Find(userFlags.name)
		if !ok {
			return fmt.Errorf("user %q not in results (excluded, incomplete or absent)", userFlags.name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.UserDetail(mode, p.cfg, u, p.rep.Events))
		return nil
	},
}

func init() {
	addInputFlags(userCmd, &userFlags.inputFlags)
	userCmd.Flags().StringVar(&userFlags.name, "name", "", "Username (required)")
	_ = userCmd.MarkFlagRequired("name")
	addInputFlags(itemsCmd, &itemsFlags)
	addInputFlags(timingCmd, &timingFlags)
	addInputFlags(resubmitCmd, &resubmitFlags)
}

// focused runs the pipeline and prints one section of the report.
func focused(cmd *cobra.Command, f inputFlags, render func(format.Mode, pipeline) string) error {
	mode, err := parseMode(f.format)
	if err != nil {
		return err
	}
	p, err := runPipeline(f)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render(mode, p))
	return nil
}
