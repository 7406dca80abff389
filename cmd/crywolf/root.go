package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"crywolf/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

var rootCmd = &cobra.Command{
	Use:   "crywolf",
	Short: "Analyze Cry Wolf alarm-triage experiment data",
	Long: "crywolf turns a Cry Wolf experiment dump (users, alarm events, decisions,\n" +
		"clicks, questionnaires) into per-user performance tables, item statistics\n" +
		"and between-group comparisons.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Experiment config file (YAML or JSON); built-in defaults when empty")
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(timingCmd)
	rootCmd.AddCommand(resubmitCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.Version = version
}

func initLogging(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(rootFlags.logLevel)
	if err != nil {
		return err
	}
	switch rootFlags.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text, json)", rootFlags.logFormat)
	}
	logging.Init(level, rootFlags.logFormat, cmd.ErrOrStderr())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
