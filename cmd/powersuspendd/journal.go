package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/powersuspend/powersuspend-go/cmd/powersuspendd/commands"
	"github.com/powersuspend/powersuspend-go/pkg/log"
)

var (
	journalCategory   string
	journalInstance   string
	journalGeneration uint64
	journalSince      string
	journalUntil      string
	journalFormat     string
	journalOutput     string
)

func init() {
	f := journalViewCmd.Flags()
	f.StringVar(&journalCategory, "category", "", "Filter by category (transition, mode, dispatch, error)")
	f.StringVar(&journalInstance, "instance", "", "Filter by instance ID")
	f.Uint64Var(&journalGeneration, "generation", 0, "Filter by transition generation")
	f.StringVar(&journalSince, "since", "", "Only events at or after this RFC3339 time")
	f.StringVar(&journalUntil, "until", "", "Only events before this RFC3339 time")

	journalExportCmd.Flags().StringVar(&journalFormat, "format", "jsonl", "Output format (jsonl, csv)")
	journalExportCmd.Flags().StringVarP(&journalOutput, "output", "o", "", "Output file (default stdout)")

	journalCmd.AddCommand(journalViewCmd, journalExportCmd, journalStatsCmd)
	rootCmd.AddCommand(journalCmd)
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect an event journal written with --journal",
}

var journalViewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View journal events in human-readable format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := buildFilter(cmd)
		if err != nil {
			return err
		}
		return commands.RunView(args[0], filter, cmd.OutOrStdout())
	},
}

var journalExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the journal to JSON lines or CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.RunExport(args[0], journalFormat, journalOutput)
	},
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Show statistics about the journal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.RunStats(args[0], cmd.OutOrStdout())
	},
}

func buildFilter(cmd *cobra.Command) (log.Filter, error) {
	var filter log.Filter
	filter.InstanceID = journalInstance

	if journalCategory != "" {
		c, err := commands.ParseCategoryFlag(journalCategory)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if cmd.Flags().Changed("generation") {
		g := journalGeneration
		filter.Generation = &g
	}
	if journalSince != "" {
		t, err := time.Parse(time.RFC3339, journalSince)
		if err != nil {
			return filter, fmt.Errorf("invalid --since: %w", err)
		}
		filter.TimeStart = &t
	}
	if journalUntil != "" {
		t, err := time.Parse(time.RFC3339, journalUntil)
		if err != nil {
			return filter, fmt.Errorf("invalid --until: %w", err)
		}
		filter.TimeEnd = &t
	}
	return filter, nil
}
