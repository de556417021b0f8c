package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagServer string

var rootCmd = &cobra.Command{
	Use:   "powersuspendd",
	Short: "Power-suspend coordinator",
	Long: `powersuspendd arbitrates system suspend requests from userspace, the
autosleep hook and the display-panel hook, and notifies registered
subsystems in order: suspend callbacks in registration order, resume
callbacks in reverse.

Client commands talk to a running coordinator over its HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8080",
		"Coordinator base URL for client commands (env POWERSUSPEND_SERVER)")
}

// serverURL resolves the client base URL: flag > env > default.
func serverURL(cmd *cobra.Command) string {
	if cmd.Flags().Changed("server") {
		return flagServer
	}
	if v := os.Getenv("POWERSUSPEND_SERVER"); v != "" {
		return v
	}
	return flagServer
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
