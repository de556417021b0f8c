package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powersuspend/powersuspend-go/pkg/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of powersuspendd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Identifier())
	},
}
