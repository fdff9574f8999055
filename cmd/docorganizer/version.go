package main

import (
	"fmt"

	"docorganizer/internal/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docorganizer %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
