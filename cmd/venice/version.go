package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version and commit are set via -ldflags at release build time; left at
// their zero values for local builds.
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the venice CLI version.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("venice %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
