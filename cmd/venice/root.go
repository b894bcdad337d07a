// Command venice manages credentials and connectivity for the venice
// client library. It never defines per-endpoint schemas — it only binds
// onto the transport core's Config Resolver credential API and a
// connectivity check against the Models endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes, per the CLI surface contract: 0 success, 1 invalid usage,
// 2 missing credential, 3 unreachable config path.
const (
	exitSuccess         = 0
	exitInvalidUsage    = 1
	exitMissingCredential = 2
	exitUnreachablePath = 3
)

var globalFlag bool

var rootCmd = &cobra.Command{
	Use:   "venice",
	Short: "Manage venice API credentials and connectivity.",
	Long:  `venice reads and writes API credentials for the venice client library and checks connectivity against the configured base URL.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&globalFlag, "global", false, "operate on the global credential file ($XDG_CONFIG_HOME/venice/.env) instead of the local one (./.env)")
}

// Execute runs the command tree; this is called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitInvalidUsage)
	}
}

func fail(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
