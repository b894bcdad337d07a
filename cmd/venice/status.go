package main

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sanix-darker/venice/internal/config"
	veniceerr "github.com/sanix-darker/venice/internal/errors"
	"github.com/sanix-darker/venice/internal/venice"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to the configured venice base URL.",
	Run: func(cmd *cobra.Command, args []string) {
		useGlobal := globalFlag
		cfg, err := config.Resolve(config.Options{UseGlobalConfig: &useGlobal})
		if err != nil {
			fail(exitMissingCredential, "%v", err)
		}

		s := spinner.New(spinner.CharSets[9], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" checking %s ...", cfg.BaseURL)
		s.Start()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err = venice.New(cfg).Models().List(ctx)
		s.Stop()

		if err != nil {
			var vErr *veniceerr.Error
			if e, ok := err.(*veniceerr.Error); ok {
				vErr = e
			}
			if vErr != nil && vErr.Kind == veniceerr.KindUnauthorized {
				fail(exitMissingCredential, "reached %s but the API key was rejected: %v", cfg.BaseURL, err)
			}
			fail(exitInvalidUsage, "could not reach %s: %v", cfg.BaseURL, err)
		}
		fmt.Printf("OK: %s is reachable.\n", cfg.BaseURL)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
