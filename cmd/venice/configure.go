package main

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/sanix-darker/venice/internal/cliutil"
	"github.com/sanix-darker/venice/internal/config"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactively prompt for and store an API key.",
	Run: func(cmd *cobra.Command, args []string) {
		if existing, ok, _ := config.ReadCredential(globalFlag, apiKeyCredential); ok && existing != "" {
			if !cliutil.Confirm(fmt.Sprintf("A credential already exists at %s. Overwrite?", credentialLocation())) {
				fmt.Println("Aborted.")
				return
			}
		}

		prompt := promptui.Prompt{
			Label: "Venice API key",
			Mask:  '*',
			Validate: func(input string) error {
				if len(input) == 0 {
					return fmt.Errorf("API key must not be empty")
				}
				return nil
			},
		}
		apiKey, err := prompt.Run()
		if err != nil {
			fail(exitInvalidUsage, "aborted: %v", err)
		}

		if err := config.WriteCredential(globalFlag, apiKeyCredential, apiKey); err != nil {
			fail(exitUnreachablePath, "failed to write credential: %v", err)
		}
		fmt.Printf("Stored API key in %s.\n", credentialLocation())
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}
