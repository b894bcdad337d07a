package main

import (
	"fmt"

	"github.com/sanix-darker/venice/internal/cliutil"
	"github.com/sanix-darker/venice/internal/config"
	"github.com/spf13/cobra"
)

const apiKeyCredential = "VENICE_API_KEY"

var authCopy bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored venice API key.",
}

var authSetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Store an API key in the local or global credential file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if existing, ok, _ := config.ReadCredential(globalFlag, apiKeyCredential); ok && existing != "" {
			if !cliutil.Confirm(fmt.Sprintf("A credential already exists at this location (%s). Overwrite?", credentialLocation())) {
				fmt.Println("Aborted.")
				return
			}
		}
		if err := config.WriteCredential(globalFlag, apiKeyCredential, args[0]); err != nil {
			fail(exitUnreachablePath, "failed to write credential: %v", err)
		}
		fmt.Printf("Stored API key in %s.\n", credentialLocation())
	},
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored API key (redacted by default).",
	Run: func(cmd *cobra.Command, args []string) {
		key, ok, err := config.ReadCredential(globalFlag, apiKeyCredential)
		if err != nil {
			fail(exitUnreachablePath, "failed to read credential: %v", err)
		}
		if !ok || key == "" {
			fail(exitMissingCredential, "no API key is stored in %s.", credentialLocation())
		}
		if authCopy {
			if err := cliutil.CopyToClipboard(key); err != nil {
				fail(exitInvalidUsage, "failed to copy to clipboard: %v", err)
			}
			fmt.Println("API key copied to clipboard.")
			return
		}
		fmt.Println(redact(key))
	},
}

func init() {
	authShowCmd.Flags().BoolVar(&authCopy, "copy", false, "copy the key to the clipboard instead of printing it")
	authCmd.AddCommand(authSetCmd, authShowCmd)
	rootCmd.AddCommand(authCmd)
}

func credentialLocation() string {
	if globalFlag {
		path, err := config.GlobalDotenvPath()
		if err != nil {
			return "the global credential file"
		}
		return path
	}
	return config.LocalDotenvFile
}

func redact(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
