package main

import (
	"fmt"
	"os"

	"github.com/sanix-darker/venice/internal/cliutil"
	"github.com/sanix-darker/venice/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage venice CLI preferences.",
	}
	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigEffectiveCmd())
	configCmd.AddCommand(newConfigValidateCmd())
	rootCmd.AddCommand(configCmd)
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default preference file at ~/.config/venice/config.yml",
		Run: func(cmd *cobra.Command, args []string) {
			path, err := cliutil.PreferencesPath()
			if err != nil {
				fail(exitUnreachablePath, "failed to resolve preferences path: %v", err)
			}
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Preference file already exists at %s\n", path)
				return
			}
			written, err := cliutil.WritePreferences(cliutil.Preferences{OutputFormat: "text"})
			if err != nil {
				fail(exitUnreachablePath, "failed to write preference file: %v", err)
			}
			fmt.Printf("Preference file created at %s\n", written)
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the on-disk preference file.",
		Run: func(cmd *cobra.Command, args []string) {
			prefs, path, err := cliutil.LoadPreferences()
			if err != nil {
				fail(exitUnreachablePath, "failed to read preference file: %v", err)
			}
			fmt.Printf("# Preference file: %s\n", path)
			out, _ := yaml.Marshal(prefs)
			fmt.Print(string(out))
		},
	}
}

func newConfigEffectiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "effective",
		Short: "Print the resolved transport Config, with the API key redacted.",
		Run: func(cmd *cobra.Command, args []string) {
			useGlobal := globalFlag
			cfg, err := config.Resolve(config.Options{UseGlobalConfig: &useGlobal})
			if err != nil {
				fail(exitMissingCredential, "%v", err)
			}
			out, err := yaml.Marshal(effectiveConfigView(cfg))
			if err != nil {
				fail(exitInvalidUsage, "failed to encode config: %v", err)
			}
			fmt.Print(string(out))
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate that a Config can be resolved from the current environment.",
		Run: func(cmd *cobra.Command, args []string) {
			useGlobal := globalFlag
			if _, err := config.Resolve(config.Options{UseGlobalConfig: &useGlobal}); err != nil {
				fmt.Println("Configuration is invalid:")
				fmt.Printf("- %s\n", err)
				os.Exit(exitMissingCredential)
			}
			fmt.Println("Configuration is valid.")
		},
	}
}

func effectiveConfigView(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"base_url":              cfg.BaseURL,
		"api_key":               redact(cfg.APIKey),
		"timeout":               cfg.Timeout.String(),
		"max_retries":           cfg.MaxRetries,
		"retry_backoff_factor":  cfg.RetryBackoffFactor,
		"pool_connections":      cfg.PoolConnections,
		"pool_maxsize":          cfg.PoolMaxSize,
		"use_global_config":     cfg.UseGlobalConfig,
	}
}
