// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const redacted = "********"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Show prints the configuration after merging defaults, the config file,
SCRIPTURE_LINKS_* environment variables, and flags. The engine API key
is redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := cfg
		if shown.Engine.APIKey != "" {
			shown.Engine.APIKey = redacted
		}
		if used := viper.ConfigFileUsed(); used != "" {
			cmd.PrintErrf("# config file: %s\n", used)
		}
		return writeYAML(cmd.OutOrStdout(), shown)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
