// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many citations and text blocks have been processed",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().String("format", "text", "output format: text, json, or yaml")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	ctx := cmd.Context()

	store, db, err := openStats(ctx, cfg.Stats)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	c := store.Counters()
	out := cmd.OutOrStdout()
	switch format {
	case "text", "":
		fmt.Fprintf(out, "References processed:  %d\n", c.ReferencesProcessed)
		fmt.Fprintf(out, "Text blocks processed: %d\n", c.TextBlocksProcessed)
		return nil
	case "json":
		return writeJSON(out, c)
	case "yaml":
		return writeYAML(out, c)
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}
