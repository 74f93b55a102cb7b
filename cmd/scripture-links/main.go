// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scripture-links CLI.
// Subcommands resolve citations, annotate text, serve the HTTP surface,
// and report usage stats. The legacy --reference, --text and --file
// flags on the root command behave like the original tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scripture-links/internal/logging"
	"github.com/pdiddy/scripture-links/internal/secrets"
	"github.com/pdiddy/scripture-links/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is the effective configuration, filled before any command runs.
var cfg types.Config

// rootCmd is the base command for the scripture-links CLI.
var rootCmd = &cobra.Command{
	Use:   "scripture-links",
	Short: "Generate links to scriptures on ChurchofJesusChrist.org",
	Long: `scripture-links turns scripture citations into links on
ChurchofJesusChrist.org. It resolves single citations, rewrites every
citation in a block of text as a markdown link, and can serve the same
flows over HTTP.

Resolution is delegated to an engine: an HTTP resolution service or the
legacy command-line resolver.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(viper.GetString("log.level"))
		if err != nil {
			return err
		}
		format, err := logging.ParseFormat(viper.GetString("log.format"))
		if err != nil {
			return err
		}
		logging.InitLogger(level, format, os.Stderr)

		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		if noPersist, _ := cmd.Flags().GetBool("no-persist"); noPersist {
			cfg.Stats.Persist = false
		}

		dir := viper.GetString("secrets_dir")
		key, err := secrets.Resolve(dir, secrets.EngineAPIKey, cfg.Engine.APIKey)
		if err != nil {
			return err
		}
		if key != "" && cfg.Engine.APIKey == "" {
			logging.Info("loaded secrets", "dir", dir, "keys", []string{secrets.EngineAPIKey})
		}
		cfg.Engine.APIKey = key
		return nil
	},
	RunE: runLegacy,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./scripture-links.yaml or ~/.config/scripture-links/scripture-links.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn, or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("engine", "", "engine adapter: http or exec")
	pf.String("engine-url", "", "base URL of the HTTP engine")
	pf.String("engine-binary", "", "legacy resolver executable")
	pf.String("db", "", "SQLite file holding the usage stats")
	pf.Bool("no-persist", false, "keep stats in memory only")
	pf.String("secrets-dir", secrets.DefaultDir, "directory of secret files")
	pf.BoolP("quiet", "q", false, "send notifications to the log instead of stderr")

	bindings := map[string]string{
		"log.level":     "log-level",
		"log.format":    "log-format",
		"engine.kind":   "engine",
		"engine.url":    "engine-url",
		"engine.binary": "engine-binary",
		"stats.db_path": "db",
		"secrets_dir":   "secrets-dir",
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.Flags().StringP("reference", "r", "", `scripture reference (e.g. "Isa. 6:5", "2 Ne. 10:14-15")`)
	rootCmd.Flags().StringP("text", "t", "", "process text and convert scripture references to markdown links")
	rootCmd.Flags().StringP("file", "f", "", "process a file and convert scripture references to markdown links")
	rootCmd.MarkFlagsMutuallyExclusive("reference", "text", "file")
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scripture-links")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scripture-links"))
		}
	}

	viper.SetEnvPrefix("SCRIPTURE_LINKS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logging.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "warning: could not read config file:", err)
	}
}

// runLegacy mirrors the original tool: exactly one of --reference, --text
// or --file.
func runLegacy(cmd *cobra.Command, args []string) error {
	ref, _ := cmd.Flags().GetString("reference")
	text, _ := cmd.Flags().GetString("text")
	file, _ := cmd.Flags().GetString("file")

	switch {
	case cmd.Flags().Changed("reference"):
		return runResolve(cmd, ref, resolveOptions{quiet: true})
	case cmd.Flags().Changed("text"):
		return runAnnotate(cmd, text, annotateOptions{quiet: true})
	case file != "":
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file '%s': %w", file, err)
		}
		return runAnnotate(cmd, string(content), annotateOptions{quiet: true})
	default:
		return errors.New("Please provide either --reference, --text, or --file")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
