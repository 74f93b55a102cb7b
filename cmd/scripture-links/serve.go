// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scripture-links/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolver over HTTP",
	Long: `Serve exposes the resolve and annotate flows as a JSON API and streams
notifications over a websocket at /ws. Opening /?ref=<token> resolves
the shared citation once the engine is ready.

Counters are saved when the server shuts down.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("base-url", "", "public address that share links are built on")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("share.base_url", serveCmd.Flags().Lookup("base-url"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.shutdown(ctx)
	a.notifier.Subscribe(logSink)

	srv, err := server.New(server.Options{
		Gateway:   a.gateway,
		Stats:     a.store,
		Notifier:  a.notifier,
		BaseURL:   cfg.Share.BaseURL,
		Readiness: cfg.Readiness,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s (engine: %s)\n", cfg.Server.Addr, cfg.Engine.Kind)
	return srv.Run(ctx, cfg.Server.Addr)
}
