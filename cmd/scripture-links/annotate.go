// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scripture-links/internal/session"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [text]",
	Short: "Rewrite every scripture citation in text as a markdown link",
	Long: `Annotate finds the scripture citations in a block of text and replaces
each with a markdown link. Text comes from the arguments, from --file,
or from standard input when neither is given (--file - also reads
standard input).

Text without citations is printed unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts annotateOptions
		opts.json, _ = cmd.Flags().GetBool("json")
		opts.format, _ = cmd.Flags().GetString("format")
		opts.quiet, _ = cmd.Flags().GetBool("quiet")
		file, _ := cmd.Flags().GetString("file")

		switch opts.format {
		case "text", "yaml":
		default:
			return fmt.Errorf("unsupported format %q: use text or yaml", opts.format)
		}

		text, err := annotateInput(cmd.InOrStdin(), args, file)
		if err != nil {
			return err
		}
		return runAnnotate(cmd, text, opts)
	},
}

func init() {
	annotateCmd.Flags().StringP("file", "f", "", "read the text from a file (- for stdin)")
	annotateCmd.Flags().Bool("json", false, "print a JSON response instead of the text")
	annotateCmd.Flags().String("format", "text", "output format: text or yaml")
	annotateCmd.MarkFlagsMutuallyExclusive("json", "format")
	rootCmd.AddCommand(annotateCmd)
}

type annotateOptions struct {
	json   bool
	format string
	quiet  bool
}

func annotateInput(stdin io.Reader, args []string, file string) (string, error) {
	switch {
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		if len(args) > 0 {
			return "", fmt.Errorf("--file cannot be combined with text arguments")
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading file '%s': %w", file, err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
}

func runAnnotate(cmd *cobra.Command, text string, opts annotateOptions) error {
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.shutdown(ctx)

	structured := opts.json || opts.format == "yaml"
	a.attachTerminal(errOut, opts.quiet || structured)

	var view session.View = newTermView(out, errOut)
	if structured {
		view = session.NopView{}
	}
	sess, err := a.newSession(view, nil)
	if err != nil {
		return err
	}

	if err := sess.Start(ctx); err != nil {
		if opts.json {
			writeJSON(out, newTextResponse(session.Result{Input: text}, err))
		}
		return fmt.Errorf("starting engine: %w", err)
	}

	r, err := sess.AnnotateText(ctx, text)
	switch {
	case opts.json:
		if werr := writeJSON(out, newTextResponse(r, err)); werr != nil {
			return werr
		}
	case opts.format == "yaml" && err == nil && r.State != session.StateFailed:
		return writeYAML(out, annotationReport{
			Input:     r.Input,
			Output:    r.Text,
			LinkCount: r.LinkCount,
			Changed:   r.State == session.StateSuccess,
		})
	case err == nil && r.State == session.StateNoMatches:
		fmt.Fprintln(out, r.Text)
	}
	return flowError(r, err, session.MsgEmptyText)
}
