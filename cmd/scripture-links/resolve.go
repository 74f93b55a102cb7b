// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scripture-links/internal/session"
	"github.com/pdiddy/scripture-links/internal/share"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [citation]",
	Short: "Resolve one scripture citation to a link",
	Long: `Resolve converts a citation such as "Isa. 6:5" or "2 Ne. 10:14-15" into
a link on ChurchofJesusChrist.org and prints it. Arguments are joined
with spaces, so quoting is optional.

When the engine rejects a citation with suggestions, the suggested
corrections are listed; --interactive prompts for one and resolves it.
Use --from-url with a share link (one carrying ?ref=) to resolve the
citation it names.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts resolveOptions
		opts.json, _ = cmd.Flags().GetBool("json")
		opts.interactive, _ = cmd.Flags().GetBool("interactive")
		opts.open, _ = cmd.Flags().GetBool("open")
		opts.share, _ = cmd.Flags().GetBool("share")
		opts.fromURL, _ = cmd.Flags().GetString("from-url")
		opts.quiet, _ = cmd.Flags().GetBool("quiet")

		if opts.fromURL == "" && len(args) == 0 {
			return errors.New("a citation or --from-url is required")
		}
		if opts.fromURL != "" && len(args) > 0 {
			return errors.New("--from-url cannot be combined with a citation")
		}
		return runResolve(cmd, strings.Join(args, " "), opts)
	},
}

func init() {
	resolveCmd.Flags().Bool("json", false, "print a JSON response instead of the link")
	resolveCmd.Flags().BoolP("interactive", "i", false, "prompt for a suggested correction when the citation is rejected")
	resolveCmd.Flags().Bool("open", false, "open the resolved link in a browser")
	resolveCmd.Flags().Bool("share", false, "also print a share link for the citation")
	resolveCmd.Flags().String("from-url", "", "resolve the citation carried by a share link")
	rootCmd.AddCommand(resolveCmd)
}

type resolveOptions struct {
	json        bool
	interactive bool
	open        bool
	share       bool
	quiet       bool
	fromURL     string
}

func runResolve(cmd *cobra.Command, input string, opts resolveOptions) error {
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.shutdown(ctx)
	a.attachTerminal(errOut, opts.quiet || opts.json)

	var view session.View = newTermView(out, errOut)
	if opts.json {
		view = session.NopView{}
	}

	var loc *share.Location
	if opts.fromURL != "" {
		if loc, err = share.Parse(opts.fromURL); err != nil {
			return err
		}
	}
	sess, err := a.newSession(view, loc)
	if err != nil {
		return err
	}

	if err := sess.Start(ctx); err != nil {
		if opts.json {
			writeJSON(out, newReferenceResponse(session.Result{Input: input}, err, ""))
		}
		return fmt.Errorf("starting engine: %w", err)
	}

	var r session.Result
	if opts.fromURL != "" {
		var found bool
		r, found, err = sess.AutoResolve(ctx)
		if !found {
			return fmt.Errorf("no %s parameter in %s", share.Param, opts.fromURL)
		}
	} else {
		r, err = sess.ResolveReference(ctx, input, session.TriggerUser)
	}

	if opts.interactive && !opts.json {
		r, err = promptCorrections(ctx, cmd.InOrStdin(), errOut, sess, r, err)
	}

	shareLink := ""
	if r.State == session.StateSuccess {
		shareLink = sess.Location()
	}
	if opts.json {
		if werr := writeJSON(out, newReferenceResponse(r, err, shareLink)); werr != nil {
			return werr
		}
	}
	if fe := flowError(r, err, session.MsgEmptyReference); fe != nil {
		return fe
	}

	if opts.share && !opts.json {
		fmt.Fprintln(out, shareLink)
	}
	if opts.open {
		return sess.Open(r.URL)
	}
	return nil
}

// promptCorrections offers the suggestions of a rejection until one
// resolves, the user declines, or input ends.
func promptCorrections(ctx context.Context, in io.Reader, w io.Writer, sess *session.Session, r session.Result, err error) (session.Result, error) {
	scanner := bufio.NewScanner(in)
	for err == nil && r.State == session.StateRejected && len(r.Commands) > 0 {
		fmt.Fprintf(w, "Choose a suggestion [1-%d] or press Enter to skip: ", len(r.Commands))
		if !scanner.Scan() {
			fmt.Fprintln(w)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(r.Commands) {
			fmt.Fprintf(w, "invalid choice %q\n", line)
			continue
		}
		r, err = sess.ApplySuggestion(ctx, r.Commands[n-1].Choice)
	}
	return r, err
}
