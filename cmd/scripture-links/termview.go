// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/pdiddy/scripture-links/internal/session"
)

// termView renders session output on a terminal. Results go to out and
// diagnostics go to errOut; inline errors are left to the caller, which
// returns them from the command.
type termView struct {
	out    io.Writer
	errOut io.Writer

	input     string
	commands  []session.SuggestionCommand
	inlineErr bool
}

var _ session.View = (*termView)(nil)

func newTermView(out, errOut io.Writer) *termView {
	return &termView{out: out, errOut: errOut}
}

func (v *termView) SetInput(text string) { v.input = text }

func (v *termView) ShowLocator(url string) {
	v.inlineErr = false
	v.commands = nil
	fmt.Fprintln(v.out, url)
}

func (v *termView) ShowRejection(_ string, cmds []session.SuggestionCommand) {
	v.inlineErr = true
	v.commands = cmds
	if len(cmds) == 0 {
		return
	}
	fmt.Fprintln(v.errOut, "Did you mean:")
	for i, c := range cmds {
		fmt.Fprintf(v.errOut, "  %d) %s  -> %s\n", i+1, c.Choice.Suggestion, c.Corrected)
	}
}

func (v *termView) ShowAnnotated(text string, _ int) {
	v.inlineErr = false
	fmt.Fprintln(v.out, text)
}

func (v *termView) ShowNoMatches(msg string) {
	v.inlineErr = false
	fmt.Fprintln(v.errOut, msg)
}

func (v *termView) ShowError(string) { v.inlineErr = true }

func (v *termView) ClearResult() {
	v.inlineErr = false
	v.commands = nil
}

func (v *termView) SelectForCopy()         {}
func (v *termView) SetActionsVisible(bool) {}
func (v *termView) InlineErrorShown() bool { return v.inlineErr }

// browserOpener hands locators to the platform's URL handler.
type browserOpener struct{}

func (browserOpener) Open(locator string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", locator)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", locator)
	default:
		cmd = exec.Command("xdg-open", locator)
	}
	return cmd.Start()
}
