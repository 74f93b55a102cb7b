// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/scripture-links/internal/codec"
	"github.com/pdiddy/scripture-links/internal/engine"
	"github.com/pdiddy/scripture-links/internal/logging"
	"github.com/pdiddy/scripture-links/internal/share"
	"github.com/pdiddy/scripture-links/internal/suggest"
	"github.com/pdiddy/scripture-links/pkg/types"
)

// Result describes how a flow ended.
type Result struct {
	State   State   `json:"state"`
	Trigger Trigger `json:"trigger,omitempty"`
	Input   string  `json:"input"`

	// URL and Token are set when a citation resolved.
	URL   string `json:"url,omitempty"`
	Token string `json:"token,omitempty"`

	// Message is the rejection reason or the user-facing summary.
	Message  string              `json:"message,omitempty"`
	Code     string              `json:"code,omitempty"`
	Commands []SuggestionCommand `json:"suggestions,omitempty"`

	// Text and LinkCount are set by the batch flow.
	Text      string `json:"text,omitempty"`
	LinkCount int    `json:"link_count,omitempty"`

	batch bool
}

func (r Result) operation() string {
	if r.batch {
		return "annotate"
	}
	return "resolve"
}

// ResolveReference runs the single-reference flow on raw. Rejections and
// unexpected engine faults end the flow normally and are reported through
// the Result; the error is set only for empty input, a busy session, or an
// engine that is not ready.
func (s *Session) ResolveReference(ctx context.Context, raw string, trigger Trigger) (Result, error) {
	if s.gw.Availability() == types.Failed {
		return Result{State: StateFailed}, engine.ErrEngineFailed
	}
	if !s.begin() {
		return Result{}, ErrBusy
	}
	r := Result{Trigger: trigger, Input: types.TrimInput(raw)}
	defer func() { s.end(r) }()

	if r.Input == "" {
		r.State = StateIdle
		s.notify(MsgEmptyReference, types.NotifyError)
		return r, ErrEmptyInput
	}
	if s.gw.Availability() != types.Ready {
		r.State = StateIdle
		s.notify(MsgStillLoading, types.NotifyError)
		return r, engine.ErrNotReady
	}

	s.setState(StateResolving)
	out, err := s.gw.Resolve(ctx, r.Input)
	switch {
	case errors.Is(err, engine.ErrNotReady):
		r.State = StateIdle
		s.notify(MsgStillLoading, types.NotifyError)
		return r, err

	case err != nil:
		logging.WarnContext(ctx, "resolution failed", "input", r.Input, "error", err)
		r.State = StateFailed
		r.Message = MsgUnexpected
		s.view.ShowError(MsgUnexpected)
		s.view.SetActionsVisible(false)
		s.clearRef()
		s.notify(MsgUnexpected, types.NotifyError)

	case out.IsResolved():
		r.State = StateSuccess
		r.URL = out.URL
		r.Token = share.ToToken(r.Input)
		s.view.ShowLocator(out.URL)
		s.view.SetActionsVisible(true)
		s.setRef(r.Token)
		s.stats.IncrementReferences(1)
		s.notify(MsgResolved, types.NotifySuccess)
		s.view.SelectForCopy()

	default:
		r.State = StateRejected
		r.Message = out.Message
		r.Code = out.Code
		if r.Code == "" {
			r.Code = codec.Categorize(out.Message)
		}
		r.Commands = commandsFor(r.Input, out.Suggestions)
		s.view.ShowRejection(out.Message, r.Commands)
		s.view.SetActionsVisible(false)
		s.clearRef()
		s.notify(out.Message, types.NotifyError)
	}
	return r, nil
}

func commandsFor(input string, suggestions []string) []SuggestionCommand {
	choices := suggest.Commands(input, suggestions)
	cmds := make([]SuggestionCommand, len(choices))
	for i, c := range choices {
		cmds[i] = SuggestionCommand{Choice: c, Corrected: suggest.Apply(c)}
	}
	return cmds
}

// ApplySuggestion rewrites the original input with the chosen suggestion,
// puts it in the input field and, after CorrectionDelay, resolves it. A
// blank suggestion is rejected with ErrEmptyInput before anything changes.
func (s *Session) ApplySuggestion(ctx context.Context, choice types.SuggestionChoice) (Result, error) {
	if s.gw.Availability() == types.Failed {
		return Result{State: StateFailed}, engine.ErrEngineFailed
	}
	if strings.TrimSpace(choice.Suggestion) == "" {
		return Result{State: StateIdle, Trigger: TriggerCorrection}, ErrEmptyInput
	}
	corrected := suggest.Apply(choice)
	s.view.SetInput(corrected)

	t := time.NewTimer(CorrectionDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-t.C:
	}

	return s.ResolveReference(ctx, corrected, TriggerCorrection)
}

// AutoResolve resolves the citation carried by the location's ref
// parameter once the engine is ready. It reports false when there is no
// parameter. The wait is bounded by the readiness settings.
func (s *Session) AutoResolve(ctx context.Context) (Result, bool, error) {
	s.mu.Lock()
	token, ok := s.loc.Ref()
	s.mu.Unlock()
	if !ok || strings.TrimSpace(token) == "" {
		return Result{}, false, nil
	}

	input := share.FromToken(token)
	s.view.SetInput(input)

	if err := s.gw.WaitReady(ctx, s.readiness.PollInterval, s.readiness.MaxWait); err != nil {
		logging.WarnContext(ctx, "auto-resolve abandoned", "ref", token, "error", err)
		return Result{}, true, fmt.Errorf("waiting for engine: %w", err)
	}

	r, err := s.ResolveReference(ctx, input, TriggerShareLink)
	return r, true, err
}

// AnnotateText runs the batch flow on raw. Unchanged output means no
// citations were found; only changed output updates the counters.
func (s *Session) AnnotateText(ctx context.Context, raw string) (Result, error) {
	if s.gw.Availability() == types.Failed {
		return Result{State: StateFailed, batch: true}, engine.ErrEngineFailed
	}
	if !s.begin() {
		return Result{}, ErrBusy
	}
	r := Result{Input: types.TrimInput(raw), batch: true}
	defer func() { s.end(r) }()

	if r.Input == "" {
		r.State = StateIdle
		s.notify(MsgEmptyText, types.NotifyError)
		return r, ErrEmptyInput
	}
	if s.gw.Availability() != types.Ready {
		r.State = StateIdle
		s.notify(MsgStillLoading, types.NotifyError)
		return r, engine.ErrNotReady
	}

	s.setState(StateResolving)
	out, err := s.gw.Annotate(ctx, r.Input)
	switch {
	case errors.Is(err, engine.ErrNotReady):
		r.State = StateIdle
		s.notify(MsgStillLoading, types.NotifyError)
		return r, err

	case err != nil:
		logging.WarnContext(ctx, "annotation failed", "error", err)
		r.State = StateFailed
		r.Message = MsgUnexpectedText
		s.view.ShowError(MsgUnexpectedText)
		s.view.SetActionsVisible(false)
		s.notify(MsgUnexpectedText, types.NotifyError)

	case !out.Changed || out.Text == "":
		r.State = StateNoMatches
		r.Text = r.Input
		r.Message = MsgNoMatchesInline
		s.view.ShowNoMatches(MsgNoMatchesInline)
		s.view.SetActionsVisible(false)
		s.notify(MsgNoMatchesNotice, types.NotifyInfo)

	default:
		r.State = StateSuccess
		r.Text = out.Text
		r.LinkCount = out.LinkCount
		r.Message = annotatedSummary(out.LinkCount)
		s.view.ShowAnnotated(out.Text, out.LinkCount)
		s.view.SetActionsVisible(true)
		s.stats.IncrementTextBlocks()
		s.stats.IncrementReferences(out.LinkCount)
		s.notify(r.Message, types.NotifySuccess)
		s.view.SelectForCopy()
	}
	return r, nil
}

func annotatedSummary(n int) string {
	noun := "references"
	if n == 1 {
		noun = "reference"
	}
	return fmt.Sprintf("Text processed successfully! Found %d scripture %s.", n, noun)
}

// Open hands a locator to the Opener after checking it belongs to the
// locator domain.
func (s *Session) Open(locator string) error {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		s.notify(MsgNothingToOpen, types.NotifyError)
		return ErrEmptyInput
	}
	if !codec.IsLocator(locator) {
		s.notify(MsgNotLocator, types.NotifyError)
		return ErrNotLocator
	}
	if s.opener != nil {
		if err := s.opener.Open(locator); err != nil {
			return fmt.Errorf("opening %s: %w", locator, err)
		}
	}
	s.notify(MsgOpened, types.NotifySuccess)
	return nil
}

// Clear empties the result area, hides the actions and drops the ref
// parameter. It does not interrupt a flow in flight.
func (s *Session) Clear() {
	s.view.ClearResult()
	s.view.SetActionsVisible(false)

	s.mu.Lock()
	s.loc.ClearRef()
	s.last = Result{}
	if !s.busy {
		s.state = StateIdle
	}
	s.mu.Unlock()
}
