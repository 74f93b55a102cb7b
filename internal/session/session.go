// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session composes the gateway, stats, share location and
// notifier into the two user-facing flows: resolving one citation and
// annotating a block of text. A Session requests rendering through View
// and never renders anything itself.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pdiddy/scripture-links/internal/logging"
	"github.com/pdiddy/scripture-links/internal/notify"
	"github.com/pdiddy/scripture-links/internal/share"
	"github.com/pdiddy/scripture-links/internal/stats"
	"github.com/pdiddy/scripture-links/pkg/types"
)

// User-facing messages.
const (
	MsgEmptyReference  = "Please enter a scripture reference"
	MsgEmptyText       = "Please enter some text to process"
	MsgStillLoading    = "Application is still loading. Please try again in a moment."
	MsgLoadFailed      = "Failed to load the application. Please refresh the page."
	MsgResolved        = "Scripture reference converted successfully!"
	MsgUnexpected      = "An unexpected error occurred"
	MsgUnexpectedText  = "An unexpected error occurred while processing text"
	MsgNoMatchesInline = "No scripture references found in the text."
	MsgNoMatchesNotice = "No scripture references were found in the provided text."
	MsgOpened          = "Opened in new tab"
	MsgNotLocator      = "Result is not a valid URL"
	MsgNothingToOpen   = "No URL to open"
)

var (
	// ErrEmptyInput is returned when the trimmed input is empty. The
	// gateway is not called.
	ErrEmptyInput = errors.New("input is empty")

	// ErrBusy is returned when a flow is already in flight.
	ErrBusy = errors.New("another request is in progress")

	// ErrNotLocator is returned when asked to open a value outside the
	// locator domain.
	ErrNotLocator = errors.New("not a scripture locator")
)

// CorrectionDelay is the pause before a corrected citation is resolved.
// Tests override this to avoid real sleeps.
var CorrectionDelay = 100 * time.Millisecond

// State is the position of the current or last flow.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateResolving  State = "resolving"
	StateSuccess    State = "success"
	StateRejected   State = "rejected"
	StateNoMatches  State = "no_matches"
	StateFailed     State = "failed"
)

// Trigger records what started a single-reference flow.
type Trigger string

const (
	TriggerUser       Trigger = "user"
	TriggerCorrection Trigger = "correction"
	TriggerShareLink  Trigger = "share_link"
)

// Gateway is the engine boundary a Session drives.
type Gateway interface {
	Init(ctx context.Context) error
	Availability() types.Availability
	Resolve(ctx context.Context, citation string) (types.ResolutionOutcome, error)
	Annotate(ctx context.Context, text string) (types.AnnotationOutcome, error)
	WaitReady(ctx context.Context, interval, maxWait time.Duration) error
}

// Opener opens a locator in a new browsing context.
type Opener interface {
	Open(locator string) error
}

// Deps groups the collaborators of a Session. Gateway and Stats are
// required; the rest fall back to no-ops.
type Deps struct {
	Gateway   Gateway
	Stats     *stats.Store
	Location  *share.Location
	Notifier  *notify.Notifier
	View      View
	Controls  Controls
	Opener    Opener
	Readiness types.ReadinessConfig
}

// Session is the explicit context object for one user's interaction.
type Session struct {
	gw        Gateway
	stats     *stats.Store
	notifier  *notify.Notifier
	view      View
	controls  Controls
	opener    Opener
	readiness types.ReadinessConfig

	mu    sync.Mutex
	busy  bool
	state State
	loc   *share.Location
	last  Result
}

// New creates a Session with every control disabled until Start succeeds.
func New(d Deps) *Session {
	s := &Session{
		gw:        d.Gateway,
		stats:     d.Stats,
		notifier:  d.Notifier,
		view:      d.View,
		controls:  d.Controls,
		opener:    d.Opener,
		readiness: d.Readiness,
		state:     StateIdle,
		loc:       d.Location,
	}
	if s.view == nil {
		s.view = NopView{}
	}
	if s.controls == nil {
		s.controls = nopControls{}
	}
	if s.notifier == nil {
		s.notifier = notify.New(notify.Options{Viewport: notify.Viewport{Width: 1024}})
	}
	if s.loc == nil {
		s.loc = share.NewLocation(nil)
	}
	s.notifier.SetInlineErrorCheck(s.view.InlineErrorShown)
	s.controls.SetEnabled(false)
	return s
}

// Start initializes the engine. On failure controls stay disabled for the
// rest of the session.
func (s *Session) Start(ctx context.Context) error {
	if err := s.gw.Init(ctx); err != nil {
		s.notify(MsgLoadFailed, types.NotifyError)
		return err
	}
	s.controls.SetEnabled(true)
	return nil
}

// State returns the state of the current or last flow.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns the result of the last completed flow.
func (s *Session) Last() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Location returns the current addressable location.
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc.String()
}

// Navigate replaces the current location, as when a page is loaded at a
// new address. A nil location is ignored.
func (s *Session) Navigate(loc *share.Location) {
	if loc == nil {
		return
	}
	s.mu.Lock()
	s.loc = loc
	s.mu.Unlock()
}

// Counters returns the session's usage counters.
func (s *Session) Counters() types.Counters {
	return s.stats.Counters()
}

// Availability reports the engine state.
func (s *Session) Availability() types.Availability {
	return s.gw.Availability()
}

// Notifier returns the session's notification channel.
func (s *Session) Notifier() *notify.Notifier {
	return s.notifier
}

// begin claims the session for one flow and disables controls.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	s.state = StateValidating
	s.controls.SetEnabled(false)
	return true
}

// end releases the session. Controls come back only for a ready engine.
func (s *Session) end(r Result) {
	s.mu.Lock()
	s.busy = false
	s.state = r.State
	s.last = r
	s.mu.Unlock()
	logging.Outcome(context.Background(), r.operation(), string(r.State), "trigger", r.Trigger)
	if s.gw.Availability() == types.Ready {
		s.controls.SetEnabled(true)
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) setRef(token string) {
	s.mu.Lock()
	s.loc.SetRef(token)
	s.mu.Unlock()
}

func (s *Session) clearRef() {
	s.mu.Lock()
	s.loc.ClearRef()
	s.mu.Unlock()
}

func (s *Session) notify(msg string, kind types.NotificationKind) {
	s.notifier.Notify(msg, kind)
}
