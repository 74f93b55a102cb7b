// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify shows at most one ephemeral notification at a time and
// retires it after a viewport-dependent duration.
package notify

import (
	"sync"
	"time"

	"github.com/pdiddy/scripture-links/pkg/types"
)

// NarrowBreakpoint is the widest viewport, in pixels, treated as narrow.
const NarrowBreakpoint = 768

// Default display durations.
const (
	DefaultNarrowDuration = 4 * time.Second
	DefaultWideDuration   = 5 * time.Second
)

// Viewport describes the client surface.
type Viewport struct {
	Width int `json:"width"`
}

// Narrow reports whether the viewport is at or below the breakpoint.
func (v Viewport) Narrow() bool { return v.Width <= NarrowBreakpoint }

// EventType tells sinks what happened to a notification.
type EventType string

const (
	EventShown   EventType = "shown"
	EventRetired EventType = "retired"
)

// Event is delivered to every sink.
type Event struct {
	Type         EventType          `json:"type"`
	Notification types.Notification `json:"notification"`
}

// Sink receives events. Sinks run while the notifier is locked and must
// not call back into it.
type Sink func(Event)

// Options configures a Notifier.
type Options struct {
	Viewport       Viewport
	NarrowDuration time.Duration
	WideDuration   time.Duration

	// InlineErrorShown reports whether an error is already displayed in
	// the result area. Nil means never.
	InlineErrorShown func() bool
}

// Notifier is the single notification channel of a session.
type Notifier struct {
	mu      sync.Mutex
	opts    Options
	sinks   []Sink
	nextID  uint64
	current *types.Notification
	timer   *time.Timer
}

// New creates a Notifier, filling unset durations with the defaults.
func New(opts Options) *Notifier {
	if opts.NarrowDuration <= 0 {
		opts.NarrowDuration = DefaultNarrowDuration
	}
	if opts.WideDuration <= 0 {
		opts.WideDuration = DefaultWideDuration
	}
	return &Notifier{opts: opts}
}

// Subscribe adds a sink.
func (n *Notifier) Subscribe(s Sink) {
	n.mu.Lock()
	n.sinks = append(n.sinks, s)
	n.mu.Unlock()
}

// SetViewport updates the viewport used for later notifications.
func (n *Notifier) SetViewport(v Viewport) {
	n.mu.Lock()
	n.opts.Viewport = v
	n.mu.Unlock()
}

// SetInlineErrorCheck replaces the inline error probe.
func (n *Notifier) SetInlineErrorCheck(f func() bool) {
	n.mu.Lock()
	n.opts.InlineErrorShown = f
	n.mu.Unlock()
}

// Notify retires any visible notification and shows message. It returns
// false when an error notification is suppressed because a narrow viewport
// already shows the error inline; the previous notification is still
// retired in that case.
func (n *Notifier) Notify(message string, kind types.NotificationKind) (types.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.retireLocked()

	narrow := n.opts.Viewport.Narrow()
	if kind == types.NotifyError && narrow && n.opts.InlineErrorShown != nil && n.opts.InlineErrorShown() {
		return types.Notification{}, false
	}

	n.nextID++
	note := types.Notification{ID: n.nextID, Message: message, Kind: kind}
	n.current = &note
	n.emit(Event{Type: EventShown, Notification: note})

	d := n.opts.WideDuration
	if narrow {
		d = n.opts.NarrowDuration
	}
	id := note.ID
	n.timer = time.AfterFunc(d, func() { n.expire(id) })

	return note, true
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() (types.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return types.Notification{}, false
	}
	return *n.current, true
}

// Retire dismisses the visible notification immediately.
func (n *Notifier) Retire() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.retireLocked()
}

func (n *Notifier) expire(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil && n.current.ID == id {
		n.retireLocked()
	}
}

func (n *Notifier) retireLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if n.current == nil {
		return
	}
	old := *n.current
	n.current = nil
	n.emit(Event{Type: EventRetired, Notification: old})
}

func (n *Notifier) emit(e Event) {
	for _, s := range n.sinks {
		s(e)
	}
}
