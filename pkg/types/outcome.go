// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for scripture-links.
// Outcomes are ephemeral and scoped to one user operation; Counters are
// loaded at startup and flushed at teardown; Availability lives for the
// whole process.
package types

import (
	"fmt"
	"strings"
)

// Availability is the lifecycle state of the resolution engine.
// It only moves Unloaded -> Loading -> Ready or Failed.
type Availability int32

const (
	Unloaded Availability = iota
	Loading
	Ready
	Failed
)

func (a Availability) String() string {
	switch a {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the availability as its lower-case name.
func (a Availability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (a *Availability) UnmarshalText(text []byte) error {
	for _, v := range []Availability{Unloaded, Loading, Ready, Failed} {
		if v.String() == string(text) {
			*a = v
			return nil
		}
	}
	return fmt.Errorf("unknown availability %q", text)
}

// OutcomeKind tags a ResolutionOutcome.
type OutcomeKind string

const (
	OutcomeResolved OutcomeKind = "resolved"
	OutcomeRejected OutcomeKind = "rejected"
)

// ResolutionOutcome is the canonical result of resolving one citation.
// Exactly one of the two shapes is meaningful, selected by Kind:
// Resolved carries URL; Rejected carries Message and Suggestions.
type ResolutionOutcome struct {
	Kind OutcomeKind `json:"kind" yaml:"kind"`

	// URL is the resolved locator (Resolved only).
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Message is the human-readable failure reason (Rejected only).
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Suggestions lists replacement work names in engine order. Never nil
	// for a Rejected outcome.
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`

	// Code is the machine error code when the engine (or categorization)
	// provides one, e.g. "UNKNOWN_BOOK".
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
}

// Resolved builds a successful outcome.
func Resolved(url string) ResolutionOutcome {
	return ResolutionOutcome{Kind: OutcomeResolved, URL: url}
}

// Rejected builds a failed outcome. A nil suggestions slice becomes empty.
func Rejected(message string, suggestions []string) ResolutionOutcome {
	if suggestions == nil {
		suggestions = []string{}
	}
	return ResolutionOutcome{Kind: OutcomeRejected, Message: message, Suggestions: suggestions}
}

// IsResolved reports whether the outcome carries a locator.
func (o ResolutionOutcome) IsResolved() bool {
	return o.Kind == OutcomeResolved
}

// AnnotationOutcome is the result of rewriting citations in a block of text.
type AnnotationOutcome struct {
	// Text is the annotated output.
	Text string `json:"text" yaml:"text"`

	// LinkCount is the approximate number of links inserted, counted by
	// matching the locator domain in Text.
	LinkCount int `json:"link_count" yaml:"link_count"`

	// Changed is false when Text equals the input, meaning no matches.
	Changed bool `json:"changed" yaml:"changed"`
}

// SuggestionChoice is a suggestion picked by the user together with the
// input it should correct.
type SuggestionChoice struct {
	Suggestion string `json:"suggestion" yaml:"suggestion"`
	Original   string `json:"original" yaml:"original"`
}

// Counters holds the usage statistics persisted across sessions.
type Counters struct {
	ReferencesProcessed int `json:"referencesProcessed" yaml:"references_processed"`
	TextBlocksProcessed int `json:"textBlocksProcessed" yaml:"text_blocks_processed"`
}

// NotificationKind classifies a notification.
type NotificationKind string

const (
	NotifyError   NotificationKind = "error"
	NotifySuccess NotificationKind = "success"
	NotifyInfo    NotificationKind = "info"
)

// Notification is an ephemeral user-facing message.
type Notification struct {
	ID      uint64           `json:"id" yaml:"id"`
	Message string           `json:"message" yaml:"message"`
	Kind    NotificationKind `json:"kind" yaml:"kind"`
}

// TrimInput applies the only normalization raw input ever receives.
func TrimInput(raw string) string {
	return strings.TrimSpace(raw)
}
