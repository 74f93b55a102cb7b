// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"sync"

	"github.com/pdiddy/scripture-links/internal/session"
)

// Result area kinds.
const (
	ResultNone      = ""
	ResultLocator   = "locator"
	ResultRejection = "rejection"
	ResultAnnotated = "annotated"
	ResultNoMatches = "no_matches"
	ResultError     = "error"
)

// Snapshot is what a client renders.
type Snapshot struct {
	Input           string                      `json:"input"`
	Result          string                      `json:"result"`
	ResultKind      string                      `json:"result_kind"`
	Suggestions     []session.SuggestionCommand `json:"suggestions,omitempty"`
	LinkCount       int                         `json:"link_count,omitempty"`
	ActionsVisible  bool                        `json:"actions_visible"`
	Selected        bool                        `json:"selected"`
	ControlsEnabled bool                        `json:"controls_enabled"`
}

// pageView keeps the page state that flows request, for clients to fetch.
type pageView struct {
	mu   sync.RWMutex
	snap Snapshot
}

func (v *pageView) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s := v.snap
	s.Suggestions = append([]session.SuggestionCommand(nil), v.snap.Suggestions...)
	return s
}

func (v *pageView) update(f func(*Snapshot)) {
	v.mu.Lock()
	f(&v.snap)
	v.mu.Unlock()
}

func (v *pageView) setResult(kind, text string, cmds []session.SuggestionCommand, links int) {
	v.update(func(s *Snapshot) {
		s.ResultKind, s.Result, s.Suggestions, s.LinkCount = kind, text, cmds, links
		s.Selected = false
	})
}

func (v *pageView) SetInput(text string) {
	v.update(func(s *Snapshot) { s.Input = text })
}

func (v *pageView) ShowLocator(url string) {
	v.setResult(ResultLocator, url, nil, 0)
}

func (v *pageView) ShowRejection(message string, commands []session.SuggestionCommand) {
	v.setResult(ResultRejection, "Error: "+message, commands, 0)
}

func (v *pageView) ShowAnnotated(text string, linkCount int) {
	v.setResult(ResultAnnotated, text, nil, linkCount)
}

func (v *pageView) ShowNoMatches(message string) {
	v.setResult(ResultNoMatches, message, nil, 0)
}

func (v *pageView) ShowError(message string) {
	v.setResult(ResultError, "Error: "+message, nil, 0)
}

func (v *pageView) ClearResult() {
	v.setResult(ResultNone, "", nil, 0)
}

func (v *pageView) SelectForCopy() {
	v.update(func(s *Snapshot) { s.Selected = true })
}

func (v *pageView) SetActionsVisible(visible bool) {
	v.update(func(s *Snapshot) { s.ActionsVisible = visible })
}

func (v *pageView) InlineErrorShown() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snap.ResultKind == ResultRejection || v.snap.ResultKind == ResultError
}

// SetEnabled implements session.Controls.
func (v *pageView) SetEnabled(enabled bool) {
	v.update(func(s *Snapshot) { s.ControlsEnabled = enabled })
}
