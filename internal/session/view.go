// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "github.com/pdiddy/scripture-links/pkg/types"

// SuggestionCommand is one correction affordance: activating it passes
// Choice to Session.ApplySuggestion.
type SuggestionCommand struct {
	Choice types.SuggestionChoice `json:"choice"`

	// Corrected is the input the command will resolve.
	Corrected string `json:"corrected"`
}

// View receives the rendering effects a flow requests.
type View interface {
	SetInput(text string)
	ShowLocator(url string)
	ShowRejection(message string, commands []SuggestionCommand)
	ShowAnnotated(text string, linkCount int)
	ShowNoMatches(message string)
	ShowError(message string)
	ClearResult()
	SelectForCopy()
	SetActionsVisible(visible bool)

	// InlineErrorShown reports whether a result area currently shows an error.
	InlineErrorShown() bool
}

// Controls enables or disables every interactive control at once.
type Controls interface {
	SetEnabled(enabled bool)
}

// NopView discards all effects.
type NopView struct{}

func (NopView) SetInput(string)                           {}
func (NopView) ShowLocator(string)                        {}
func (NopView) ShowRejection(string, []SuggestionCommand) {}
func (NopView) ShowAnnotated(string, int)                 {}
func (NopView) ShowNoMatches(string)                      {}
func (NopView) ShowError(string)                          {}
func (NopView) ClearResult()                              {}
func (NopView) SelectForCopy()                            {}
func (NopView) SetActionsVisible(bool)                    {}
func (NopView) InlineErrorShown() bool                    { return false }

type nopControls struct{}

func (nopControls) SetEnabled(bool) {}
