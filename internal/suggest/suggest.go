// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package suggest rewrites a rejected citation using a suggestion chosen
// by the user.
package suggest

import (
	"strings"

	"github.com/pdiddy/scripture-links/pkg/types"
)

// Apply replaces the first whitespace-delimited token of the original
// input with the suggestion and keeps every later token verbatim, joined
// by single spaces. An empty original yields the suggestion alone.
//
// Given "Gen 1:1" and "Genesis" it returns "Genesis 1:1".
func Apply(choice types.SuggestionChoice) string {
	suggestion := strings.TrimSpace(choice.Suggestion)
	tokens := strings.Fields(choice.Original)
	if len(tokens) == 0 {
		return suggestion
	}
	tokens[0] = suggestion
	return strings.Join(tokens, " ")
}

// Commands builds one choice per suggestion, in engine order, all bound
// to the same original input.
func Commands(original string, suggestions []string) []types.SuggestionChoice {
	choices := make([]types.SuggestionChoice, 0, len(suggestions))
	for _, s := range suggestions {
		choices = append(choices, types.SuggestionChoice{Suggestion: s, Original: original})
	}
	return choices
}
