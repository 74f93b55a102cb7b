// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codec maps every reply shape the resolution engine can produce
// onto one ResolutionOutcome. Accepted shapes:
//
//   - a structured object {success, url|result, error}
//   - the same object serialized as text (optionally as a JSON string)
//   - a flat error string, from engines that cannot report structure
//
// Normalize is pure and total: anything it cannot classify becomes a
// Rejected outcome with a generic message.
package codec

import (
	"encoding/json"
	"strings"

	"github.com/pdiddy/scripture-links/pkg/types"
)

// Messages used when the reply carries no usable message of its own.
const (
	GenericRejection = "Unknown error occurred"
	MissingLocator   = "engine returned no locator"
)

// maxTextDepth bounds how many times a JSON string is unwrapped.
const maxTextDepth = 2

// Reply is the typed form of a structured engine reply. Adapters that
// build replies in Go (rather than receiving text) return this.
type Reply struct {
	Success bool
	URL     string
	Result  string

	// Error is a string, an ErrorDetail, a *ErrorDetail, or a map with a
	// "message" key.
	Error any
}

// ErrorDetail is the structured error carried by a failed Reply.
type ErrorDetail struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	Code        string   `json:"code,omitempty"`
}

// Normalize classifies raw into a ResolutionOutcome.
func Normalize(raw any) types.ResolutionOutcome {
	switch v := raw.(type) {
	case nil:
		return types.Rejected(GenericRejection, nil)
	case types.ResolutionOutcome:
		return fromOutcome(v)
	case Reply:
		return fromReply(v)
	case *Reply:
		if v == nil {
			return types.Rejected(GenericRejection, nil)
		}
		return fromReply(*v)
	case string:
		return fromText(v, 0)
	case []byte:
		return fromText(string(v), 0)
	case json.RawMessage:
		return fromText(string(v), 0)
	case map[string]any:
		return fromMap(v)
	default:
		return types.Rejected(GenericRejection, nil)
	}
}

// fromOutcome re-checks an outcome built by an adapter: a resolved outcome
// needs a locator, a rejected one a message, and anything else is generic.
func fromOutcome(o types.ResolutionOutcome) types.ResolutionOutcome {
	switch o.Kind {
	case types.OutcomeResolved:
		return resolvedFrom(o.URL, "")
	case types.OutcomeRejected:
		if strings.TrimSpace(o.Message) == "" {
			return types.Rejected(GenericRejection, nil)
		}
		out := types.Rejected(o.Message, o.Suggestions)
		out.Code = o.Code
		return out
	default:
		return types.Rejected(GenericRejection, nil)
	}
}

// fromText parses text as structured data first and falls back to
// treating the whole text as a flat error message.
func fromText(text string, depth int) types.ResolutionOutcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Rejected(GenericRejection, nil)
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return types.Rejected(text, nil)
	}

	switch v := decoded.(type) {
	case map[string]any:
		return fromMap(v)
	case string:
		if depth+1 >= maxTextDepth {
			return types.Rejected(strings.TrimSpace(v), nil)
		}
		return fromText(v, depth+1)
	default:
		return types.Rejected(GenericRejection, nil)
	}
}

func fromMap(m map[string]any) types.ResolutionOutcome {
	success, ok := m["success"].(bool)
	if !ok {
		return types.Rejected(GenericRejection, nil)
	}
	if success {
		url, _ := m["url"].(string)
		result, _ := m["result"].(string)
		return resolvedFrom(url, result)
	}
	return rejectedFrom(m["error"])
}

func fromReply(r Reply) types.ResolutionOutcome {
	if r.Success {
		return resolvedFrom(r.URL, r.Result)
	}
	return rejectedFrom(r.Error)
}

// resolvedFrom checks both accepted locator field names. A success reply
// without a locator is never treated as resolved.
func resolvedFrom(url, result string) types.ResolutionOutcome {
	if u := strings.TrimSpace(url); u != "" {
		return types.Resolved(u)
	}
	if u := strings.TrimSpace(result); u != "" {
		return types.Resolved(u)
	}
	return types.Rejected(MissingLocator, nil)
}

func rejectedFrom(e any) types.ResolutionOutcome {
	switch v := e.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return types.Rejected(GenericRejection, nil)
		}
		return types.Rejected(v, nil)
	case ErrorDetail:
		return fromDetail(v)
	case *ErrorDetail:
		if v == nil {
			return types.Rejected(GenericRejection, nil)
		}
		return fromDetail(*v)
	case map[string]any:
		msg, _ := v["message"].(string)
		if msg == "" {
			return types.Rejected(GenericRejection, nil)
		}
		code, _ := v["code"].(string)
		return fromDetail(ErrorDetail{
			Message:     msg,
			Suggestions: stringList(v["suggestions"]),
			Code:        code,
		})
	default:
		return types.Rejected(GenericRejection, nil)
	}
}

func fromDetail(d ErrorDetail) types.ResolutionOutcome {
	if d.Message == "" {
		return types.Rejected(GenericRejection, nil)
	}
	out := types.Rejected(d.Message, append([]string(nil), d.Suggestions...))
	out.Code = d.Code
	return out
}

// stringList accepts []string or a decoded JSON array; non-string
// elements are skipped and order is preserved.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...)
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
