// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package share maps resolved citations to the "ref" query parameter that
// makes a result shareable, and back.
package share

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// Param is the query parameter carrying a share token.
const Param = "ref"

// ToToken lower-cases citation and strips periods and all whitespace.
// The mapping is stable but not invertible: "Gen. 1:1" and "gen 1:1"
// share the token "gen1:1".
func ToToken(citation string) string {
	var b strings.Builder
	b.Grow(len(citation))
	for _, r := range strings.ToLower(citation) {
		if r == '.' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FromToken returns the token unchanged; the engine accepts the normalized
// form as a citation.
func FromToken(token string) string {
	return token
}

// Location is the addressable location of the current page. Mutations
// rewrite the query in place and never navigate.
type Location struct {
	u *url.URL
}

// Parse builds a Location from an absolute or relative address.
func Parse(raw string) (*Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", raw, err)
	}
	return &Location{u: u}, nil
}

// NewLocation wraps u. A nil u yields an empty relative location.
func NewLocation(u *url.URL) *Location {
	if u == nil {
		u = &url.URL{}
	}
	clone := *u
	return &Location{u: &clone}
}

// SetRef sets ref=token, replacing any previous value.
func (l *Location) SetRef(token string) {
	q := l.u.Query()
	q.Set(Param, token)
	l.u.RawQuery = q.Encode()
}

// ClearRef removes the ref parameter.
func (l *Location) ClearRef() {
	q := l.u.Query()
	if !q.Has(Param) {
		return
	}
	q.Del(Param)
	l.u.RawQuery = q.Encode()
}

// Ref returns the ref parameter and whether it is present and non-empty.
func (l *Location) Ref() (string, bool) {
	v := strings.TrimSpace(l.u.Query().Get(Param))
	return v, v != ""
}

// String returns the full address.
func (l *Location) String() string {
	return l.u.String()
}

// Link returns base with ref set to the token of citation.
func Link(base, citation string) (string, error) {
	loc, err := Parse(base)
	if err != nil {
		return "", err
	}
	loc.SetRef(ToToken(citation))
	return loc.String(), nil
}
