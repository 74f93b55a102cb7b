// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import (
	"net/url"
	"regexp"
	"strings"
)

// LocatorDomain is the fixed external domain every resolved locator lives under.
const LocatorDomain = "https://www.churchofjesuschrist.org"

const locatorHost = "www.churchofjesuschrist.org"

// linkPattern matches a markdown link whose target is under LocatorDomain.
var linkPattern = regexp.MustCompile(`\[.*?\]\(` + regexp.QuoteMeta(LocatorDomain))

// CountLinks returns the number of markdown links into LocatorDomain found
// in text. This is a heuristic over the annotated output, not a count
// reported by the engine, and can over- or under-count on unusual input.
func CountLinks(text string) int {
	return len(linkPattern.FindAllStringIndex(text, -1))
}

// IsLocator reports whether s is an absolute https address on the locator host.
func IsLocator(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, LocatorDomain) {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host == locatorHost
}
