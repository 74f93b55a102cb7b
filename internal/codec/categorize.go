// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package codec

import "strings"

// Error codes assigned to rejections that arrive without one.
const (
	CodeInvalidFormat  = "INVALID_FORMAT"
	CodeUnknownBook    = "UNKNOWN_BOOK"
	CodeInvalidChapter = "INVALID_CHAPTER"
	CodeInvalidVerse   = "INVALID_VERSE"
	CodeParseError     = "PARSE_ERROR"
)

// Categorize derives an error code from a rejection message using the
// phrasing of the reference engine.
func Categorize(message string) string {
	switch {
	case strings.Contains(message, "Invalid scripture reference format"):
		return CodeInvalidFormat
	case strings.Contains(message, "Unknown book abbreviation"):
		return CodeUnknownBook
	case strings.Contains(message, "Chapter") && strings.Contains(message, "does not exist"):
		return CodeInvalidChapter
	case strings.Contains(message, "Verse") && strings.Contains(message, "does not exist"):
		return CodeInvalidVerse
	default:
		return CodeParseError
	}
}
