package cleaner

import (
	"strings"
	"unicode/utf8"
)

// MaxContentLength is the maximum number of characters kept in
// ScrapedContent.Content.
const MaxContentLength = 40000

// Normalize collapses every run of whitespace (including newlines, tabs and
// Unicode spaces such as NBSP) into a single space and trims both ends.
//
//	Normalize("Hello\n\n  world") == "Hello world"
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns the first n characters of s. It never splits a
// multi-byte code point.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n || utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
