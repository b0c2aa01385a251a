package scraper

import (
	"regexp"
	"strings"
)

// urlPattern finds http(s) URLs and bare www. hosts in free text.
var urlPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?[a-z0-9][a-z0-9-]+[a-z0-9]\.\S{2,}` +
	`|www\.[a-z0-9][a-z0-9-]+[a-z0-9]\.\S{2,}` +
	`|https?://(?:www\.)?[a-z0-9]+\.\S{2,}` +
	`|www\.[a-z0-9]+\.\S{2,}`)

// nextURL returns the bounds of the first URL in text at or after pos.
//
// A host right after the scheme must either be "www." or not start with
// "www" at all. RE2 has no lookahead, so that rule is applied here and the
// search resumes one byte later on a rejected match.
func nextURL(text string, pos int) (start, end int, ok bool) {
	for pos < len(text) {
		loc := urlPattern.FindStringIndex(text[pos:])
		if loc == nil {
			return 0, 0, false
		}
		start, end = pos+loc[0], pos+loc[1]
		if !gluedWWW(text[start:end]) {
			return start, end, true
		}
		pos = start + 1
	}
	return 0, 0, false
}

// gluedWWW reports whether m is a scheme URL whose host starts with "www"
// without the dot, as in http://wwwexample.com.
func gluedWWW(m string) bool {
	lower := strings.ToLower(m)
	_, host, found := strings.Cut(lower, "://")
	if !found {
		return false
	}
	return strings.HasPrefix(host, "www") && !strings.HasPrefix(host, "www.")
}

// FindURLs returns every URL-looking substring of text, in order.
func FindURLs(text string) []string {
	var urls []string
	for pos := 0; ; {
		start, end, ok := nextURL(text, pos)
		if !ok {
			return urls
		}
		urls = append(urls, text[start:end])
		pos = end
	}
}

// FirstURL returns the first URL in text. Bare www. hosts get an https://
// scheme so they can be fetched.
func FirstURL(text string) (string, bool) {
	start, end, ok := nextURL(text, 0)
	if !ok {
		return "", false
	}
	found := text[start:end]
	lower := strings.ToLower(found)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		found = "https://" + found
	}
	return found, true
}
