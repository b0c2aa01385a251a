package models

import "time"

// FailedToScrape is the error reason carried by the terminal failure result.
const FailedToScrape = "Failed to scrape URL"

// Headings holds the concatenated text of the page's h1 and h2 elements.
type Headings struct {
	H1 string `json:"h1"`
	H2 string `json:"h2"`
}

// ScrapedContent is the result of a single scrape and the value stored in the
// cache. A value is never modified after construction; WithCachedAt returns a
// stamped copy.
type ScrapedContent struct {
	// URL is the input string exactly as the caller supplied it.
	URL string `json:"url"`

	Title           string   `json:"title"`
	Headings        Headings `json:"headings"`
	MetaDescription string   `json:"metaDescription"`

	// Content is the normalised concatenation of every harvested region,
	// truncated to cleaner.MaxContentLength characters.
	Content string `json:"content"`

	// Error is nil on success and a short reason on failure.
	Error *string `json:"error"`

	// CachedAt is the epoch-millisecond time the value was written to the
	// cache. Zero until then.
	CachedAt int64 `json:"cachedAt,omitempty"`
}

// NewFailedContent returns the canonical failure result for url: every text
// field empty and Error set to FailedToScrape.
func NewFailedContent(url string) ScrapedContent {
	reason := FailedToScrape
	return ScrapedContent{
		URL:   url,
		Error: &reason,
	}
}

// Failed reports whether c carries an error reason.
func (c ScrapedContent) Failed() bool {
	return c.Error != nil
}

// ErrorString returns the error reason or "" on success.
func (c ScrapedContent) ErrorString() string {
	if c.Error == nil {
		return ""
	}
	return *c.Error
}

// WithCachedAt returns a copy of c stamped with t.
func (c ScrapedContent) WithCachedAt(t time.Time) ScrapedContent {
	if c.Error != nil {
		reason := *c.Error
		c.Error = &reason
	}
	c.CachedAt = t.UnixMilli()
	return c
}
