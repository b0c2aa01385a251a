package cleaner

import (
	"strings"

	"github.com/use-agent/pagegrab/models"
)

// Regions holds the raw text of the nine logical page regions that make up a
// ScrapedContent. Both the HTTP and the browser engines fill one of these and
// hand it to Build, so the two paths package results identically.
type Regions struct {
	Title           string `json:"title"`
	MetaDescription string `json:"metaDescription"`
	H1              string `json:"h1"`
	H2              string `json:"h2"`
	Article         string `json:"article"`
	Main            string `json:"main"`
	ContentRegion   string `json:"content"`
	Paragraphs      string `json:"paragraphs"`
	ListItems       string `json:"listItems"`
}

// Combined joins all nine regions with single spaces, in content order.
func (r Regions) Combined() string {
	return strings.Join([]string{
		r.Title,
		r.MetaDescription,
		r.H1,
		r.H2,
		r.Article,
		r.Main,
		r.ContentRegion,
		r.Paragraphs,
		r.ListItems,
	}, " ")
}

// Build packages r into a successful ScrapedContent for url.
func (r Regions) Build(url string) models.ScrapedContent {
	return models.ScrapedContent{
		URL:   url,
		Title: Normalize(r.Title),
		Headings: models.Headings{
			H1: Normalize(r.H1),
			H2: Normalize(r.H2),
		},
		MetaDescription: Normalize(r.MetaDescription),
		Content:         Truncate(Normalize(r.Combined()), MaxContentLength),
	}
}
