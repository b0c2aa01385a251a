package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Selector strings for each region. The browser engine's evaluation script is
// built from the same strings so both engines look at the same elements.
const (
	SelectorTitle           = "title"
	SelectorMetaDescription = `meta[name="description"]`
	SelectorH1              = "h1"
	SelectorH2              = "h2"
	SelectorArticle         = "article"
	SelectorMain            = "main"
	SelectorContentRegion   = `.content, #content, [class*="content"]`
	SelectorParagraph       = "p"
	SelectorListItem        = "li"

	// SelectorNoise matches nodes removed before any text is harvested.
	SelectorNoise = "script, style, noscript, iframe"
)

// Compiled once; cascadia matchers are safe for concurrent use.
var (
	matchTitle         = cascadia.MustCompile(SelectorTitle)
	matchMeta          = cascadia.MustCompile(SelectorMetaDescription)
	matchH1            = cascadia.MustCompile(SelectorH1)
	matchH2            = cascadia.MustCompile(SelectorH2)
	matchArticle       = cascadia.MustCompile(SelectorArticle)
	matchMain          = cascadia.MustCompile(SelectorMain)
	matchContentRegion = cascadia.MustCompile(SelectorContentRegion)
	matchParagraph     = cascadia.MustCompile(SelectorParagraph)
	matchListItem      = cascadia.MustCompile(SelectorListItem)
	matchNoise         = cascadia.MustCompile(SelectorNoise)
)

// Harvest strips non-content nodes from doc and collects the text of every
// region. Each region joins the text of ALL matching elements with a single
// space. The document is modified in place.
func Harvest(doc *goquery.Document) Regions {
	// The title is read before stripping so an odd <title> inside <noscript>
	// is still seen.
	title := doc.FindMatcher(matchTitle).Text()

	doc.FindMatcher(matchNoise).Remove()

	meta, _ := doc.FindMatcher(matchMeta).First().Attr("content")

	return Regions{
		Title:           title,
		MetaDescription: meta,
		H1:              joinText(doc.FindMatcher(matchH1)),
		H2:              joinText(doc.FindMatcher(matchH2)),
		Article:         joinText(doc.FindMatcher(matchArticle)),
		Main:            joinText(doc.FindMatcher(matchMain)),
		ContentRegion:   joinText(doc.FindMatcher(matchContentRegion)),
		Paragraphs:      joinText(doc.FindMatcher(matchParagraph)),
		ListItems:       joinText(doc.FindMatcher(matchListItem)),
	}
}

// joinText returns the text of each element in sel joined by one space.
func joinText(sel *goquery.Selection) string {
	parts := sel.Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	return strings.Join(parts, " ")
}
