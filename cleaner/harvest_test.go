package cleaner

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html>
<head>
  <title>Sample  Title</title>
  <meta name="description" content="Sample description">
  <style>body { color: red; }</style>
  <script>var hidden = "script text";</script>
</head>
<body>
  <h1>First H1</h1>
  <h1>Second H1</h1>
  <h2>Only H2</h2>
  <main>
    <article><p>Article paragraph.</p></article>
    <div class="post-content"><ul><li>Item A</li><li>Item B</li></ul></div>
  </main>
  <noscript>Enable JavaScript</noscript>
  <iframe src="https://ads.example.com"></iframe>
</body>
</html>`

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestHarvest_AllRegions(t *testing.T) {
	r := Harvest(parse(t, samplePage))

	assert.Equal(t, "Sample  Title", r.Title)
	assert.Equal(t, "Sample description", r.MetaDescription)
	assert.Equal(t, "First H1 Second H1", r.H1)
	assert.Equal(t, "Only H2", r.H2)
	assert.Equal(t, "Article paragraph.", r.Article)
	assert.Contains(t, r.Main, "Article paragraph.")
	assert.Contains(t, r.Main, "Item A")
	assert.Equal(t, "Item AItem B", r.ContentRegion)
	assert.Equal(t, "Article paragraph.", r.Paragraphs)
	assert.Equal(t, "Item A Item B", r.ListItems)
}

func TestHarvest_StripsNoise(t *testing.T) {
	doc := parse(t, samplePage)
	r := Harvest(doc)
	content := r.Build("u").Content

	assert.NotContains(t, content, "script text")
	assert.NotContains(t, content, "color: red")
	assert.NotContains(t, content, "Enable JavaScript")
	assert.Zero(t, doc.Find("script, style, noscript, iframe").Length())
}

func TestHarvest_ContentSelectorMatchesID(t *testing.T) {
	r := Harvest(parse(t, `<div id="content">by id</div><span class="content">by class</span>`))
	assert.Equal(t, "by id by class", r.ContentRegion)
}

func TestHarvest_MissingMeta(t *testing.T) {
	r := Harvest(parse(t, `<html><head><title>t</title></head><body><p>x</p></body></html>`))
	assert.Empty(t, r.MetaDescription)
	assert.Equal(t, "x", r.Paragraphs)
}
