package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvella/casabuild/internal/classify"
	"github.com/mvella/casabuild/internal/listing"
)

func parseFragment(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func sampleCard() listing.Card {
	return listing.Card{
		Title:            "Attico con vista lago",
		City:             "Lugano",
		Region:           "Ticino",
		Province:         "TI",
		Price:            500000,
		Currency:         "CHF",
		Description:      "Splendido attico al sesto piano",
		ShortDescription: "Splendido attico al sesto piano",
		ImageURL:         "https://img.example/attico.jpg",
		DetailLink:       "https://www.casavella.ch/proprieta?codice=A1",
		CategoryCodes:    "RA",
		Area:             "140",
		Rooms:            "4",
		Bedrooms:         "3",
		Bathrooms:        "2",
	}
}

func sampleResult() classify.Result {
	return classify.Result{
		Category: classify.CategoryApartment,
		Contract: classify.ContractSale,
		Features: []classify.Feature{classify.FeatureView, classify.FeaturePenthouse},
	}
}

func TestCard_DataAttributes(t *testing.T) {
	r := NewRenderer("https://www.casavella.ch/contatti")
	html, err := r.Card(sampleCard(), sampleResult())
	require.NoError(t, err)

	sel := parseFragment(t, html).Find(".property-card")
	require.Equal(t, 1, sel.Length())

	attrs := map[string]string{
		"data-contratto":        "vendita",
		"data-categoria":        "appartamento",
		"data-categoria-codici": "RA",
		"data-caratteristiche":  "vista,attico",
		"data-comune":           "lugano",
		"data-regione":          "ticino",
		"data-provincia":        "ti",
		"data-prezzo":           "500000",
		"data-mq":               "140",
		"data-vani":             "4",
		"data-camere":           "3",
		"data-bagni":            "2",
	}
	for name, expected := range attrs {
		got, exists := sel.Attr(name)
		assert.True(t, exists, name)
		assert.Equal(t, expected, got, name)
	}
}

func TestCard_VisibleFields(t *testing.T) {
	r := NewRenderer("")
	html, err := r.Card(sampleCard(), sampleResult())
	require.NoError(t, err)

	doc := parseFragment(t, html)
	assert.Equal(t, "Attico con vista lago", doc.Find(".property-title").Text())
	assert.Equal(t, "Lugano, Ticino", doc.Find(".property-location").Text())
	assert.Equal(t, "CHF 500'000", doc.Find(".property-price").Text())
	assert.Contains(t, doc.Find(".property-specs").Text(), "140 m²")

	link, _ := doc.Find(".view-button").Attr("href")
	assert.Equal(t, "https://www.casavella.ch/proprieta?codice=A1", link)
	assert.Equal(t, 0, doc.Find(".contact-button").Length(), "no contact URL configured")
}

func TestCard_ContactButton(t *testing.T) {
	r := NewRenderer("https://www.casavella.ch/contatti")
	html, err := r.Card(sampleCard(), sampleResult())
	require.NoError(t, err)

	href, exists := parseFragment(t, html).Find(".contact-button").Attr("href")
	assert.True(t, exists)
	assert.Equal(t, "https://www.casavella.ch/contatti", href)
}

func TestCard_LocationWithoutRegion(t *testing.T) {
	c := sampleCard()
	c.Region = ""
	r := NewRenderer("")
	html, err := r.Card(c, sampleResult())
	require.NoError(t, err)

	assert.Equal(t, "Lugano", parseFragment(t, html).Find(".property-location").Text())
}

func TestCard_EscapesFeedContent(t *testing.T) {
	c := sampleCard()
	c.Title = `<script>alert("x")</script>`
	c.ShortDescription = `a "quoted" <b>description</b>`

	r := NewRenderer("")
	html, err := r.Card(c, sampleResult())
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert")
	assert.NotContains(t, html, "<b>description</b>")

	// The parsed DOM sees the literal text, not injected elements.
	doc := parseFragment(t, html)
	assert.Equal(t, `<script>alert("x")</script>`, doc.Find(".property-title").Text())
	assert.Equal(t, 0, doc.Find(".property-description b").Length())
}

func TestCard_Degenerate(t *testing.T) {
	r := NewRenderer("")
	html, err := r.Card(listing.Card{Degenerate: true}, classify.Result{})
	require.NoError(t, err)
	assert.Equal(t, "", html)
}

func TestJoinCards(t *testing.T) {
	assert.Equal(t, "a\nb", JoinCards([]string{"a", "", "b", ""}))
	assert.Equal(t, "", JoinCards(nil))
}

func TestDataScript(t *testing.T) {
	cards := []listing.Card{sampleCard(), {Degenerate: true}}
	results := []classify.Result{sampleResult(), {}}

	script, err := DataScript(cards, results)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "<script>let propertiesData = ["))
	assert.True(t, strings.HasSuffix(script, "];</script>"))
	assert.Contains(t, script, `"title":"Attico con vista lago"`)
	assert.Contains(t, script, `"price":"CHF 500'000"`)
	assert.NotContains(t, script, `"title":""`, "degenerate listing excluded")
}

func TestDataScript_EscapesAngleBrackets(t *testing.T) {
	c := sampleCard()
	c.Title = "</script><script>alert(1)"
	script, err := DataScript([]listing.Card{c}, []classify.Result{sampleResult()})
	require.NoError(t, err)
	assert.NotContains(t, script, "</script><script>alert")
}

const testTemplate = `<html><body>
<div class="properties-grid">
<!-- PROPERTIES_CARDS -->
</div>
<!-- PROPERTIES_DATA -->
</body></html>`

func TestSpliceTemplate(t *testing.T) {
	out := SpliceTemplate(testTemplate, "<div>card</div>", "<script>let propertiesData = [];</script>")

	assert.NotContains(t, out, CardsMarker)
	assert.NotContains(t, out, DataMarker)
	assert.Contains(t, out, "<div>card</div>")
	assert.Contains(t, out, "propertiesData")

	section, ok := CardsSection(out)
	require.True(t, ok)
	assert.Contains(t, section, "<div>card</div>")
}

func TestSpliceTemplate_MissingMarkersAreNotAnError(t *testing.T) {
	tpl := "<html><body>static page</body></html>"
	out := SpliceTemplate(tpl, "<div>card</div>", "<script></script>")
	assert.Equal(t, tpl, out, "template without markers passes through unchanged")
}

func TestSpliceTemplate_ReplacesFirstOccurrenceOnly(t *testing.T) {
	tpl := "A <!-- PROPERTIES_CARDS --> B <!-- PROPERTIES_CARDS --> C"
	out := SpliceTemplate(tpl, "X", "")
	assert.Contains(t, out, "B <!-- PROPERTIES_CARDS --> C")
}

func TestCardsSection_Roundtrip(t *testing.T) {
	first := SpliceTemplate(testTemplate, "<div>v1</div>", "")
	second := SpliceTemplate(testTemplate, "<div>v1</div>", "")
	changed := SpliceTemplate(testTemplate, "<div>v2</div>", "")

	s1, ok1 := CardsSection(first)
	s2, ok2 := CardsSection(second)
	s3, ok3 := CardsSection(changed)
	require.True(t, ok1 && ok2 && ok3)

	assert.Equal(t, s1, s2, "identical cards produce identical sections")
	assert.NotEqual(t, s1, s3)
}

func TestCardsSection_AbsentBlock(t *testing.T) {
	_, ok := CardsSection("<html>no block here</html>")
	assert.False(t, ok)
}
