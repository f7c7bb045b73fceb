package render

import "strings"

// Template placeholder markers. The splice replaces the first occurrence of
// each; a missing marker silently leaves that section unpopulated.
const (
	CardsMarker = "<!-- PROPERTIES_CARDS -->"
	DataMarker  = "<!-- PROPERTIES_DATA -->"
)

// The cards block is wrapped in start/end markers at insertion time so the
// content diff can recover exactly the generated section from a previously
// written output file.
const (
	cardsStart = "<!-- casabuild:cards:start -->"
	cardsEnd   = "<!-- casabuild:cards:end -->"
)

// SpliceTemplate fills the template's placeholder markers with the rendered
// cards block and the data script. Everything outside the markers passes
// through unchanged.
func SpliceTemplate(tpl, cardsHTML, dataScript string) string {
	block := cardsStart + "\n" + cardsHTML + "\n" + cardsEnd
	out := strings.Replace(tpl, CardsMarker, block, 1)
	out = strings.Replace(out, DataMarker, dataScript, 1)
	return out
}

// CardsSection extracts the generated cards block from a spliced document.
// ok is false when the document carries no block (e.g. the template had no
// cards marker, or the file predates this format).
func CardsSection(doc string) (section string, ok bool) {
	start := strings.Index(doc, cardsStart)
	if start == -1 {
		return "", false
	}
	end := strings.Index(doc[start:], cardsEnd)
	if end == -1 {
		return "", false
	}
	return doc[start : start+end+len(cardsEnd)], true
}
