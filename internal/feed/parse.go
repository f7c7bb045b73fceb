package feed

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/mvella/casabuild/internal/listing"
)

// ParseFeed converts raw feed bytes into generic listing trees. The dialect
// locates the repeated item element; everything below it is kept as-is so
// the extractor can apply its own defaults.
func ParseFeed(data []byte, dialect listing.Dialect) ([]*listing.Listing, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ParseError{Cause: err}
	}

	items := doc.FindElements(dialect.ItemPath)
	listings := make([]*listing.Listing, 0, len(items))
	for _, el := range items {
		listings = append(listings, fromElement(el))
	}
	return listings, nil
}

// fromElement converts one XML element into the loosely-typed tree,
// grouping children by tag in document order.
func fromElement(el *etree.Element) *listing.Listing {
	node := &listing.Listing{
		Text:     strings.TrimSpace(el.Text()),
		Children: map[string][]*listing.Listing{},
	}
	for _, child := range el.ChildElements() {
		node.Children[child.Tag] = append(node.Children[child.Tag], fromElement(child))
	}
	return node
}
