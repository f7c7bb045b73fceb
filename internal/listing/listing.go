// Package listing models one entry of the real-estate feed as a
// loosely-typed tree and provides tolerant field extraction over it.
//
// The feed is optional-everything: a tag may be missing, present but empty,
// or wrapped one level inside a single-element sequence. Every accessor in
// this package substitutes a default instead of failing.
package listing

// Listing is one node of the feed tree. The root node represents a single
// feed item; nested elements are grouped by tag name, in document order.
//
// A Listing is read-only once produced by the feed parser. The pipeline
// never mutates feed data in place, only derives new values from it.
type Listing struct {
	Text     string
	Children map[string][]*Listing
}

// First returns the first child element for tag, or nil when the tag is
// absent or empty.
func (l *Listing) First(tag string) *Listing {
	if l == nil {
		return nil
	}
	nodes := l.Children[tag]
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// FirstText returns the text content of the first child element for tag,
// or "" when the tag is absent.
func (l *Listing) FirstText(tag string) string {
	node := l.First(tag)
	if node == nil {
		return ""
	}
	return node.Text
}
