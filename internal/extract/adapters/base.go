package adapters

import (
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML parses an HTML document into a node tree.
func ParseHTML(content string) (*html.Node, error) {
	return html.Parse(strings.NewReader(content))
}

// Text collects the trimmed text content of a node subtree.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if part := Text(c); part != "" {
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(part)
		}
	}
	return b.String()
}

// Attr returns an attribute value, or "" when absent.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasClassPrefix reports whether any CSS class on the node starts with
// prefix. Styled-components class names carry generated hash suffixes
// (EventCard__Event-sc-…), so adapters match on the stable prefix.
func HasClassPrefix(n *html.Node, prefix string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, class := range strings.Fields(Attr(n, "class")) {
		if strings.HasPrefix(class, prefix) {
			return true
		}
	}
	return false
}

// HasClass reports whether the node carries the exact CSS class.
func HasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// FindAll walks the subtree collecting nodes matching pred.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if pred(node) {
			out = append(out, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// FindFirst returns the first node matching pred in document order.
func FindFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if pred(node) {
			found = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	if n != nil {
		walk(n)
	}
	return found
}

// Element matches an element node by tag name.
func Element(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// ElementWithAttr matches an element by tag and exact attribute value.
func ElementWithAttr(tag, key, val string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag && Attr(n, key) == val
	}
}

// ElementWithClassPrefix matches an element by tag and class prefix. An
// empty tag matches any element.
func ElementWithClassPrefix(tag, prefix string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		if tag != "" && n.Data != tag {
			return false
		}
		return HasClassPrefix(n, prefix)
	}
}

// MetaProperty returns the content of <meta property="..."> (og: tags), or
// "" when absent.
func MetaProperty(doc *html.Node, property string) string {
	meta := FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "meta" && Attr(n, "property") == property
	})
	return Attr(meta, "content")
}

// optional returns a *string for non-empty extracted text.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
