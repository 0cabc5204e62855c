package page

import (
	"strings"

	"golang.org/x/net/html"
)

// walk visits node and every descendant in document order until visit
// returns false.
func walk(node *html.Node, visit func(*html.Node) bool) bool {
	if node == nil {
		return true
	}
	if node.Type == html.ElementNode && !visit(node) {
		return false
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// findFirst returns the first element with the given tag name, or nil.
func findFirst(root *html.Node, tag string) *html.Node {
	tag = strings.ToLower(tag)
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if strings.ToLower(n.Data) == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

// findAll returns every element with the given tag name in document order.
func findAll(root *html.Node, tag string) []*html.Node {
	tag = strings.ToLower(tag)
	var results []*html.Node
	walk(root, func(n *html.Node) bool {
		if strings.ToLower(n.Data) == tag {
			results = append(results, n)
		}
		return true
	})
	return results
}

// attr returns the value of the named attribute, matching case-insensitively.
func attr(node *html.Node, name string) string {
	if node == nil {
		return ""
	}
	for _, a := range node.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

// hasAttr reports whether the named attribute is present at all.
func hasAttr(node *html.Node, name string) bool {
	if node == nil {
		return false
	}
	for _, a := range node.Attr {
		if strings.EqualFold(a.Key, name) {
			return true
		}
	}
	return false
}

// textContent concatenates the text nodes under node.
func textContent(node *html.Node) string {
	if node == nil {
		return ""
	}
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(node)
	return sb.String()
}

// metaContent returns the content attribute of the first <meta> whose
// property or name attribute equals key. Both attribute forms are checked
// because publishers use them interchangeably for Open Graph and Twitter
// tags.
func metaContent(metas []*html.Node, key string) string {
	for _, meta := range metas {
		if strings.EqualFold(attr(meta, "property"), key) || strings.EqualFold(attr(meta, "name"), key) {
			if content := strings.TrimSpace(attr(meta, "content")); content != "" {
				return content
			}
		}
	}
	return ""
}

// metaContentAll returns the non-blank content values of every <meta>
// matching key, in document order.
func metaContentAll(metas []*html.Node, key string) []string {
	var values []string
	for _, meta := range metas {
		if strings.EqualFold(attr(meta, "property"), key) || strings.EqualFold(attr(meta, "name"), key) {
			if content := strings.TrimSpace(attr(meta, "content")); content != "" {
				values = append(values, content)
			}
		}
	}
	return values
}

// linkHref returns the trimmed href of the first <link> whose rel matches
// one of the given values (case-insensitive).
func linkHref(links []*html.Node, rels ...string) string {
	for _, link := range links {
		rel := strings.ToLower(strings.TrimSpace(attr(link, "rel")))
		for _, want := range rels {
			if rel == want {
				if href := strings.TrimSpace(attr(link, "href")); href != "" {
					return href
				}
			}
		}
	}
	return ""
}
