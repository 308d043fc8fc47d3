package page

import (
	"strings"

	"golang.org/x/net/html"
)

// The selector engine supports the subset the merchant registry actually
// uses:
//
//	tag            "a", "strong"
//	.class         ".grand-total-price"
//	#id            "#ppcTotal"
//	tag.class      "div.total"
//	[attr]         "[data-order-total]"
//	[attr=val]     `[data-testid="total-value"]`
//	A B            descendant combinator
//	A + B          adjacent-sibling combinator
type simpleSelector struct {
	tag     string
	id      string
	class   string
	attrKey string
	attrVal string
	hasAttr bool
}

// queryFirst returns the first node matching the selector in document
// order, or nil.
func queryFirst(root *html.Node, selector string) *html.Node {
	matches := querySelectorAll(root, selector)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// querySelectorAll returns every node matching a compound selector.
func querySelectorAll(root *html.Node, selector string) []*html.Node {
	parts := strings.Fields(selector)
	if len(parts) == 0 {
		return nil
	}

	matches := matchSimple(root, parts[0])
	for i := 1; i < len(parts); i++ {
		if parts[i] == "+" {
			// A + B: B must be the next element sibling of an A match.
			if i+1 >= len(parts) {
				return nil
			}
			i++
			sel := parseSimpleSelector(parts[i])
			var next []*html.Node
			for _, m := range matches {
				if sib := nextElementSibling(m); sib != nil && matchesSelector(sib, sel) {
					next = append(next, sib)
				}
			}
			matches = next
			continue
		}

		// Descendant combinator.
		var next []*html.Node
		seen := make(map[*html.Node]bool)
		for _, parent := range matches {
			for _, n := range matchSimple(parent, parts[i]) {
				if n != parent && !seen[n] {
					seen[n] = true
					next = append(next, n)
				}
			}
		}
		matches = next
	}
	return matches
}

func matchSimple(root *html.Node, part string) []*html.Node {
	sel := parseSimpleSelector(part)
	var results []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if matchesSelector(n, sel) {
			results = append(results, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

func parseSimpleSelector(part string) simpleSelector {
	var s simpleSelector

	if idx := strings.IndexByte(part, '['); idx >= 0 {
		attrPart := strings.TrimRight(part[idx+1:], "]")
		part = part[:idx]
		if eq := strings.IndexByte(attrPart, '='); eq >= 0 {
			s.attrKey = attrPart[:eq]
			s.attrVal = strings.Trim(attrPart[eq+1:], `"'`)
		} else {
			s.attrKey = attrPart
		}
		s.hasAttr = true
	}

	if idx := strings.IndexByte(part, '#'); idx >= 0 {
		s.id = part[idx+1:]
		part = part[:idx]
	}

	if idx := strings.IndexByte(part, '.'); idx >= 0 {
		s.class = part[idx+1:]
		part = part[:idx]
	}

	s.tag = part
	return s
}

func matchesSelector(n *html.Node, s simpleSelector) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && getAttr(n, "id") != s.id {
		return false
	}
	if s.class != "" && !hasClass(n, s.class) {
		return false
	}
	if s.hasAttr {
		val, ok := lookupAttr(n, s.attrKey)
		if !ok {
			return false
		}
		if s.attrVal != "" && val != s.attrVal {
			return false
		}
	}
	return true
}

func nextElementSibling(n *html.Node) *html.Node {
	for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type == html.ElementNode {
			return sib
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
