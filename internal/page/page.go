// Package page gives the extraction pipeline a read-only view of a captured
// page: query one element through an ordered selector fallback chain, query
// all texts under a single selector, and read the URL, title, and visible
// body text. The concrete implementation parses HTML once and answers every
// query from the parsed tree.
package page

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Surface is the read-only capability set the classifier and extractor work
// against. Implementations must be safe for repeated queries.
type Surface interface {
	// QueryFirst tries each selector in priority order and returns the
	// trimmed text of the first matching element. The chain is a fallback,
	// not a union: searching stops at the first selector with a match.
	QueryFirst(selectors []string) (string, bool)

	// QueryAllText returns the trimmed, non-empty text of every element
	// matching one selector, in document order.
	QueryAllText(selector string) []string

	// Has reports whether any element matches the selector.
	Has(selector string) bool

	URL() string
	Title() string
	BodyText() string
}

// Document is a Surface over a parsed HTML document.
type Document struct {
	root  *html.Node
	url   string
	title string
}

// Parse builds a Document from raw HTML. The page title is taken from the
// <title> element unless an explicit title is given (a captured page knows
// its own document.title, which can differ after scripts run).
func Parse(rawHTML, url, title string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	d := &Document{root: root, url: url, title: title}
	if d.title == "" {
		if t := findByAtom(root, atom.Title); t != nil {
			d.title = strings.TrimSpace(collectText(t))
		}
	}
	return d, nil
}

func (d *Document) URL() string   { return d.url }
func (d *Document) Title() string { return d.title }

func (d *Document) QueryFirst(selectors []string) (string, bool) {
	for _, sel := range selectors {
		if n := queryFirst(d.root, sel); n != nil {
			return strings.TrimSpace(collectText(n)), true
		}
	}
	return "", false
}

func (d *Document) QueryAllText(selector string) []string {
	var texts []string
	for _, n := range querySelectorAll(d.root, selector) {
		if text := strings.TrimSpace(collectText(n)); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func (d *Document) Has(selector string) bool {
	return queryFirst(d.root, selector) != nil
}

// BodyText returns the visible text of the body with collapsed whitespace.
// Script and style content is excluded; it is never visible.
func (d *Document) BodyText() string {
	body := findByAtom(d.root, atom.Body)
	if body == nil {
		body = d.root
	}
	return collectText(body)
}

func findByAtom(root *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// collectText concatenates the text nodes under n, skipping script/style,
// separating fragments with single spaces and collapsing runs of
// whitespace.
func collectText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
