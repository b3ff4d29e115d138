package web

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Normalize strips non-content markup from an HTML document and collapses
// it to clean plain text: script, style, and noscript blocks are removed,
// every text node lands on its own line, each line is trimmed, and empty
// lines are dropped. The canonical whitespace form keeps chunk boundaries
// stable across repeated runs on unchanged input.
//
// Normalize is a pure function of its input; applying it to its own output
// returns the same text.
func Normalize(rawHTML string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("web: parsing HTML: %w", err)
	}

	// Content of these elements must never be treated as document text.
	doc.Find("script, style, noscript").Remove()

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	var lines []string
	for _, p := range parts {
		for _, line := range strings.Split(p, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
