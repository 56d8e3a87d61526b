package source

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags are elements whose start marks a paragraph-level break.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "pre": true, "tr": true, "figcaption": true,
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// extractContent walks an HTML tree into a token stream, emitting a boundary
// wherever a new block element begins after at least one token, and a named
// section for each heading.
func extractContent(doc *html.Node) Content {
	var c Content

	markBoundary := func() {
		n := len(c.Tokens)
		if n == 0 {
			return
		}
		if len(c.Boundaries) > 0 && c.Boundaries[len(c.Boundaries)-1] == n {
			return
		}
		c.Boundaries = append(c.Boundaries, n)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
			if blockTags[n.Data] {
				markBoundary()
			}
			if headingTags[n.Data] {
				start := len(c.Tokens)
				for child := n.FirstChild; child != nil; child = child.NextSibling {
					walk(child)
				}
				if title := strings.Join(c.Tokens[start:], " "); title != "" {
					c.Sections = append(c.Sections, Section{Title: title, Start: start})
				}
				return
			}
		}
		if n.Type == html.TextNode {
			c.Tokens = append(c.Tokens, strings.Fields(n.Data)...)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return c
}
