package parser

import (
	"fmt"
	"io"
	"strings"

	"docorganizer/internal/section"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. Heading tags drive the section tree; all
// other elements contribute content blocks to the deepest open section.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*section.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	if t := findTitle(doc); t != "" {
		title = t
	}

	root := section.NewRoot()
	stack := newSectionStack(root)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		// Text reached here is not inside any handled element below (those
		// return without recursing), so this is its only collection point.
		if n.Type == html.TextNode {
			stack.current().AddContent(strings.TrimSpace(n.Data))
			return
		}

		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				stack.openSection(textContent(n), level)
				return // Heading text already extracted; don't recurse.
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "pre":
				stack.current().AddContent(fenceCode(rawText(n)))
				return
			case "p", "li", "td", "th", "dt", "dd", "figcaption", "blockquote":
				stack.current().AddContent(textContent(n))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	// Find <body> or use whole document.
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return &section.Document{Title: title, Root: root}, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// textContent extracts trimmed plain text from a node's subtree.
func textContent(n *html.Node) string {
	return strings.TrimSpace(rawText(n))
}

// rawText extracts text without trimming, preserving code whitespace.
func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
