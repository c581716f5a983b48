package common

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML extracts the plain text from an HTML fragment. Azure DevOps
// returns rich-text fields (System.Description, repro steps) as HTML;
// the matcher and report renderers only want the text.
//
// Invalid markup never fails: the tokenizer consumes whatever it is
// given and the raw input is returned when no text nodes were found.
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<>") {
		return strings.TrimSpace(fragment)
	}

	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var text strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		// Block elements become word boundaries
		if n.Type == html.ElementNode {
			switch n.Data {
			case "br", "p", "div", "li", "tr":
				text.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(node)

	return strings.Join(strings.Fields(text.String()), " ")
}
