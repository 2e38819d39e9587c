// HTML flattening for tab reads.
//
// Walks the parsed document, skipping non-content elements, and
// collects the visible text plus the document title. Used by tab
// implementations that can only hand back raw HTML.

package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// skippedElements are dropped entirely during text flattening.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"svg":      true,
}

// FlattenHTML extracts the document title and visible text from raw
// HTML. The returned text is whitespace-normalized.
func FlattenHTML(rawHTML string) (title, text string, err error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var builder strings.Builder
	collectText(doc, &builder, &title)
	return title, NormalizeWhitespace(builder.String()), nil
}

// collectText walks the node tree appending text content, capturing
// the first <title> on the way.
func collectText(n *html.Node, builder *strings.Builder, title *string) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if name == "title" && *title == "" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				*title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		if skippedElements[name] {
			return
		}
	}

	if n.Type == html.TextNode {
		builder.WriteString(n.Data)
		builder.WriteString(" ")
		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, builder, title)
	}
}
