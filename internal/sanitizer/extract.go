package sanitizer // import "github.com/jemtv/storyfeed/internal/sanitizer"

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractText returns the text content of rawHTML with all markup removed.
// Text chunks from adjacent tags are joined with a single space, so
// "<p>Para 1</p><p>Para 2</p>" becomes "Para 1 Para 2" instead of
// "Para 1Para 2". Entities are decoded and runs of white space collapse to
// one space.
func ExtractText(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	root, err := parseFragment(rawHTML)
	if err != nil {
		return ""
	}

	parts := appendText(nil, root)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func appendText(parts []string, n *html.Node) []string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			parts = append(parts, c.Data)
		case html.ElementNode:
			parts = appendText(parts, c)
		}
	}
	return parts
}
