// Package sanitizer converts the archive's rich-text HTML into the minimal
// allow-listed fragment embedded in the generated feed, and extracts plain
// text for item descriptions.
package sanitizer // import "github.com/jemtv/storyfeed/internal/sanitizer"

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	allowedTags = map[atom.Atom]struct{}{
		atom.A:          {},
		atom.B:          {},
		atom.Blockquote: {},
		atom.Br:         {},
		atom.Em:         {},
		atom.H1:         {},
		atom.H2:         {},
		atom.H3:         {},
		atom.H4:         {},
		atom.H5:         {},
		atom.H6:         {},
		atom.Hr:         {},
		atom.I:          {},
		atom.Li:         {},
		atom.Ol:         {},
		atom.P:          {},
		atom.Strong:     {},
		atom.Sub:        {},
		atom.Sup:        {},
		atom.U:          {},
		atom.Ul:         {},
	}

	// Tags without an entry here keep no attributes at all.
	allowedAttrs = map[atom.Atom]map[string]struct{}{
		atom.A: {"href": {}},
	}

	renameTags = map[atom.Atom]atom.Atom{
		atom.B: atom.Strong,
		atom.I: atom.Em,
	}

	voidTags = map[atom.Atom]struct{}{
		atom.Br: {},
		atom.Hr: {},
	}

	multiSpaces = regexp.MustCompile(` {2,}`)
	blankLines  = regexp.MustCompile(`\n\s*\n`)
)

const nbsp = "\u00a0"

// Sanitize reduces rawHTML to the allow-listed subset: b/i renamed to
// strong/em, unknown wrappers unwrapped with their children kept in place,
// attributes stripped except a[href], blank leaf tags collapsed and
// whitespace normalized. Malformed input degrades to best-effort output,
// never an error.
func Sanitize(rawHTML string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}

	root, err := parseFragment(rawHTML)
	if err != nil {
		// The tokenizer consumes arbitrary bytes without failing; a reader
		// error cannot happen with a string input.
		return ""
	}

	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c)
		c = next
	}
	collapseBlankLeaves(root)

	return normalizeSpace(render(root))
}

func parseFragment(rawHTML string) (*html.Node, error) {
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Body.String(),
		DataAtom: atom.Body,
	}

	nodes, err := html.ParseFragment(strings.NewReader(rawHTML), ctx)
	if err != nil {
		return nil, err
	}

	root := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Body.String(),
		DataAtom: atom.Body,
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// cleanNode renames, unwraps and strips one node. Children are processed
// first, so arbitrarily nested disallowed wrappers unwrap in a single pass
// bounded by tree depth.
func cleanNode(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		return
	case html.ElementNode:
	default:
		// Comments and doctypes carry no story content.
		n.Parent.RemoveChild(n)
		return
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c)
		c = next
	}

	if a, ok := renameTags[n.DataAtom]; ok {
		n.DataAtom, n.Data = a, a.String()
	}

	if _, ok := allowedTags[n.DataAtom]; !ok || n.Namespace != "" {
		unwrap(n)
		return
	}
	stripAttrs(n)
}

// unwrap removes n but splices its children into the parent at the same
// position.
func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func stripAttrs(n *html.Node) {
	if len(n.Attr) == 0 {
		return
	}

	allowed := allowedAttrs[n.DataAtom]
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if _, ok := allowed[a.Key]; ok && a.Namespace == "" {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

// collapseBlankLeaves removes empty leaf tags and replaces whitespace-only
// ones with a single space, so "audience<em> </em>before" keeps its word
// boundary. Bottom-up: a parent emptied by this pass collapses too, which
// keeps Sanitize idempotent.
func collapseBlankLeaves(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		collapseBlankLeaves(c)
		c = next
	}

	if n.Type != html.ElementNode || n.DataAtom == atom.Body {
		return
	} else if _, ok := voidTags[n.DataAtom]; ok {
		return
	} else if hasElementChild(n) {
		return
	}

	// TrimSpace treats U+00A0 as white space, so a leaf holding only
	// entities like &nbsp; counts as blank too.
	text := textContent(n)
	if strings.TrimSpace(text) != "" {
		return
	}

	parent := n.Parent
	if text != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: " "}, n)
	}
	parent.RemoveChild(n)
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func render(root *html.Node) string {
	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// normalizeSpace works on the serialized string, so space runs spanning
// sibling text nodes collapse too.
func normalizeSpace(s string) string {
	s = strings.ReplaceAll(s, nbsp, " ")
	s = multiSpaces.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
