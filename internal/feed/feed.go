// Package feed assembles, serializes and persists the RSS 2.0 document.
package feed // import "github.com/jemtv/storyfeed/internal/feed"

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

const (
	atomNS    = "http://www.w3.org/2005/Atom"
	contentNS = "http://purl.org/rss/1.0/modules/content/"

	// The archive serves JPEG covers and exposes no content type to
	// forward, so every enclosure is declared as one.
	enclosureType = "image/jpeg"

	// rfc822GMT is the traditional RSS date layout. "GMT" is a literal
	// suffix, not a zone placeholder, so timestamps must be UTC already.
	rfc822GMT = "Mon, 02 Jan 2006 15:04:05 GMT"
)

type RSS struct {
	XMLName   xml.Name `xml:"rss"`
	Version   string   `xml:"version,attr"`
	AtomNS    string   `xml:"xmlns:atom,attr"`
	ContentNS string   `xml:"xmlns:content,attr"`
	Channel   Channel  `xml:"channel"`
}

type Channel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      *AtomLink `xml:"atom:link,omitempty"`
	Items         []*Item   `xml:"item"`
}

type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type Item struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link,omitempty"`
	GUID        GUID       `xml:"guid"`
	Description string     `xml:"description,omitempty"`
	Content     string     `xml:"content:encoded,omitempty"`
	Enclosure   *Enclosure `xml:"enclosure,omitempty"`
	Category    string     `xml:"category,omitempty"`
}

// GUID always carries an explicit isPermaLink attribute: "true" for item
// links, "false" for opaque archive ids.
type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr"`
}

type Enclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length string `xml:"length,attr"`
}

// Serialize renders the document UTF-8 encoded with the XML declaration,
// indented by two spaces.
func (self *RSS) Serialize() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(xml.Header)

	enc := xml.NewEncoder(&b)
	enc.Indent("", "  ")
	if err := enc.Encode(self); err != nil {
		return nil, fmt.Errorf("feed: encode rss document: %w", err)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Digest returns a stable hash of the document without its build
// timestamp, so an unchanged archive produces the same value run after
// run.
func (self *RSS) Digest() string {
	h := xxhash.New()
	w := func(parts ...string) {
		for _, s := range parts {
			_, _ = h.WriteString(s)
			_, _ = h.Write([]byte{0})
		}
	}

	ch := &self.Channel
	w(self.Version, ch.Title, ch.Link, ch.Description, ch.Language)
	if ch.AtomLink != nil {
		w(ch.AtomLink.Href)
	}

	for _, item := range ch.Items {
		w(item.Title, item.Link, item.GUID.Value, item.GUID.IsPermaLink,
			item.Description, item.Content, item.Category)
		if item.Enclosure != nil {
			w(item.Enclosure.URL)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
