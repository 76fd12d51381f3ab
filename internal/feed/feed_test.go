package feed

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dsh2dsh/gofeed/v2/options"
	"github.com/dsh2dsh/gofeed/v2/rss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jemtv/storyfeed/internal/config"
	"github.com/jemtv/storyfeed/internal/model"
)

func testBuilder(t *testing.T) *Builder {
	os.Clearenv()
	require.NoError(t, config.Load(""))

	b := NewBuilder(config.Opts.Channel)
	b.now = func() time.Time {
		return time.Date(2025, time.March, 2, 15, 4, 5, 0, time.UTC)
	}
	return b
}

func parseRSS(t *testing.T, doc *RSS) *rss.Feed {
	b, err := doc.Serialize()
	require.NoError(t, err)

	parsed, err := rss.NewParser().Parse(bytes.NewReader(b),
		options.WithSkipUnknownElements(true))
	require.NoError(t, err)
	return parsed
}

// xmlDoc redeclares the document for attribute-level assertions the rss
// parser abstracts away.
type xmlDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel xmlChannel `xml:"channel"`
}

type xmlChannel struct {
	Title         string     `xml:"title"`
	Language      string     `xml:"language"`
	LastBuildDate string     `xml:"lastBuildDate"`
	AtomLink      *xmlLink   `xml:"http://www.w3.org/2005/Atom link"`
	Items         []*xmlItem `xml:"item"`
}

type xmlLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type xmlItem struct {
	Title       string        `xml:"title"`
	GUID        xmlGUID       `xml:"guid"`
	Description string        `xml:"description"`
	Content     string        `xml:"encoded"`
	Enclosure   *xmlEnclosure `xml:"enclosure"`
	Category    string        `xml:"category"`
}

type xmlGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink string `xml:"isPermaLink,attr"`
}

type xmlEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length string `xml:"length,attr"`
}

func unmarshalRSS(t *testing.T, doc *RSS) *xmlDoc {
	b, err := doc.Serialize()
	require.NoError(t, err)

	var parsed xmlDoc
	require.NoError(t, xml.Unmarshal(b, &parsed))
	return &parsed
}

func TestBuilder_Build_channel(t *testing.T) {
	b := testBuilder(t)
	doc := b.Build(context.Background(), nil)

	parsed := parseRSS(t, doc)
	assert.Equal(t, "JEM.tv - Here's My Story Archive", parsed.GetTitle())
	assert.Equal(t, "https://videos.jem.tv/hms/archive", parsed.Link())
	assert.Contains(t, parsed.GetDescription(), "Auto-updated hourly")
	assert.Empty(t, parsed.Items)

	raw := unmarshalRSS(t, doc)
	assert.Equal(t, "2.0", raw.Version)
	assert.Equal(t, "en-us", raw.Channel.Language)
	assert.Equal(t, "Sun, 02 Mar 2025 15:04:05 GMT", raw.Channel.LastBuildDate)
	assert.Nil(t, raw.Channel.AtomLink, "no self url configured by default")
}

func TestBuilder_Build_selfLink(t *testing.T) {
	b := testBuilder(t)
	b.channel.SelfURL = "https://example.org/feed.xml"

	raw := unmarshalRSS(t, b.Build(context.Background(), nil))
	require.NotNil(t, raw.Channel.AtomLink)
	assert.Equal(t, "https://example.org/feed.xml", raw.Channel.AtomLink.Href)
	assert.Equal(t, "self", raw.Channel.AtomLink.Rel)
	assert.Equal(t, "application/rss+xml", raw.Channel.AtomLink.Type)
}

func TestBuilder_Build_items(t *testing.T) {
	b := testBuilder(t)
	stories := []*model.Story{
		{
			ID:          "1",
			Name:        "Full Story",
			Link:        "https://example.org/s/1",
			Description: "<p>Short intro.</p>",
			Content:     `<div><span>Hello <b>world</b></span></div>`,
			Image:       "https://example.org/i/1.jpg",
			Thumbnail:   "https://example.org/t/1.jpg",
			IssueNumber: "12",
		},
		{
			ID:      "42",
			Name:    "",
			Content: "<p>Hi</p>",
		},
		{
			ID:        "3",
			Name:      "Bare Story",
			Thumbnail: "https://example.org/t/3.jpg",
		},
	}

	doc := b.Build(context.Background(), stories)
	parsed := parseRSS(t, doc)
	require.Len(t, parsed.Items, 3)

	full := parsed.Items[0]
	assert.Equal(t, "Full Story", full.GetTitle())
	assert.Equal(t, "https://example.org/s/1", full.Link())
	assert.Equal(t, "Hello <strong>world</strong>", full.GetContent())
	assert.Equal(t, []string{"Issue 12"},
		slices.Collect(full.AllCategories()))
	for enc := range full.AllEnclosures() {
		assert.Equal(t, "https://example.org/i/1.jpg", enc.URL)
		assert.Equal(t, "image/jpeg", enc.Type)
		assert.Equal(t, "0", enc.Length)
	}

	untitled := parsed.Items[1]
	assert.Equal(t, "Untitled Story", untitled.GetTitle())
	require.NotNil(t, untitled.GUID)
	assert.Equal(t, "42", untitled.GUID.Value)
	assert.Equal(t, "<p>Hi</p>", untitled.GetContent())

	raw := unmarshalRSS(t, doc)
	require.Len(t, raw.Channel.Items, 3)

	assert.Equal(t, "true", raw.Channel.Items[0].GUID.IsPermaLink)
	assert.Equal(t, "https://example.org/s/1", raw.Channel.Items[0].GUID.Value)
	assert.Equal(t, "Short intro.", raw.Channel.Items[0].Description)

	assert.Equal(t, "false", raw.Channel.Items[1].GUID.IsPermaLink)
	assert.Equal(t, "Hi", raw.Channel.Items[1].Description,
		"description falls back to extracted content")

	bare := raw.Channel.Items[2]
	assert.Empty(t, bare.Description)
	assert.Empty(t, bare.Content)
	assert.Empty(t, bare.Category)
	require.NotNil(t, bare.Enclosure)
	assert.Equal(t, "https://example.org/t/3.jpg", bare.Enclosure.URL,
		"thumbnail serves when there is no image")
}

func TestBuilder_Build_descriptionTruncated(t *testing.T) {
	b := testBuilder(t)
	stories := []*model.Story{
		{ID: "1", Name: "Long", Description: strings.Repeat("x", 400)},
	}

	raw := unmarshalRSS(t, b.Build(context.Background(), stories))
	require.Len(t, raw.Channel.Items, 1)

	desc := raw.Channel.Items[0].Description
	assert.Len(t, desc, 300)
	assert.True(t, strings.HasSuffix(desc, "..."))
}

func TestBuilder_Build_orderPreserved(t *testing.T) {
	b := testBuilder(t)

	stories := make([]*model.Story, 40)
	for i := range stories {
		stories[i] = &model.Story{
			ID:      model.Scalar(fmt.Sprint(i)),
			Name:    fmt.Sprintf("Story %d", i),
			Content: fmt.Sprintf("<p>Body %d</p>", i),
		}
	}

	parsed := parseRSS(t, b.Build(context.Background(), stories))
	require.Len(t, parsed.Items, len(stories))
	for i, item := range parsed.Items {
		assert.Equal(t, fmt.Sprintf("Story %d", i), item.GetTitle())
	}
}

func TestRSS_Serialize(t *testing.T) {
	b := testBuilder(t)
	out, err := b.Build(context.Background(), []*model.Story{
		{ID: "1", Name: "A"},
	}).Serialize()
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s,
		`<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s,
		`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom"`+
			` xmlns:content="http://purl.org/rss/1.0/modules/content/">`)
	assert.Contains(t, s, "\n  <channel>")
	assert.Contains(t, s, "\n    <item>")
	assert.True(t, strings.HasSuffix(s, "\n"))
}

func TestRSS_Digest(t *testing.T) {
	b := testBuilder(t)
	stories := []*model.Story{
		{ID: "1", Name: "A", Content: "<p>a</p>"},
		{ID: "2", Name: "B", Content: "<p>b</p>"},
	}

	first := b.Build(context.Background(), stories).Digest()

	b.now = func() time.Time {
		return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	assert.Equal(t, first, b.Build(context.Background(), stories).Digest(),
		"build timestamp must not change the digest")

	stories[1].Name = "B2"
	changed := b.Build(context.Background(), stories).Digest()
	assert.NotEqual(t, first, changed)

	slices.Reverse(stories)
	assert.NotEqual(t, changed,
		b.Build(context.Background(), stories).Digest(),
		"item order is part of the digest")
}
