// Package model declares the archive wire records shared by the fetch and
// feed layers.
package model // import "github.com/jemtv/storyfeed/internal/model"

import (
	"encoding/json"
	"fmt"
)

const defaultTitle = "Untitled Story"

// Scalar holds an archive field served inconsistently as a JSON string,
// number or null. It decodes to the value's string form, with null and
// absent both empty.
type Scalar string

var _ json.Unmarshaler = (*Scalar)(nil)

func (self *Scalar) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*self = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("model: unmarshal scalar string: %w", err)
		}
		*self = Scalar(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("model: unmarshal scalar %q: %w", b, err)
	}
	*self = Scalar(n)
	return nil
}

func (self Scalar) String() string { return string(self) }

// Story is one record of the paginated archive listing. Every field is
// optional and may arrive as null.
type Story struct {
	ID          Scalar `json:"id"`
	Name        string `json:"name"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	Thumbnail   string `json:"thumbnail"`
	IssueNumber Scalar `json:"issue_number"`
}

// Title returns the story name, or a placeholder when the record has none.
func (self *Story) Title() string {
	if self.Name == "" {
		return defaultTitle
	}
	return self.Name
}

// GUID returns the item identifier and whether it is a permanent link. A
// story with a link uses it as permalink guid; otherwise the archive id
// serves as an opaque one.
func (self *Story) GUID() (guid string, isPermaLink bool) {
	if self.Link != "" {
		return self.Link, true
	}
	return self.ID.String(), false
}

// Summary returns the raw field feeding the item description: the story
// description, falling back to its content.
func (self *Story) Summary() string {
	if self.Description != "" {
		return self.Description
	}
	return self.Content
}

// EnclosureURL returns the story image, falling back to its thumbnail.
func (self *Story) EnclosureURL() string {
	if self.Image != "" {
		return self.Image
	}
	return self.Thumbnail
}

// Category returns the issue label, or empty when the story has no issue
// number. Zero counts as none in both forms the archive serves it.
func (self *Story) Category() string {
	if n := self.IssueNumber.String(); n != "" && n != "0" {
		return "Issue " + n
	}
	return ""
}
