package domain

import (
	"fmt"
	"regexp"
	"time"
)

// ThumbSourceType selects which thumbnail field is authoritative
// when rendering a dial's tile.
type ThumbSourceType string

const (
	// ThumbRemote fetches the image from ThumbURL; the payload is
	// cached into ThumbData at write time.
	ThumbRemote ThumbSourceType = "remote"
	// ThumbUpload uses a user-provided image stored in ThumbData.
	ThumbUpload ThumbSourceType = "upload"
	// ThumbDefault uses ThumbIndex into the built-in icon catalog.
	ThumbDefault ThumbSourceType = "default"
	// ThumbAuto derives the favicon from the URL at render time.
	ThumbAuto ThumbSourceType = "auto"
)

// Valid reports whether t is a known thumbnail source.
func (t ThumbSourceType) Valid() bool {
	switch t {
	case ThumbRemote, ThumbUpload, ThumbDefault, ThumbAuto:
		return true
	}
	return false
}

// Dial is a single bookmark tile on the dashboard.
type Dial struct {
	// ID is assigned by the store on creation; zero before persistence.
	ID int64 `json:"id"`

	// URL is stored without a scheme prefix (stripped on write, re-added
	// only when the tile is opened). Example: "github.com".
	URL string `json:"url"`

	// Title is the display label; non-empty.
	Title string `json:"title"`

	// Pos defines the display order within the owning group.
	// Dense and zero-based per group.
	Pos int `json:"pos"`

	// GroupID references the owning group; required.
	GroupID int64 `json:"groupId"`

	// ThumbSourceType says which of the three thumb fields below
	// is authoritative.
	ThumbSourceType ThumbSourceType `json:"thumbSourceType"`

	// ThumbURL is the remote image URL (ThumbRemote).
	ThumbURL string `json:"thumbUrl,omitempty"`

	// ThumbData is an inline base64 image payload (ThumbRemote, ThumbUpload).
	ThumbData string `json:"thumbData,omitempty"`

	// ThumbIndex indexes into the built-in icon catalog (ThumbDefault).
	// -1 means unset.
	ThumbIndex int `json:"thumbIndex"`

	// ClickCount is incremented each time the tile is activated.
	ClickCount int `json:"clickCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// schemePrefix matches the URI scheme prefixes stripped on write.
var schemePrefix = regexp.MustCompile(`^(https?://|ftp://|mailto:|file://|data:)`)

// NormalizeURL removes a leading URI scheme so stored URLs are
// scheme-less ("https://github.com" -> "github.com").
func NormalizeURL(raw string) string {
	return schemePrefix.ReplaceAllString(raw, "")
}

// Validate checks the fields required before a dial may be persisted.
func (d *Dial) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("dial title must not be empty")
	}
	if d.URL == "" {
		return fmt.Errorf("dial url must not be empty")
	}
	if d.GroupID == 0 {
		return fmt.Errorf("dial must reference a group")
	}
	if !d.ThumbSourceType.Valid() {
		return fmt.Errorf("unknown thumb source type %q", d.ThumbSourceType)
	}
	return nil
}
