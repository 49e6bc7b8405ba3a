package editor

import (
	"reflect"
	"strings"
)

// TempIDPrefix marks entity IDs minted by the editing client before the
// server has assigned a permanent one.
const TempIDPrefix = "temp-"

// IsTempID reports whether an entity ID is a client-minted placeholder.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Link is the editor's working copy of one link. Order is positional:
// the index in the parent slice is the link's position.
type Link struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	MediaURL    string `json:"media_url"`
	MediaType   string `json:"media_type"`
	IsActive    bool   `json:"is_active"`
}

// Social is the editor's working copy of one social link.
type Social struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Profile is the editor's full working snapshot. BgEffects and BgPattern
// carry JSON documents opaque to the editor; they participate in diffs as
// plain strings.
type Profile struct {
	ProfileID      string   `json:"profile_id"`
	DisplayName    string   `json:"display_name"`
	Bio            string   `json:"bio"`
	AvatarURL      string   `json:"avatar_url"`
	Layout         string   `json:"layout"`
	Theme          string   `json:"theme"`
	BgType         string   `json:"bg_type"`
	BgColor        string   `json:"bg_color"`
	BgGradientFrom string   `json:"bg_gradient_from"`
	BgGradientTo   string   `json:"bg_gradient_to"`
	BgWallpaper    string   `json:"bg_wallpaper"`
	BgImage        string   `json:"bg_image"`
	BgEffects      string   `json:"bg_effects"`
	BgPattern      string   `json:"bg_pattern"`
	CardTexture    string   `json:"card_texture"`
	IsPublished    bool     `json:"is_published"`
	Links          []Link   `json:"links"`
	Socials        []Social `json:"socials"`
}

// Clone returns a deep copy; the slices are copied so mutating one
// snapshot never leaks into another.
func (p Profile) Clone() Profile {
	out := p
	out.Links = append([]Link(nil), p.Links...)
	out.Socials = append([]Social(nil), p.Socials...)
	return out
}

// normalized returns a copy with nil slices replaced by empty ones so
// deep comparison treats "no links" uniformly regardless of how the
// snapshot was decoded.
func (p Profile) normalized() Profile {
	out := p
	if out.Links == nil {
		out.Links = []Link{}
	}
	if out.Socials == nil {
		out.Socials = []Social{}
	}
	return out
}

// profilesEqual is the structural comparison behind dirty detection.
func profilesEqual(a, b Profile) bool {
	return reflect.DeepEqual(a.normalized(), b.normalized())
}

// linkContentEqual compares everything about a link except its identity.
// Position changes are handled by the reorder step, not per-link updates.
func linkContentEqual(a, b Link) bool {
	a.ID, b.ID = "", ""
	return a == b
}

func socialContentEqual(a, b Social) bool {
	a.ID, b.ID = "", ""
	return a == b
}
