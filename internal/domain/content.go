// Package domain defines the read models the content-management backend
// serves and caches: posts, pages, site settings, navigation, and API
// keys. These are plain values; persistence lives behind the repository
// interfaces and is out of this core's hands.
package domain

import (
	"time"
)

// PostStatus is the publication state of a post or page.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

// Post is one article of the site.
type Post struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Body        string     `json:"body"`
	Tags        []string   `json:"tags,omitempty"`
	Status      PostStatus `json:"status"`
	PublishedAt time.Time  `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Page is a standalone page (about, contact, ...).
type Page struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Status    PostStatus `json:"status"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PostFilter narrows a post listing. The zero value selects all
// published posts.
type PostFilter struct {
	Tag    string     `json:"tag,omitempty"`
	Month  string     `json:"month,omitempty"` // "2026-01"
	Status PostStatus `json:"status,omitempty"`
	Search string     `json:"search,omitempty"`
}

// Cursor is an opaque pagination position.
type Cursor struct {
	After string `json:"after,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts      []*Post `json:"posts"`
	NextCursor string  `json:"next_cursor,omitempty"`
	Total      int     `json:"total"`
}

// TagCount is one entry of the tag aggregation.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// MonthCount is one entry of the archive-month aggregation.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// SiteSettings is the singleton site configuration edited in the admin.
type SiteSettings struct {
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	BaseURL      string    `json:"base_url"`
	PostsPerPage int       `json:"posts_per_page"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NavigationItem is one entry of the site navigation.
type NavigationItem struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// Navigation is the ordered site navigation singleton.
type Navigation struct {
	Items     []NavigationItem `json:"items"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// APIKey is the read model of an issued API key. Only the prefix and
// hash are held; issuance and verification are out of scope here.
type APIKey struct {
	Prefix    string    `json:"prefix"`
	Name      string    `json:"name"`
	Hash      string    `json:"-"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
