package api

import (
	"inkpress-backend/internal/domain"
)

// UpsertPostRequest is the expected body for POST/PUT /admin/posts.
type UpsertPostRequest struct {
	ID      string   `json:"id,omitempty"`
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Summary string   `json:"summary,omitempty"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags,omitempty"`
	Publish bool     `json:"publish"`
}

// UpsertPageRequest is the expected body for POST/PUT /admin/pages.
type UpsertPageRequest struct {
	ID      string `json:"id,omitempty"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Publish bool   `json:"publish"`
}

// PostListResponse is one page of a post listing.
type PostListResponse struct {
	Posts      []*domain.Post `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
	Total      int            `json:"total"`
}

// ArchiveResponse carries the tag and month aggregations.
type ArchiveResponse struct {
	Tags   []domain.TagCount   `json:"tags"`
	Months []domain.MonthCount `json:"months"`
}
