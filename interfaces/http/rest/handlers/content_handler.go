// Package handlers holds the thin HTTP handlers in front of the
// application services. They parse requests, call the service, and
// shape responses; everything cache-related happens in the middleware
// and services.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inkpress-backend/internal/domain"
	"inkpress-backend/internal/service"
	"inkpress-backend/pkg/api"
)

// ContentHandler serves the public read endpoints.
type ContentHandler struct {
	content *service.ContentService
	logger  *zap.Logger
}

// NewContentHandler creates the public read handler.
func NewContentHandler(content *service.ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{content: content, logger: logger}
}

// ListPosts handles GET /posts.
func (h *ContentHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.PostFilter{
		Tag:    query.Get("tag"),
		Month:  query.Get("month"),
		Search: query.Get("q"),
		Status: domain.StatusPublished,
	}
	cursor := domain.Cursor{After: query.Get("after")}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		cursor.Limit = limit
	}

	page, err := h.content.ListPosts(r.Context(), filter, cursor)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, api.PostListResponse{
		Posts:      page.Posts,
		NextCursor: page.NextCursor,
		Total:      page.Total,
	})
}

// GetPost handles GET /posts/{slug}.
func (h *ContentHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.content.GetPostBySlug(r.Context(), slug)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, post)
}

// GetPage handles GET /pages/{slug}.
func (h *ContentHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page, err := h.content.GetPageBySlug(r.Context(), slug)
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, page)
}

// GetArchive handles GET /archive: the tag and month aggregations.
func (h *ContentHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	tags, err := h.content.GetTagCounts(r.Context())
	if err != nil {
		api.FromError(w, err)
		return
	}
	months, err := h.content.GetMonthCounts(r.Context())
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, api.ArchiveResponse{Tags: tags, Months: months})
}

// GetNavigation handles GET /navigation.
func (h *ContentHandler) GetNavigation(w http.ResponseWriter, r *http.Request) {
	nav, err := h.content.GetNavigation(r.Context())
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, nav)
}

// GetSettings handles GET /settings (the public subset is served; the
// admin sees the same singleton through the admin API).
func (h *ContentHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.content.GetSiteSettings(r.Context())
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, settings)
}
