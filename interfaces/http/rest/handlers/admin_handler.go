package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"inkpress-backend/internal/cache"
	"inkpress-backend/internal/domain"
	"inkpress-backend/internal/service"
	"inkpress-backend/pkg/api"
)

// AdminHandler serves the write endpoints. Authentication sits in front
// of these routes and is out of this core's hands.
type AdminHandler struct {
	admin   *service.AdminService
	trigger *cache.WarmTrigger
	logger  *zap.Logger
}

// NewAdminHandler creates the admin write handler.
func NewAdminHandler(admin *service.AdminService, trigger *cache.WarmTrigger, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, trigger: trigger, logger: logger}
}

// UpsertPost handles POST /admin/posts.
func (h *AdminHandler) UpsertPost(w http.ResponseWriter, r *http.Request) {
	var req api.UpsertPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.StatusDraft
	publishedAt := time.Time{}
	if req.Publish {
		status = domain.StatusPublished
		publishedAt = time.Now()
	}

	post, err := h.admin.UpsertPost(r.Context(), &domain.Post{
		ID:          req.ID,
		Slug:        req.Slug,
		Title:       req.Title,
		Summary:     req.Summary,
		Body:        req.Body,
		Tags:        req.Tags,
		Status:      status,
		PublishedAt: publishedAt,
	})
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, post)
}

// DeletePost handles DELETE /admin/posts/{id}.
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// UpsertPage handles POST /admin/pages.
func (h *AdminHandler) UpsertPage(w http.ResponseWriter, r *http.Request) {
	var req api.UpsertPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.StatusDraft
	if req.Publish {
		status = domain.StatusPublished
	}

	page, err := h.admin.UpsertPage(r.Context(), &domain.Page{
		ID:     req.ID,
		Slug:   req.Slug,
		Title:  req.Title,
		Body:   req.Body,
		Status: status,
	})
	if err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, page)
}

// DeletePage handles DELETE /admin/pages/{id}.
func (h *AdminHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeletePage(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// UpdateSettings handles PUT /admin/settings.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.admin.UpdateSiteSettings(r.Context(), &settings); err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, settings)
}

// UpdateNavigation handles PUT /admin/navigation.
func (h *AdminHandler) UpdateNavigation(w http.ResponseWriter, r *http.Request) {
	var nav domain.Navigation
	if err := json.NewDecoder(r.Body).Decode(&nav); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.admin.UpdateNavigation(r.Context(), &nav); err != nil {
		api.FromError(w, err)
		return
	}
	api.Success(w, http.StatusOK, nav)
}

// WarmCache handles POST /admin/cache/warm: a manual warm trigger for
// operators.
func (h *AdminHandler) WarmCache(w http.ResponseWriter, r *http.Request) {
	h.trigger.Fire("manual")
	api.Success(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}
