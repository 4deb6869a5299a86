package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

func (h *Handler) ListGeneratedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.db.GeneratedPosts().List(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "POST_LIST_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, toPostDTOs(posts))
}

// CreateGeneratedPost stores a post written outside the generator, so
// manually drafted content shares the publish/metrics lifecycle.
func (h *Handler) CreateGeneratedPost(w http.ResponseWriter, r *http.Request) {
	var req GeneratedPostRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := requireFields(map[string]bool{
		"content":  req.Content != "",
		"platform": req.Platform != "",
	}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	post := &entities.GeneratedPost{
		Content:  req.Content,
		Platform: strings.ToLower(req.Platform),
		Category: req.Category,
		Format:   req.Format,
		Topic:    req.Topic,
	}
	if err := h.db.GeneratedPosts().Create(r.Context(), post); err != nil {
		h.writeError(w, http.StatusInternalServerError, "POST_CREATE_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, toPostDTO(*post))
}

func (h *Handler) GetGeneratedPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.db.GeneratedPosts().Get(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no generated post with id %q", id))
		return
	}
	h.writeJSON(w, http.StatusOK, toPostDTO(*post))
}

// PublishGeneratedPost marks a post as published now. Publishing is
// idempotent; re-publishing just refreshes published_at.
func (h *Handler) PublishGeneratedPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.db.GeneratedPosts().MarkPublished(r.Context(), id, time.Now().UTC())
	if err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no generated post with id %q", id))
		return
	}
	h.writeJSON(w, http.StatusOK, toPostDTO(*post))
}

func (h *Handler) UpdatePostMetrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req MetricsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Views < 0 || req.Likes < 0 || req.Comments < 0 || req.Shares < 0 {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "metric counts must be non-negative")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "rating must be between 1 and 5")
		return
	}

	metrics := entities.PerformanceMetrics{
		Views:    req.Views,
		Likes:    req.Likes,
		Comments: req.Comments,
		Shares:   req.Shares,
	}
	post, err := h.db.GeneratedPosts().UpdateMetrics(r.Context(), id, metrics, req.Feedback, req.Rating)
	if err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no generated post with id %q", id))
		return
	}
	h.writeJSON(w, http.StatusOK, toPostDTO(*post))
}

// ListPostsNeedingMetrics returns published posts past the grace period that
// still have no recorded performance numbers.
func (h *Handler) ListPostsNeedingMetrics(w http.ResponseWriter, r *http.Request) {
	grace := time.Duration(h.config.Content.MetricsAfterDays) * 24 * time.Hour
	cutoff := time.Now().UTC().Add(-grace)

	posts, err := h.db.GeneratedPosts().ListNeedingMetrics(r.Context(), cutoff)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "POST_LIST_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, toPostDTOs(posts))
}

func toPostDTO(post entities.GeneratedPost) GeneratedPostDTO {
	dto := GeneratedPostDTO{GeneratedPost: post}
	if post.Metrics != nil {
		rate := post.Metrics.EngagementRate().String()
		dto.EngagementRate = &rate
	}
	return dto
}

func toPostDTOs(posts []entities.GeneratedPost) []GeneratedPostDTO {
	dtos := make([]GeneratedPostDTO, 0, len(posts))
	for _, post := range posts {
		dtos = append(dtos, toPostDTO(post))
	}
	return dtos
}
