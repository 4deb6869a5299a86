package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

func (h *Handler) ListHistoricalPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.db.HistoricalPosts().List(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "HISTORICAL_LIST_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) CreateHistoricalPost(w http.ResponseWriter, r *http.Request) {
	var req HistoricalPostRequest
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

	post := &entities.HistoricalPost{
		Platform:         strings.ToLower(req.Platform),
		Content:          req.Content,
		PerformanceNotes: req.PerformanceNotes,
		PostedAt:         req.PostedAt,
	}
	if err := h.db.HistoricalPosts().Create(r.Context(), post); err != nil {
		h.writeError(w, http.StatusInternalServerError, "HISTORICAL_CREATE_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) DeleteHistoricalPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.db.HistoricalPosts().Delete(r.Context(), id); err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no historical post with id %q", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
