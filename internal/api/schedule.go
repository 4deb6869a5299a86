package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/branddesk/branddesk-backend/internal/store"
)

// The schedule endpoints store opaque JSON documents keyed by name, backing
// the dashboard's posting calendar. Documents survive Redis restarts only
// when Redis is configured; the in-memory fallback is best effort.

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var doc json.RawMessage
	err := h.cache.Get(r.Context(), store.KeySchedule+":"+key, &doc)
	if errors.Is(err, store.ErrCacheMiss) {
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("no schedule stored under %q", key))
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "SCHEDULE_READ_ERROR", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *Handler) PutSchedule(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var doc json.RawMessage
	if !h.decodeJSON(w, r, &doc) {
		return
	}

	if err := h.cache.Set(r.Context(), store.KeySchedule+":"+key, doc, 0); err != nil {
		h.writeError(w, http.StatusInternalServerError, "SCHEDULE_WRITE_ERROR", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
