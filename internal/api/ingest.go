package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
	"github.com/branddesk/branddesk-backend/internal/ingest"
)

const defaultJobListLimit = 50

// IngestVideo enqueues a video-summarization job and returns immediately.
// The worker picks the job up; clients follow progress via the jobs endpoints
// or the websocket stream.
func (h *Handler) IngestVideo(w http.ResponseWriter, r *http.Request) {
	var req IngestVideoRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := requireFields(map[string]bool{
		"video_url":    req.VideoURL != "",
		"creator_name": req.CreatorName != "",
	}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}
	if _, err := ingest.ExtractVideoID(req.VideoURL); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("%q does not look like a YouTube video URL", req.VideoURL))
		return
	}

	job := &entities.IngestJob{
		VideoURL:    req.VideoURL,
		VideoTitle:  req.VideoTitle,
		CreatorName: req.CreatorName,
		Status:      entities.JobPending,
	}
	if err := h.db.IngestJobs().Create(r.Context(), job); err != nil {
		h.writeError(w, http.StatusInternalServerError, "JOB_CREATE_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusAccepted, job)
}

func (h *Handler) GetIngestJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.db.IngestJobs().Get(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no ingest job with id %q", id))
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}

func (h *Handler) ListIngestJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = n
	}

	jobs, err := h.db.IngestJobs().List(r.Context(), limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "JOB_LIST_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, jobs)
}
