package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

func (h *Handler) ListCreators(w http.ResponseWriter, r *http.Request) {
	creators, err := h.db.Creators().List(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "CREATOR_LIST_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, creators)
}

func (h *Handler) GetCreator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	creator, err := h.db.Creators().Get(r.Context(), id)
	if err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no creator with id %q", id))
		return
	}
	h.writeJSON(w, http.StatusOK, creator)
}

func (h *Handler) CreateCreator(w http.ResponseWriter, r *http.Request) {
	var req CreatorRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := requireFields(map[string]bool{"name": req.Name != ""}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	creator := creatorFromRequest(req)
	if err := h.db.Creators().Create(r.Context(), creator); err != nil {
		h.writeError(w, http.StatusInternalServerError, "CREATOR_CREATE_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, creator)
}

func (h *Handler) UpdateCreator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req CreatorRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := requireFields(map[string]bool{"name": req.Name != ""}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	creator := creatorFromRequest(req)
	creator.ID = id
	if err := h.db.Creators().Update(r.Context(), creator); err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no creator with id %q", id))
		return
	}
	h.writeJSON(w, http.StatusOK, creator)
}

func (h *Handler) DeleteCreator(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.db.Creators().Delete(r.Context(), id); err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no creator with id %q", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCreatorContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.db.Creators().Get(r.Context(), id); err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no creator with id %q", id))
		return
	}

	samples, err := h.db.Content().ListByCreator(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "CONTENT_LIST_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, samples)
}

func (h *Handler) CreateCreatorContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ContentSampleRequest
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

	sample := &entities.ContentSample{
		CreatorID:   id,
		Content:     req.Content,
		Platform:    strings.ToLower(req.Platform),
		SourceURL:   req.SourceURL,
		PostedAt:    req.PostedAt,
		KeyInsights: req.KeyInsights,
	}
	if err := h.db.Content().Create(r.Context(), sample); err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no creator with id %q to attach content to", id))
		return
	}
	h.writeJSON(w, http.StatusCreated, sample)
}

// AddCreatorContent files a sample under a creator matched by name substring,
// the entry point used by external automations.
func (h *Handler) AddCreatorContent(w http.ResponseWriter, r *http.Request) {
	var req AddCreatorContentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := requireFields(map[string]bool{
		"creator_name": req.CreatorName != "",
		"content":      req.Content != "",
		"platform":     req.Platform != "",
	}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	matches, err := h.db.Creators().FindByNameLike(r.Context(), req.CreatorName)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "CREATOR_LOOKUP_ERROR", err.Error())
		return
	}
	if len(matches) == 0 {
		h.writeError(w, http.StatusNotFound, "CREATOR_NOT_FOUND",
			fmt.Sprintf("no creator matching %q; add the creator first or check the spelling", req.CreatorName))
		return
	}

	sample := &entities.ContentSample{
		CreatorID:   matches[0].ID,
		Content:     req.Content,
		Platform:    strings.ToLower(req.Platform),
		SourceURL:   req.SourceURL,
		PostedAt:    req.PostedAt,
		KeyInsights: req.KeyInsights,
	}
	if err := h.db.Content().Create(r.Context(), sample); err != nil {
		h.writeError(w, http.StatusInternalServerError, "CONTENT_CREATE_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, sample)
}

func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.db.Content().Delete(r.Context(), id); err != nil {
		h.notFoundOr(w, err, fmt.Sprintf("no content sample with id %q", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func creatorFromRequest(req CreatorRequest) *entities.Creator {
	priority := req.Priority
	if !entities.ValidPriority(priority) {
		priority = entities.PriorityMedium
	}
	return &entities.Creator{
		Name:         req.Name,
		YouTube:      req.YouTube,
		Instagram:    req.Instagram,
		LinkedIn:     req.LinkedIn,
		XTwitter:     req.XTwitter,
		Spotify:      req.Spotify,
		Fields:       req.Fields,
		Priority:     priority,
		Notes:        req.Notes,
		ContentNotes: req.ContentNotes,
		Analyzed:     req.Analyzed,
	}
}

// requireFields reports validation as "missing: a, b; present: c" so callers
// can see exactly what they sent.
func requireFields(fields map[string]bool) (string, bool) {
	var missing, present []string
	for name, ok := range fields {
		if ok {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return "", true
	}
	sort.Strings(missing)
	sort.Strings(present)
	msg := "missing required fields: " + strings.Join(missing, ", ")
	if len(present) > 0 {
		msg += "; present: " + strings.Join(present, ", ")
	}
	return msg, false
}
