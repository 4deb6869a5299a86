package api

import (
	"net/http"

	"github.com/branddesk/branddesk-backend/internal/db/entities"
)

// SelectRelevantContent asks the model to pick the most relevant entries for
// a topic. The response is always 200 with a selection; when the model cannot
// be reached or parsed the selector falls back to the first entries, so the
// caller never has to handle a selection failure.
func (h *Handler) SelectRelevantContent(w http.ResponseWriter, r *http.Request) {
	var req SelectContentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := requireFields(map[string]bool{"topic": req.Topic != ""}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	candidates := make([]entities.ContentSample, 0, len(req.Entries))
	for _, e := range req.Entries {
		sample := entities.ContentSample{
			ID:          e.ID,
			Content:     e.Content,
			KeyInsights: e.KeyInsights,
			Platform:    e.Platform,
			CreatorName: e.CreatorName,
		}
		if e.CreatedAt != nil {
			sample.CreatedAt = *e.CreatedAt
		}
		sample.PostedAt = e.PostedAt
		candidates = append(candidates, sample)
	}

	sel, err := h.selector.SelectN(r.Context(), req.Topic, candidates, req.MaxResults)
	if err != nil {
		// Even a hard failure keeps the response shape so the client's
		// handling stays uniform.
		h.logger.Errorw("Content selection failed", "topic", req.Topic, "error", err)
		h.writeJSON(w, http.StatusInternalServerError, SelectContentResponse{
			SelectedIDs: []string{},
			Reasoning:   "Selection failed: " + err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, SelectContentResponse{
		SelectedIDs: sel.IDs,
		Reasoning:   sel.Reasoning,
	})
}
