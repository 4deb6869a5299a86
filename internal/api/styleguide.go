package api

import "net/http"

func (h *Handler) GetStyleGuide(w http.ResponseWriter, r *http.Request) {
	guide, err := h.db.StyleGuides().Active(r.Context())
	if err != nil {
		h.notFoundOr(w, err, "no style guide has been saved yet")
		return
	}
	h.writeJSON(w, http.StatusOK, guide)
}

func (h *Handler) SaveStyleGuide(w http.ResponseWriter, r *http.Request) {
	var req StyleGuideRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := requireFields(map[string]bool{"content": req.Content != ""}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	guide, err := h.db.StyleGuides().Save(r.Context(), req.Content)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STYLE_GUIDE_SAVE_ERROR", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, guide)
}
