package api

import (
	"errors"
	"net/http"

	"github.com/branddesk/branddesk-backend/internal/gateway"
	"github.com/branddesk/branddesk-backend/internal/generate"
)

// GenerateContentRequest carries one of three generation modes selected by
// Type: "post" (the default), "reply" or "comment".
type GenerateContentRequest struct {
	Type string `json:"type,omitempty"`

	// post fields
	Platform     string `json:"platform,omitempty"`
	Topic        string `json:"topic,omitempty"`
	StyleGuide   string `json:"styleGuide,omitempty"`
	Category     string `json:"category,omitempty"`
	Format       string `json:"format,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
	Description  string `json:"description,omitempty"`
	Notes        string `json:"notes,omitempty"`
	ImagePrompt  string `json:"imagePrompt,omitempty"`
	Script       string `json:"script,omitempty"`
	UseWebSearch bool   `json:"useWebSearch,omitempty"`

	// reply fields
	Comment string `json:"comment,omitempty"`
	Context string `json:"context,omitempty"`
	Tone    string `json:"tone,omitempty"`

	// comment fields
	Post  string `json:"post,omitempty"`
	Angle string `json:"angle,omitempty"`
	Style string `json:"style,omitempty"`
}

func (h *Handler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req GenerateContentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	switch req.Type {
	case "", "post":
		h.generatePost(w, r, req)
	case "reply":
		h.generateReply(w, r, req)
	case "comment":
		h.generateComment(w, r, req)
	default:
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"type must be one of post, reply, comment")
	}
}

func (h *Handler) generatePost(w http.ResponseWriter, r *http.Request, req GenerateContentRequest) {
	if msg, ok := requireFields(map[string]bool{"topic": req.Topic != ""}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	post, sel, err := h.generator.GeneratePost(r.Context(), generate.PostRequest{
		Platform:     req.Platform,
		Topic:        req.Topic,
		StyleGuide:   req.StyleGuide,
		Category:     req.Category,
		Format:       req.Format,
		ContentType:  req.ContentType,
		Description:  req.Description,
		Notes:        req.Notes,
		ImagePrompt:  req.ImagePrompt,
		Script:       req.Script,
		UseWebSearch: req.UseWebSearch,
	})
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}

	resp := GenerateContentResponse{Content: post.Content, PostID: post.ID}
	if sel != nil {
		resp.SelectedIDs = sel.IDs
		resp.Reasoning = sel.Reasoning
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) generateReply(w http.ResponseWriter, r *http.Request, req GenerateContentRequest) {
	if msg, ok := requireFields(map[string]bool{"comment": req.Comment != ""}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	text, err := h.generator.GenerateReply(r.Context(), generate.ReplyRequest{
		Platform: req.Platform,
		Comment:  req.Comment,
		Context:  req.Context,
		Tone:     req.Tone,
	})
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, GenerateContentResponse{Content: text})
}

func (h *Handler) generateComment(w http.ResponseWriter, r *http.Request, req GenerateContentRequest) {
	if msg, ok := requireFields(map[string]bool{"post": req.Post != ""}); !ok {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	text, err := h.generator.GenerateComment(r.Context(), generate.CommentRequest{
		Platform: req.Platform,
		Post:     req.Post,
		Angle:    req.Angle,
		Style:    req.Style,
	})
	if err != nil {
		h.writeGenerationError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, GenerateContentResponse{Content: text})
}

// writeGenerationError maps upstream gateway failures onto statuses the UI
// can show meaningfully: quota exhaustion and billing problems are actionable
// for the operator, everything else is a plain server error.
func (h *Handler) writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrRateLimited):
		h.writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
			"the model gateway is rate limiting requests; retry shortly")
	case errors.Is(err, gateway.ErrPaymentRequired):
		h.writeError(w, http.StatusPaymentRequired, "PAYMENT_REQUIRED",
			"the model gateway reports an exhausted balance; add credits to continue")
	default:
		h.writeError(w, http.StatusInternalServerError, "GENERATION_ERROR", err.Error())
	}
}
