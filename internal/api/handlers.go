// Package api exposes the dashboard's HTTP surface: CRUD for the content
// store, the selection and generation endpoints, and ingest-job management.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/config"
	"github.com/branddesk/branddesk-backend/internal/db/interfaces"
	"github.com/branddesk/branddesk-backend/internal/generate"
	"github.com/branddesk/branddesk-backend/internal/selector"
	"github.com/branddesk/branddesk-backend/internal/store"
	"github.com/branddesk/branddesk-backend/internal/ws"
)

type Handler struct {
	db         interfaces.Database
	selector   *selector.Selector
	generator  *generate.Generator
	cache      *store.Cache
	wsHub      *ws.Hub
	sseHandler *ws.SSEHandler
	config     *config.Config
	logger     *zap.SugaredLogger
}

func NewHandler(
	db interfaces.Database,
	sel *selector.Selector,
	generator *generate.Generator,
	cache *store.Cache,
	wsHub *ws.Hub,
	sseHandler *ws.SSEHandler,
	cfg *config.Config,
	logger *zap.SugaredLogger,
) *Handler {
	return &Handler{
		db:         db,
		selector:   sel,
		generator:  generator,
		cache:      cache,
		wsHub:      wsHub,
		sseHandler: sseHandler,
		config:     cfg,
		logger:     logger,
	}
}

// Health and ops endpoints
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok", "cache": "ok"}
	status := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.cache.Ping(r.Context()); err != nil {
		checks["cache"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	state := "ready"
	if status != http.StatusOK {
		state = "degraded"
	}
	h.writeJSON(w, status, HealthResponse{Status: state, Checks: checks})
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	h.wsHub.HandleWebSocket(w, r)
}

func (h *Handler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseHandler.HandleSSE(w, r)
}

// Utility methods
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.logger.Errorw("API error", "code", code, "message", message, "status", status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message})
}

// decodeJSON reads the request body into dest, rejecting unknown garbage
// early with a consistent error.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	defer io.Copy(io.Discard, r.Body)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON: "+err.Error())
		return false
	}
	return true
}

// notFoundOr writes a 404 for missing rows and a 500 otherwise.
func (h *Handler) notFoundOr(w http.ResponseWriter, err error, hint string) {
	if errors.Is(err, interfaces.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", hint)
		return
	}
	h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}
