package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/store"
)

// SSEHandler streams ingest-job status updates over server-sent events, for
// clients that cannot hold a WebSocket open.
type SSEHandler struct {
	cache  *store.Cache
	logger *zap.SugaredLogger
}

func NewSSEHandler(cache *store.Cache, logger *zap.SugaredLogger) *SSEHandler {
	return &SSEHandler{cache: cache, logger: logger}
}

func (h *SSEHandler) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Optional filter: only events for one job.
	jobID := r.URL.Query().Get("jobId")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := h.cache.Subscribe(ctx, store.ChannelJobs)
	defer sub.Close()

	h.sendEvent(w, flusher, "connected", map[string]any{"ok": true})

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-heartbeat.C:
			h.sendEvent(w, flusher, "heartbeat", map[string]any{"timestamp": time.Now().Unix()})

		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			if jobID != "" && jobIDFromPayload(msg.Payload) != jobID {
				continue
			}
			fmt.Fprintf(w, "event: job_update\ndata: %s\n\n", msg.Payload)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Errorw("Marshaling SSE event failed", "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	flusher.Flush()
}
