package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Routes(m *Middleware, corsOrigins []string, rateLimitRPM int, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.Compress)
	r.Use(middleware.Heartbeat("/ping"))

	// CORS and rate limiting - configured from main
	r.Use(m.CORS(corsOrigins))
	r.Use(m.RateLimit(rateLimitRPM))

	// Health endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// v1 API routes
	r.Route("/v1", func(r chi.Router) {
		// Live updates stay outside the timeout group: both hold the
		// connection open far longer than any request deadline.
		r.Get("/stream", h.HandleSSE)
		r.Get("/ws", h.HandleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(m.Timeout(60 * time.Second))

			// Reference creators and their content samples
			r.Route("/creators", func(r chi.Router) {
				r.Get("/", h.ListCreators)
				r.Post("/", h.CreateCreator)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetCreator)
					r.Put("/", h.UpdateCreator)
					r.Delete("/", h.DeleteCreator)
					r.Get("/content", h.ListCreatorContent)
					r.Post("/content", h.CreateCreatorContent)
				})
			})
			r.Post("/creator-content", h.AddCreatorContent)
			r.Delete("/content/{id}", h.DeleteContent)

			// Voice document
			r.Route("/style-guide", func(r chi.Router) {
				r.Get("/", h.GetStyleGuide)
				r.Put("/", h.SaveStyleGuide)
			})

			// Past posts used as context
			r.Route("/historical-posts", func(r chi.Router) {
				r.Get("/", h.ListHistoricalPosts)
				r.Post("/", h.CreateHistoricalPost)
				r.Delete("/{id}", h.DeleteHistoricalPost)
			})

			// Generator output and its afterlife
			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.ListGeneratedPosts)
				r.Post("/", h.CreateGeneratedPost)
				r.Get("/needs-metrics", h.ListPostsNeedingMetrics)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetGeneratedPost)
					r.Post("/publish", h.PublishGeneratedPost)
					r.Put("/metrics", h.UpdatePostMetrics)
				})
			})

			// Model-backed operations
			r.Post("/select-relevant-content", h.SelectRelevantContent)
			r.Post("/generate-content", h.GenerateContent)

			// Async video ingestion
			r.Route("/ingest", func(r chi.Router) {
				r.Post("/video", h.IngestVideo)
				r.Get("/jobs", h.ListIngestJobs)
				r.Get("/jobs/{id}", h.GetIngestJob)
			})

			// Posting calendar documents
			r.Route("/schedule/{key}", func(r chi.Router) {
				r.Get("/", h.GetSchedule)
				r.Put("/", h.PutSchedule)
			})
		})
	})

	return r
}
